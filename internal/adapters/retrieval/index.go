package retrieval

import (
	"context"
	"fmt"

	"github.com/PabloGalante/docchat/internal/domain"
	"github.com/PabloGalante/docchat/internal/observability"
)

// Index wires the loader, chunker, embedder and vector index into the
// Retriever the chat service depends on. The corpus is ingested once at
// startup and is read-only afterward.
type Index struct {
	chunker  *Chunker
	embedder domain.Embedder
	store    domain.VectorIndex
	ready    bool
}

func NewIndex(chunker *Chunker, embedder domain.Embedder, store domain.VectorIndex) *Index {
	return &Index{
		chunker:  chunker,
		embedder: embedder,
		store:    store,
	}
}

// Ingest loads the readable files under dataDir, chunks and embeds
// them, and fills the vector index. Returns the number of indexed
// chunks. An empty corpus is not an error; the index just stays empty.
func (i *Index) Ingest(ctx context.Context, dataDir string) (int, error) {
	log := observability.Logger()

	files := loadTexts(dataDir)
	if len(files) == 0 {
		log.Warn("no indexable documents found", "dir", dataDir)
		return 0, nil
	}

	var chunks []domain.Chunk
	var corpus []string
	for _, f := range files {
		for _, ch := range i.chunker.Chunk(f) {
			chunks = append(chunks, ch)
			corpus = append(corpus, ch.Text)
		}
	}
	if len(chunks) == 0 {
		log.Warn("documents produced no chunks", "dir", dataDir)
		return 0, nil
	}

	if err := i.embedder.Prepare(ctx, corpus); err != nil {
		return 0, fmt.Errorf("preparing embedder: %w", err)
	}
	if err := i.store.Init(ctx, i.embedder.Dimension()); err != nil {
		return 0, fmt.Errorf("initializing vector index: %w", err)
	}

	vectors := make([][]float64, len(chunks))
	for n := range chunks {
		vec, err := i.embedder.Embed(ctx, chunks[n].Text)
		if err != nil {
			return 0, fmt.Errorf("embedding chunk %s: %w", chunks[n].ChunkID, err)
		}
		vectors[n] = vec
	}

	if err := i.store.Upsert(ctx, chunks, vectors); err != nil {
		return 0, fmt.Errorf("upserting vectors: %w", err)
	}

	i.ready = true
	log.Info("retrieval index built",
		"documents", len(files),
		"chunks", len(chunks),
		"embedder", i.embedder.Name(),
		"dimension", i.embedder.Dimension())

	return len(chunks), nil
}

// Retrieve implements domain.Retriever. An unbuilt or empty index
// yields no results rather than an error.
func (i *Index) Retrieve(ctx context.Context, query string, topK int) ([]domain.SearchResult, error) {
	if !i.ready {
		return nil, nil
	}

	vec, err := i.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	results, err := i.store.Search(ctx, vec, topK)
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}
	return results, nil
}
