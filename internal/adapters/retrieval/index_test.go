package retrieval

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PabloGalante/docchat/internal/domain"
)

func TestChunkerSizeAndOverlap(t *testing.T) {
	c := NewChunker(10, 2)

	doc := sourceFile{ID: "doc-test", Content: strings.Repeat("abcdefgh", 4)} // 32 runes
	chunks := c.Chunk(doc)

	if len(chunks) == 0 {
		t.Fatalf("expected chunks")
	}
	for _, ch := range chunks {
		if len([]rune(ch.Text)) > 10 {
			t.Fatalf("chunk longer than size: %q", ch.Text)
		}
	}

	// Consecutive chunks share the configured overlap.
	first := []rune(chunks[0].Text)
	second := chunks[1].Text
	if !strings.HasPrefix(second, string(first[len(first)-2:])) {
		t.Fatalf("expected 2-rune overlap between %q and %q", chunks[0].Text, second)
	}

	if chunks[0].ChunkID != "doc-test:0" || chunks[0].Index != 0 {
		t.Fatalf("unexpected chunk identity: %+v", chunks[0])
	}
}

func TestChunkerEmptyDocument(t *testing.T) {
	c := NewChunker(100, 10)
	if got := c.Chunk(sourceFile{ID: "doc-x", Content: "   \n  "}); got != nil {
		t.Fatalf("expected no chunks, got %d", len(got))
	}
}

func TestTFIDFEmbedderRanksRelatedTextHigher(t *testing.T) {
	ctx := context.Background()
	e := NewTFIDFEmbedder()

	corpus := []string{
		"the mitochondria is the powerhouse of the cell",
		"tax returns are filed every april",
	}
	if err := e.Prepare(ctx, corpus); err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if e.Dimension() == 0 {
		t.Fatalf("expected non-zero dimension")
	}

	q, err := e.Embed(ctx, "what is the powerhouse of the cell?")
	if err != nil {
		t.Fatalf("embed query: %v", err)
	}
	bio, _ := e.Embed(ctx, corpus[0])
	tax, _ := e.Embed(ctx, corpus[1])

	if cosine(q, bio) <= cosine(q, tax) {
		t.Fatalf("biology chunk should score higher than tax chunk")
	}
}

func TestIndexIngestAndRetrieve(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	write := func(name, content string) {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	write("cells.txt", "The mitochondria is the powerhouse of the cell. Cells divide by mitosis.")
	write("taxes.txt", "Tax returns are filed every april. Deductions reduce taxable income.")
	write("binary.pdf", "%PDF ignored")

	idx := NewIndex(NewChunker(500, 20), NewTFIDFEmbedder(), NewMemoryIndex())

	n, err := idx.Ingest(ctx, dir)
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if n == 0 {
		t.Fatalf("expected indexed chunks")
	}

	results, err := idx.Retrieve(ctx, "what is the powerhouse of the cell?", 1)
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if !strings.Contains(results[0].Chunk.Text, "mitochondria") {
		t.Fatalf("expected the cells chunk, got %q", results[0].Chunk.Text)
	}
}

func TestIndexEmptyDirectoryYieldsNoResults(t *testing.T) {
	ctx := context.Background()
	idx := NewIndex(NewChunker(500, 20), NewTFIDFEmbedder(), NewMemoryIndex())

	n, err := idx.Ingest(ctx, filepath.Join(t.TempDir(), "missing"))
	if err != nil {
		t.Fatalf("ingest should tolerate a missing directory: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected 0 chunks, got %d", n)
	}

	results, err := idx.Retrieve(ctx, "anything", 3)
	if err != nil {
		t.Fatalf("retrieve on empty index: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected no results, got %d", len(results))
	}
}

func TestMemoryIndexTopK(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryIndex()
	if err := s.Init(ctx, 2); err != nil {
		t.Fatalf("init: %v", err)
	}

	chunks := []domain.Chunk{
		{ChunkID: "a", Text: "a"},
		{ChunkID: "b", Text: "b"},
		{ChunkID: "c", Text: "c"},
	}
	vectors := [][]float64{{1, 0}, {0, 1}, {0.9, 0.1}}
	if err := s.Upsert(ctx, chunks, vectors); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	results, err := s.Search(ctx, []float64{1, 0}, 2)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Chunk.ChunkID != "a" {
		t.Fatalf("expected best match first, got %s", results[0].Chunk.ChunkID)
	}
}
