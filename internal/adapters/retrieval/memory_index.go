package retrieval

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"

	"github.com/PabloGalante/docchat/internal/domain"
)

// MemoryIndex is an in-process vector index using brute-force cosine
// similarity. Good enough for the small document sets this service
// handles.
type MemoryIndex struct {
	mu        sync.RWMutex
	dimension int
	vectors   [][]float64
	chunks    []domain.Chunk
}

func NewMemoryIndex() *MemoryIndex { return &MemoryIndex{} }

func (s *MemoryIndex) Init(_ context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.dimension = dimension
	s.vectors = nil
	s.chunks = nil
	return nil
}

func (s *MemoryIndex) Upsert(_ context.Context, chunks []domain.Chunk, vectors [][]float64) error {
	if len(chunks) != len(vectors) {
		return errors.New("chunks and vectors length mismatch")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range vectors {
		if len(v) != s.dimension {
			return errors.New("vector dimension mismatch")
		}
	}
	s.chunks = append(s.chunks, chunks...)
	s.vectors = append(s.vectors, vectors...)
	return nil
}

func (s *MemoryIndex) Search(_ context.Context, vector []float64, topK int) ([]domain.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(vector) != s.dimension {
		return nil, errors.New("query vector dimension mismatch")
	}
	if topK <= 0 || len(s.chunks) == 0 {
		return nil, nil
	}

	results := make([]domain.SearchResult, 0, len(s.chunks))
	for i, v := range s.vectors {
		results = append(results, domain.SearchResult{
			Chunk: s.chunks[i],
			Score: cosine(vector, v),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

func cosine(a, b []float64) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
