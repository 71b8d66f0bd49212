package retrieval

import (
	"strconv"
	"strings"

	"github.com/PabloGalante/docchat/internal/domain"
)

// Chunker splits document text into fixed-size character windows with
// overlap between consecutive chunks.
type Chunker struct {
	size    int
	overlap int
}

func NewChunker(size, overlap int) *Chunker {
	if size <= 0 {
		size = 500
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}
	return &Chunker{size: size, overlap: overlap}
}

func (c *Chunker) Chunk(doc sourceFile) []domain.Chunk {
	runes := []rune(strings.TrimSpace(doc.Content))
	if len(runes) == 0 {
		return nil
	}

	step := c.size - c.overlap

	var chunks []domain.Chunk
	idx := 0
	for start := 0; start < len(runes); start += step {
		end := start + c.size
		if end > len(runes) {
			end = len(runes)
		}

		text := strings.TrimSpace(string(runes[start:end]))
		if text != "" {
			chunks = append(chunks, domain.Chunk{
				DocumentID: doc.ID,
				ChunkID:    string(doc.ID) + ":" + strconv.Itoa(idx),
				Text:       text,
				Index:      idx,
			})
			idx++
		}

		if end == len(runes) {
			break
		}
	}

	return chunks
}
