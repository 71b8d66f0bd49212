package retrieval

import (
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/PabloGalante/docchat/internal/domain"
	"github.com/PabloGalante/docchat/internal/observability"
)

// sourceFile is one readable document pulled from the data directory.
type sourceFile struct {
	ID      domain.DocumentID
	Name    string
	Content string
}

// textExtensions are the formats the loader can read without a binary
// parser. Binary formats in the registry allow-list (PDF, DOCX) are
// listed in the catalog but not indexed for retrieval.
var textExtensions = map[string]struct{}{
	".txt": {},
	".md":  {},
}

// loadTexts reads every indexable file from dataDir. A missing
// directory yields an empty corpus, not an error.
func loadTexts(dataDir string) []sourceFile {
	log := observability.Logger()

	entries, err := os.ReadDir(dataDir)
	if err != nil {
		log.Warn("data directory not available, retrieval corpus is empty",
			"dir", dataDir, "error", err)
		return nil
	}

	var out []sourceFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if _, ok := textExtensions[ext]; !ok {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dataDir, entry.Name()))
		if err != nil {
			log.Warn("skipping unreadable file", "name", entry.Name(), "error", err)
			continue
		}
		if !utf8.Valid(data) {
			log.Warn("skipping non-text file", "name", entry.Name())
			continue
		}

		out = append(out, sourceFile{
			ID:      domain.NewDocumentID(),
			Name:    entry.Name(),
			Content: string(data),
		})
	}

	return out
}
