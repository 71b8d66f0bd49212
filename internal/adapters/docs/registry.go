package docs

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/PabloGalante/docchat/internal/domain"
	"github.com/PabloGalante/docchat/internal/observability"
)

// Registry is the global document catalog. It is populated once at
// startup by scanning the data directory and never changes afterward.
type Registry struct {
	docs []domain.Document
}

// NewRegistry scans dataDir for files whose extension is in
// allowedTypes (matched case-insensitively, e.g. ".pdf"). A missing
// directory is not fatal: the registry just stays empty.
func NewRegistry(dataDir string, allowedTypes []string) *Registry {
	log := observability.Logger()

	allowed := make(map[string]struct{}, len(allowedTypes))
	for _, ext := range allowedTypes {
		allowed[strings.ToLower(ext)] = struct{}{}
	}

	entries, err := os.ReadDir(dataDir)
	if err != nil {
		log.Warn("data directory not available, registry stays empty",
			"dir", dataDir, "error", err)
		return &Registry{}
	}

	r := &Registry{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if _, ok := allowed[ext]; !ok {
			continue
		}

		doc := domain.Document{
			ID:   domain.NewDocumentID(),
			Name: entry.Name(),
			Type: strings.ToUpper(strings.TrimPrefix(ext, ".")),
		}
		r.docs = append(r.docs, doc)

		log.Info("registered document", "name", doc.Name, "doc_id", doc.ID, "type", doc.Type)
	}

	return r
}

// Documents returns the full catalog. The chat id is accepted for API
// symmetry but the catalog is global, not session-scoped.
func (r *Registry) Documents(_ domain.ChatID) []domain.Document {
	out := make([]domain.Document, len(r.docs))
	copy(out, r.docs)
	return out
}
