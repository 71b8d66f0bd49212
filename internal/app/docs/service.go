package docs

import (
	"context"

	"github.com/PabloGalante/docchat/internal/domain"
	"github.com/PabloGalante/docchat/internal/observability"
)

// Service fronts the document registry for the API layer.
type Service struct {
	registry domain.DocumentRegistry
}

func NewService(registry domain.DocumentRegistry) *Service {
	return &Service{registry: registry}
}

// ChatDocuments returns the documents available to a chat session.
func (s *Service) ChatDocuments(ctx context.Context, chatID domain.ChatID) ([]domain.Document, error) {
	log := observability.LoggerFromContext(ctx).With("chat_id", chatID)

	docs := s.registry.Documents(chatID)
	log.Info("fetched documents", "count", len(docs))

	return docs, nil
}
