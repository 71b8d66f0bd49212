package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PabloGalante/docchat/internal/domain"
	"github.com/PabloGalante/docchat/internal/observability"
)

const (
	// historyWindow bounds the conversation history loaded per request.
	historyWindow = 10

	// retrievalTopK is how many chunks are fetched for prompt context.
	retrievalTopK = 4

	// maxSources caps the attributions returned with a response.
	maxSources = 3

	// placeholderID is the API-documentation artifact some clients send
	// for "unset" id fields.
	placeholderID = "string"
)

// Canned replies used when a collaborator fails. The request still
// succeeds with a degraded answer.
const (
	degradedNumericReply     = "I'm experiencing a technical issue with the numerical computing library. Please ensure it is properly installed."
	degradedAcceleratorReply = "I'm having GPU-related issues. The system will try to use CPU instead."
	degradedGenericReply     = "I apologize, but I'm having trouble processing your request right now. Please try again later."
)

// Service runs the conversation flow: validate, resolve ids, ensure
// the session, retrieve context, generate, persist and assemble.
type Service struct {
	store     domain.SessionStore
	registry  domain.DocumentRegistry
	retriever domain.Retriever
	llm       domain.GenerationClient
	now       func() time.Time
}

func NewService(
	store domain.SessionStore,
	registry domain.DocumentRegistry,
	retriever domain.Retriever,
	llm domain.GenerationClient,
) *Service {
	return &Service{
		store:     store,
		registry:  registry,
		retriever: retriever,
		llm:       llm,
		now:       time.Now,
	}
}

type SendInput struct {
	ChatID  string
	UserID  string
	Message string
}

type SendOutput struct {
	Response  string
	MessageID domain.MessageID
	ChatID    domain.ChatID
	UserID    domain.UserID
	Timestamp time.Time
	Sources   []domain.SourceAttribution
}

// Send processes one chat exchange end to end.
func (s *Service) Send(ctx context.Context, in SendInput) (*SendOutput, error) {
	if strings.TrimSpace(in.Message) == "" {
		return nil, domain.ErrEmptyMessage
	}

	chatID, generatedChat := resolveChatID(in.ChatID)
	userID, generatedUser := resolveUserID(in.UserID)

	log := observability.LoggerFromContext(ctx).With(
		"chat_id", chatID,
		"user_id", userID,
	)
	if generatedChat {
		log.Info("auto-generated chat id")
	}
	if generatedUser {
		log.Info("auto-generated user id")
	}
	log.Info("chat request received", "message_len", len(in.Message))

	created, err := s.store.CreateSession(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("ensuring session: %w", err)
	}
	if created {
		log.Info("created new chat session")
	}

	history, err := s.store.History(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}
	bounded := boundHistory(history, historyWindow)
	// The bounded window is loaded and logged but the generation call
	// only receives the current query plus retrieved context.
	log.Info("processing chat", "history_total", len(history), "history_window", len(bounded))

	response := s.answer(ctx, in.Message)

	ts := s.now().UTC()

	userMsg := &domain.Message{
		ID:        domain.NewMessageID(),
		Role:      domain.RoleUser,
		Content:   in.Message,
		Timestamp: ts,
	}
	if err := s.store.AppendMessage(ctx, chatID, userMsg); err != nil {
		return nil, fmt.Errorf("persisting user message: %w", err)
	}

	// The assistant message shares the user message's timestamp.
	assistantMsg := &domain.Message{
		ID:        domain.NewMessageID(),
		Role:      domain.RoleAssistant,
		Content:   response,
		Timestamp: ts,
	}
	if err := s.store.AppendMessage(ctx, chatID, assistantMsg); err != nil {
		return nil, fmt.Errorf("persisting assistant message: %w", err)
	}

	log.Info("chat response generated", "message_id", assistantMsg.ID)

	return &SendOutput{
		Response:  response,
		MessageID: assistantMsg.ID,
		ChatID:    chatID,
		UserID:    userID,
		Timestamp: ts,
		Sources:   s.sources(chatID),
	}, nil
}

// answer runs the retrieve-then-generate step. Collaborator failures
// never abort the request: they degrade to a canned reply.
func (s *Service) answer(ctx context.Context, query string) string {
	log := observability.LoggerFromContext(ctx)

	results, err := s.retriever.Retrieve(ctx, query, retrievalTopK)
	if err != nil {
		log.Error("retrieval failed, degrading", "error", err)
		return degradedReply(err)
	}

	contextText := flattenResults(results)

	text, err := s.llm.Generate(ctx, query, contextText)
	if err != nil {
		log.Error("generation failed, degrading", "error", err)
		return degradedReply(err)
	}
	return text
}

// History returns the full message history for a chat. Unknown ids
// yield an empty history.
func (s *Service) History(ctx context.Context, chatID domain.ChatID) ([]*domain.Message, error) {
	log := observability.LoggerFromContext(ctx).With("chat_id", chatID)

	msgs, err := s.store.History(ctx, chatID)
	if err != nil {
		log.Error("failed to load history", "error", err)
		return nil, err
	}

	log.Info("fetched chat history", "message_count", len(msgs))
	return msgs, nil
}

// ListSessions returns summaries of every non-empty chat session.
func (s *Service) ListSessions(ctx context.Context) ([]domain.SessionSummary, error) {
	summaries, err := s.store.ListSessions(ctx)
	if err != nil {
		observability.LoggerFromContext(ctx).Error("failed to list sessions", "error", err)
		return nil, err
	}
	return summaries, nil
}

// Delete removes a whole chat session. Returns ErrSessionNotFound when
// the id is unknown.
func (s *Service) Delete(ctx context.Context, chatID domain.ChatID) error {
	log := observability.LoggerFromContext(ctx).With("chat_id", chatID)

	found, err := s.store.DeleteSession(ctx, chatID)
	if err != nil {
		log.Error("failed to delete session", "error", err)
		return err
	}
	if !found {
		log.Warn("attempted to delete unknown chat session")
		return domain.ErrSessionNotFound
	}

	log.Info("deleted chat session")
	return nil
}

func (s *Service) sources(chatID domain.ChatID) []domain.SourceAttribution {
	docs := s.registry.Documents(chatID)
	if len(docs) == 0 {
		return nil
	}
	if len(docs) > maxSources {
		docs = docs[:maxSources]
	}

	out := make([]domain.SourceAttribution, 0, len(docs))
	for _, d := range docs {
		out = append(out, domain.SourceAttribution{
			DocID:   d.ID,
			DocName: d.Name,
		})
	}
	return out
}

func resolveChatID(raw string) (domain.ChatID, bool) {
	if isUnsetID(raw) {
		return domain.NewChatID(), true
	}
	return domain.ChatID(raw), false
}

func resolveUserID(raw string) (domain.UserID, bool) {
	if isUnsetID(raw) {
		return domain.NewUserID(), true
	}
	return domain.UserID(raw), false
}

func isUnsetID(raw string) bool {
	return strings.TrimSpace(raw) == "" || raw == placeholderID
}

// boundHistory keeps the most recent n messages, oldest first.
func boundHistory(msgs []*domain.Message, n int) []*domain.Message {
	if len(msgs) <= n {
		return msgs
	}
	return msgs[len(msgs)-n:]
}

func flattenResults(results []domain.SearchResult) string {
	parts := make([]string, 0, len(results))
	for _, r := range results {
		parts = append(parts, r.Chunk.Text)
	}
	return strings.Join(parts, "\n\n")
}

func degradedReply(err error) string {
	switch {
	case errors.Is(err, domain.ErrNumericBackendUnavailable):
		return degradedNumericReply
	case errors.Is(err, domain.ErrAcceleratorUnavailable):
		return degradedAcceleratorReply
	default:
		return degradedGenericReply
	}
}
