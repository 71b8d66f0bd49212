package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/PabloGalante/docchat/internal/domain"
)

const previewRunes = 100

// SessionStore keeps every session's messages in process memory. It is
// NOT persistent; all state is lost on restart.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[domain.ChatID][]*domain.Message
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[domain.ChatID][]*domain.Message),
	}
}

func (s *SessionStore) SessionExists(_ context.Context, id domain.ChatID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.sessions[id]
	return ok, nil
}

func (s *SessionStore) CreateSession(_ context.Context, id domain.ChatID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[id]; exists {
		return false, nil
	}

	s.sessions[id] = []*domain.Message{}
	return true, nil
}

func (s *SessionStore) AppendMessage(_ context.Context, id domain.ChatID, msg *domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[id] = append(s.sessions[id], msg)
	return nil
}

func (s *SessionStore) History(_ context.Context, id domain.ChatID) ([]*domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := s.sessions[id]
	out := make([]*domain.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (s *SessionStore) DeleteSession(_ context.Context, id domain.ChatID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[id]; !exists {
		return false, nil
	}

	delete(s.sessions, id)
	return true, nil
}

func (s *SessionStore) ListSessions(_ context.Context) ([]domain.SessionSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]domain.SessionSummary, 0, len(s.sessions))
	for id, msgs := range s.sessions {
		if len(msgs) == 0 {
			continue
		}

		var preview string
		for _, m := range msgs {
			if m.Role == domain.RoleUser {
				preview = truncatePreview(m.Content)
				break
			}
		}

		summaries = append(summaries, domain.SessionSummary{
			ChatID:       id,
			MessageCount: len(msgs),
			LastActivity: msgs[len(msgs)-1].Timestamp,
			FirstMessage: preview,
		})
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].LastActivity.After(summaries[j].LastActivity)
	})

	return summaries, nil
}

func truncatePreview(content string) string {
	runes := []rune(content)
	if len(runes) <= previewRunes {
		return content
	}
	return string(runes[:previewRunes]) + "..."
}
