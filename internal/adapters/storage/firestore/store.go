package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/PabloGalante/docchat/internal/domain"
)

// Store is the Firestore-backed SessionStore. Each chat is a document
// in the "chats" collection holding listing metadata, with its messages
// in a "messages" subcollection ordered by an append sequence.
type Store struct {
	client *firestore.Client
}

// NewStore creates a Firestore store for the given project
// (DOCCHAT_GCP_PROJECT).
func NewStore(ctx context.Context, projectID string) (*Store, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required for Firestore store")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}

	return &Store{client: client}, nil
}

func (s *Store) chatsCol() *firestore.CollectionRef {
	return s.client.Collection("chats")
}

func (s *Store) chatDoc(id domain.ChatID) *firestore.DocumentRef {
	return s.chatsCol().Doc(string(id))
}

func (s *Store) messagesCol(id domain.ChatID) *firestore.CollectionRef {
	return s.chatDoc(id).Collection("messages")
}

type chatDoc struct {
	CreatedAt    time.Time `firestore:"created_at"`
	MessageCount int       `firestore:"message_count"`
	LastActivity time.Time `firestore:"last_activity"`
	FirstMessage string    `firestore:"first_message"`
}

type messageDoc struct {
	Role      string    `firestore:"role"`
	Content   string    `firestore:"content"`
	Timestamp time.Time `firestore:"timestamp"`
	Seq       int64     `firestore:"seq"`
}

func (s *Store) SessionExists(ctx context.Context, id domain.ChatID) (bool, error) {
	_, err := s.chatDoc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return false, nil
		}
		return false, fmt.Errorf("firestore SessionExists: %w", err)
	}
	return true, nil
}

func (s *Store) CreateSession(ctx context.Context, id domain.ChatID) (bool, error) {
	doc := chatDoc{CreatedAt: time.Now().UTC()}

	_, err := s.chatDoc(id).Create(ctx, doc)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return false, nil
		}
		return false, fmt.Errorf("firestore CreateSession: %w", err)
	}
	return true, nil
}

func (s *Store) AppendMessage(ctx context.Context, id domain.ChatID, msg *domain.Message) error {
	// Read-modify-write on the chat metadata; appends to one session
	// are not expected to race in the current request model.
	var meta chatDoc
	snap, err := s.chatDoc(id).Get(ctx)
	switch {
	case err == nil:
		if err := snap.DataTo(&meta); err != nil {
			return fmt.Errorf("firestore AppendMessage decode: %w", err)
		}
	case status.Code(err) == codes.NotFound:
		meta = chatDoc{CreatedAt: time.Now().UTC()}
	default:
		return fmt.Errorf("firestore AppendMessage: %w", err)
	}

	meta.MessageCount++
	meta.LastActivity = msg.Timestamp
	if meta.FirstMessage == "" && msg.Role == domain.RoleUser {
		meta.FirstMessage = msg.Content
	}

	if _, err := s.chatDoc(id).Set(ctx, meta); err != nil {
		return fmt.Errorf("firestore AppendMessage meta: %w", err)
	}

	doc := messageDoc{
		Role:      string(msg.Role),
		Content:   msg.Content,
		Timestamp: msg.Timestamp,
		Seq:       time.Now().UnixNano(),
	}

	if _, err := s.messagesCol(id).Doc(string(msg.ID)).Set(ctx, doc); err != nil {
		return fmt.Errorf("firestore AppendMessage message: %w", err)
	}
	return nil
}

func (s *Store) History(ctx context.Context, id domain.ChatID) ([]*domain.Message, error) {
	iter := s.messagesCol(id).OrderBy("seq", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var out []*domain.Message
	for {
		snap, err := iter.Next()
		if err != nil {
			if err == iterator.Done {
				break
			}
			return nil, fmt.Errorf("firestore History: %w", err)
		}

		var doc messageDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode messageDoc: %w", err)
		}

		out = append(out, &domain.Message{
			ID:        domain.MessageID(snap.Ref.ID),
			Role:      domain.Role(doc.Role),
			Content:   doc.Content,
			Timestamp: doc.Timestamp,
		})
	}
	return out, nil
}

func (s *Store) DeleteSession(ctx context.Context, id domain.ChatID) (bool, error) {
	_, err := s.chatDoc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return false, nil
		}
		return false, fmt.Errorf("firestore DeleteSession: %w", err)
	}

	iter := s.messagesCol(id).Documents(ctx)
	defer iter.Stop()
	for {
		snap, err := iter.Next()
		if err != nil {
			if err == iterator.Done {
				break
			}
			return false, fmt.Errorf("firestore DeleteSession messages: %w", err)
		}
		if _, err := snap.Ref.Delete(ctx); err != nil {
			return false, fmt.Errorf("firestore DeleteSession message: %w", err)
		}
	}

	if _, err := s.chatDoc(id).Delete(ctx); err != nil {
		return false, fmt.Errorf("firestore DeleteSession chat: %w", err)
	}
	return true, nil
}

func (s *Store) ListSessions(ctx context.Context) ([]domain.SessionSummary, error) {
	q := s.chatsCol().OrderBy("last_activity", firestore.Desc)

	iter := q.Documents(ctx)
	defer iter.Stop()

	var out []domain.SessionSummary
	for {
		snap, err := iter.Next()
		if err != nil {
			if err == iterator.Done {
				break
			}
			return nil, fmt.Errorf("firestore ListSessions: %w", err)
		}

		var doc chatDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode chatDoc: %w", err)
		}

		if doc.MessageCount == 0 {
			continue
		}

		out = append(out, domain.SessionSummary{
			ChatID:       domain.ChatID(snap.Ref.ID),
			MessageCount: doc.MessageCount,
			LastActivity: doc.LastActivity,
			FirstMessage: truncatePreview(doc.FirstMessage),
		})
	}
	return out, nil
}

func truncatePreview(content string) string {
	runes := []rune(content)
	if len(runes) <= 100 {
		return content
	}
	return string(runes[:100]) + "..."
}
