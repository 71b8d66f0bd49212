package chat_test

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"

	"github.com/PabloGalante/docchat/internal/adapters/storage/memory"
	"github.com/PabloGalante/docchat/internal/app/chat"
	"github.com/PabloGalante/docchat/internal/domain"
)

type stubRetriever struct {
	results []domain.SearchResult
	err     error
}

func (r *stubRetriever) Retrieve(context.Context, string, int) ([]domain.SearchResult, error) {
	return r.results, r.err
}

type stubLLM struct {
	reply string
	err   error
}

func (l *stubLLM) Generate(_ context.Context, question, contextText string) (string, error) {
	if l.err != nil {
		return "", l.err
	}
	if l.reply != "" {
		return l.reply, nil
	}
	return fmt.Sprintf("answer to %q", question), nil
}

type stubRegistry struct {
	docs []domain.Document
}

func (r *stubRegistry) Documents(domain.ChatID) []domain.Document { return r.docs }

func newTestService(store domain.SessionStore, registry domain.DocumentRegistry, llm domain.GenerationClient) *chat.Service {
	if store == nil {
		store = memory.NewSessionStore()
	}
	if registry == nil {
		registry = &stubRegistry{}
	}
	if llm == nil {
		llm = &stubLLM{}
	}
	return chat.NewService(store, registry, &stubRetriever{}, llm)
}

func TestSendRejectsEmptyMessage(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSessionStore()
	svc := newTestService(store, nil, nil)

	for _, message := range []string{"", "   ", "\n\t"} {
		_, err := svc.Send(ctx, chat.SendInput{Message: message})
		if !errors.Is(err, domain.ErrEmptyMessage) {
			t.Fatalf("message %q: expected ErrEmptyMessage, got %v", message, err)
		}
	}

	// Rejection must leave zero state behind.
	summaries, err := svc.ListSessions(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(summaries) != 0 {
		t.Fatalf("empty messages must not create sessions, found %d", len(summaries))
	}
}

func TestSendGeneratesIdsWhenUnset(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(nil, nil, nil)

	out, err := svc.Send(ctx, chat.SendInput{Message: "What is X?"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if !regexp.MustCompile(`^chat-[0-9a-f]{8}$`).MatchString(string(out.ChatID)) {
		t.Fatalf("unexpected chat id format: %s", out.ChatID)
	}
	if !regexp.MustCompile(`^user-[0-9a-f]{8}$`).MatchString(string(out.UserID)) {
		t.Fatalf("unexpected user id format: %s", out.UserID)
	}
	if out.Response == "" || out.MessageID == "" {
		t.Fatalf("expected response and message id, got %+v", out)
	}
}

func TestSendTreatsPlaceholderAsUnset(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(nil, nil, nil)

	out, err := svc.Send(ctx, chat.SendInput{ChatID: "string", UserID: "string", Message: "hello"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if out.ChatID == "string" || out.UserID == "string" {
		t.Fatalf("placeholder ids must be replaced, got %+v", out)
	}
}

func TestSendPersistsBothSidesWithSharedTimestamp(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSessionStore()
	svc := newTestService(store, nil, nil)

	out, err := svc.Send(ctx, chat.SendInput{ChatID: "chat-abcd1234", Message: "first question"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if _, err := svc.Send(ctx, chat.SendInput{ChatID: string(out.ChatID), Message: "second question"}); err != nil {
		t.Fatalf("second send: %v", err)
	}

	history, err := svc.History(ctx, out.ChatID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 4 {
		t.Fatalf("expected 4 messages after 2 exchanges, got %d", len(history))
	}

	wantRoles := []domain.Role{domain.RoleUser, domain.RoleAssistant, domain.RoleUser, domain.RoleAssistant}
	for i, m := range history {
		if m.Role != wantRoles[i] {
			t.Fatalf("message %d: expected role %s, got %s", i, wantRoles[i], m.Role)
		}
	}

	if !history[0].Timestamp.Equal(history[1].Timestamp) {
		t.Fatalf("user and assistant messages of one exchange must share a timestamp")
	}
}

func TestSendDegradesOnGenerationFailure(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "numeric backend",
			err:  fmt.Errorf("backend: %w", domain.ErrNumericBackendUnavailable),
			want: "numerical computing library",
		},
		{
			name: "accelerator",
			err:  fmt.Errorf("backend: %w", domain.ErrAcceleratorUnavailable),
			want: "GPU-related",
		},
		{
			name: "unknown",
			err:  errors.New("boom"),
			want: "trouble processing your request",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := memory.NewSessionStore()
			svc := newTestService(store, nil, &stubLLM{err: tc.err})

			out, err := svc.Send(ctx, chat.SendInput{Message: "anything"})
			if err != nil {
				t.Fatalf("degraded requests must still succeed: %v", err)
			}
			if !regexp.MustCompile(tc.want).MatchString(out.Response) {
				t.Fatalf("expected canned reply containing %q, got %q", tc.want, out.Response)
			}

			// The degraded reply is persisted like any other answer.
			history, _ := svc.History(ctx, out.ChatID)
			if len(history) != 2 {
				t.Fatalf("expected both messages persisted, got %d", len(history))
			}
		})
	}
}

func TestSendSourcesCappedAtThree(t *testing.T) {
	ctx := context.Background()

	var docs []domain.Document
	for i := 0; i < 5; i++ {
		docs = append(docs, domain.Document{
			ID:   domain.NewDocumentID(),
			Name: fmt.Sprintf("doc-%d.pdf", i),
			Type: "PDF",
		})
	}

	svc := newTestService(nil, &stubRegistry{docs: docs}, nil)

	out, err := svc.Send(ctx, chat.SendInput{Message: "hello"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(out.Sources) != 3 {
		t.Fatalf("expected 3 sources, got %d", len(out.Sources))
	}
	if out.Sources[0].DocName != "doc-0.pdf" {
		t.Fatalf("sources must keep registry order, got %s", out.Sources[0].DocName)
	}
}

func TestSendNoSourcesWhenRegistryEmpty(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(nil, &stubRegistry{}, nil)

	out, err := svc.Send(ctx, chat.SendInput{Message: "hello"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if out.Sources != nil {
		t.Fatalf("expected nil sources, got %v", out.Sources)
	}
}

func TestDeleteUnknownSession(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(nil, nil, nil)

	err := svc.Delete(ctx, "chat-missing1")
	if !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestDeleteExistingSession(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSessionStore()
	svc := newTestService(store, nil, nil)

	out, err := svc.Send(ctx, chat.SendInput{Message: "hi"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if err := svc.Delete(ctx, out.ChatID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	exists, _ := store.SessionExists(ctx, out.ChatID)
	if exists {
		t.Fatalf("session should be gone")
	}
}
