package httpadapter_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	docsadapter "github.com/PabloGalante/docchat/internal/adapters/docs"
	httpadapter "github.com/PabloGalante/docchat/internal/adapters/http"
	"github.com/PabloGalante/docchat/internal/adapters/llm"
	"github.com/PabloGalante/docchat/internal/adapters/storage/memory"
	"github.com/PabloGalante/docchat/internal/app/chat"
	docsapp "github.com/PabloGalante/docchat/internal/app/docs"
	"github.com/PabloGalante/docchat/internal/domain"
)

type noopRetriever struct{}

func (noopRetriever) Retrieve(context.Context, string, int) ([]domain.SearchResult, error) {
	return nil, nil
}

func newTestServer(t *testing.T, withDocs bool) http.Handler {
	t.Helper()

	dataDir := t.TempDir()
	if withDocs {
		for _, name := range []string{"a.pdf", "b.txt", "c.docx", "d.pdf"} {
			if err := os.WriteFile(filepath.Join(dataDir, name), []byte("x"), 0o644); err != nil {
				t.Fatalf("write %s: %v", name, err)
			}
		}
	}

	registry := docsadapter.NewRegistry(dataDir, []string{".pdf", ".docx", ".txt"})
	store := memory.NewSessionStore()

	chatSvc := chat.NewService(store, registry, noopRetriever{}, llm.NewMockLLM())
	docsSvc := docsapp.NewService(registry)

	return httpadapter.NewServer(chatSvc, docsSvc, []string{"http://localhost:3000"})
}

func doJSON(t *testing.T, srv http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return out
}

type chatResp struct {
	Response  string `json:"response"`
	MessageID string `json:"messageId"`
	ChatID    string `json:"chatId"`
	UserID    string `json:"userId"`
	Timestamp string `json:"timestamp"`
	Sources   []struct {
		DocID   string `json:"docId"`
		DocName string `json:"docName"`
	} `json:"sources"`
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, false)

	w := doJSON(t, srv, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestChatEndToEnd(t *testing.T) {
	srv := newTestServer(t, false)

	// First exchange, no chatId.
	w := doJSON(t, srv, http.MethodPost, "/api/v1/chat", map[string]string{"message": "What is X?"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d, body=%s", w.Code, w.Body.String())
	}

	first := decode[chatResp](t, w)
	if !regexp.MustCompile(`^chat-[0-9a-f]{8}$`).MatchString(first.ChatID) {
		t.Fatalf("unexpected chatId: %s", first.ChatID)
	}
	if first.MessageID == "" || first.Response == "" {
		t.Fatalf("expected messageId and response, got %+v", first)
	}

	// Second exchange on the same chat.
	w = doJSON(t, srv, http.MethodPost, "/api/v1/chat", map[string]string{
		"chatId":  first.ChatID,
		"message": "And what about Y?",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	// History holds 4 messages in chronological order.
	w = doJSON(t, srv, http.MethodGet, "/api/v1/chats/"+first.ChatID+"/messages", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	history := decode[struct {
		Messages []struct {
			Role      string `json:"role"`
			Content   string `json:"content"`
			Timestamp string `json:"timestamp"`
		} `json:"messages"`
	}](t, w)

	if len(history.Messages) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(history.Messages))
	}
	wantRoles := []string{"user", "assistant", "user", "assistant"}
	for i, m := range history.Messages {
		if m.Role != wantRoles[i] {
			t.Fatalf("message %d: expected %s, got %s", i, wantRoles[i], m.Role)
		}
	}
	if history.Messages[0].Content != "What is X?" {
		t.Fatalf("history out of order: %q", history.Messages[0].Content)
	}

	// Listing shows exactly one session.
	w = doJSON(t, srv, http.MethodGet, "/api/v1/chats", nil)
	list := decode[struct {
		Chats []struct {
			ChatID       string `json:"chatId"`
			MessageCount int    `json:"messageCount"`
			FirstMessage string `json:"firstMessage"`
		} `json:"chats"`
	}](t, w)

	if len(list.Chats) != 1 {
		t.Fatalf("expected 1 chat, got %d", len(list.Chats))
	}
	if list.Chats[0].MessageCount != 4 || list.Chats[0].FirstMessage != "What is X?" {
		t.Fatalf("unexpected summary: %+v", list.Chats[0])
	}
}

func TestChatEmptyMessageRejected(t *testing.T) {
	srv := newTestServer(t, false)

	w := doJSON(t, srv, http.MethodPost, "/api/v1/chat", map[string]string{"message": "   "})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}

	// No state must have been created.
	w = doJSON(t, srv, http.MethodGet, "/api/v1/chats", nil)
	list := decode[struct {
		Chats []any `json:"chats"`
	}](t, w)
	if len(list.Chats) != 0 {
		t.Fatalf("rejected request must not create sessions, got %d", len(list.Chats))
	}
}

func TestChatSourcesFromRegistry(t *testing.T) {
	srv := newTestServer(t, true)

	w := doJSON(t, srv, http.MethodPost, "/api/v1/chat", map[string]string{"message": "hello"})
	resp := decode[chatResp](t, w)

	if len(resp.Sources) != 3 {
		t.Fatalf("expected sources capped at 3, got %d", len(resp.Sources))
	}
}

func TestDeleteChat(t *testing.T) {
	srv := newTestServer(t, false)

	w := doJSON(t, srv, http.MethodDelete, "/api/v1/chats/chat-deadbeef", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown chat, got %d", w.Code)
	}

	w = doJSON(t, srv, http.MethodPost, "/api/v1/chat", map[string]string{"message": "hi"})
	created := decode[chatResp](t, w)

	w = doJSON(t, srv, http.MethodDelete, "/api/v1/chats/"+created.ChatID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	del := decode[struct {
		Success bool `json:"success"`
	}](t, w)
	if !del.Success {
		t.Fatalf("expected success=true")
	}

	w = doJSON(t, srv, http.MethodGet, "/api/v1/chats/"+created.ChatID+"/messages", nil)
	history := decode[struct {
		Messages []any `json:"messages"`
	}](t, w)
	if len(history.Messages) != 0 {
		t.Fatalf("deleted chat should have empty history")
	}
}

func TestDocsEndpoint(t *testing.T) {
	srv := newTestServer(t, true)

	w := doJSON(t, srv, http.MethodGet, "/api/v1/docs", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without chatId, got %d", w.Code)
	}

	w = doJSON(t, srv, http.MethodGet, "/api/v1/docs?chatId=chat-whatever", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	list := decode[struct {
		Docs []struct {
			ID   string `json:"id"`
			Type string `json:"type"`
		} `json:"docs"`
	}](t, w)
	if len(list.Docs) != 4 {
		t.Fatalf("expected 4 documents, got %d", len(list.Docs))
	}
}
