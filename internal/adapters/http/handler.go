package httpadapter

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/PabloGalante/docchat/internal/app/chat"
	"github.com/PabloGalante/docchat/internal/app/docs"
	"github.com/PabloGalante/docchat/internal/domain"
)

const apiPrefix = "/api/v1"

type Server struct {
	chatSvc *chat.Service
	docsSvc *docs.Service
}

func NewServer(chatSvc *chat.Service, docsSvc *docs.Service, allowedOrigins []string) http.Handler {
	s := &Server{chatSvc: chatSvc, docsSvc: docsSvc}
	mux := http.NewServeMux()

	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/health", s.handleHealth)

	// /api/v1/chat              → POST: send a message
	// /api/v1/chats             → GET: list sessions
	// /api/v1/chats/{id}         → DELETE: remove a session
	// /api/v1/chats/{id}/messages → GET: session history
	// /api/v1/docs?chatId=       → GET: available documents
	mux.HandleFunc(apiPrefix+"/chat", s.handleChat)
	mux.HandleFunc(apiPrefix+"/chats", s.handleChats)
	mux.HandleFunc(apiPrefix+"/chats/", s.handleChatWithID)
	mux.HandleFunc(apiPrefix+"/docs", s.handleDocs)

	return chainMiddlewares(mux, withCORS(allowedOrigins), withLogging, withRequestID)
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type chatRequest struct {
	ChatID  string `json:"chatId,omitempty"`
	Message string `json:"message"`
	UserID  string `json:"userId,omitempty"`
}

type sourceResponse struct {
	DocID           string  `json:"docId"`
	DocName         string  `json:"docName"`
	RelevantSection *string `json:"relevantSection"`
}

type chatResponse struct {
	Response  string           `json:"response"`
	MessageID string           `json:"messageId"`
	ChatID    string           `json:"chatId"`
	UserID    string           `json:"userId"`
	Timestamp string           `json:"timestamp"`
	Sources   []sourceResponse `json:"sources,omitempty"`
}

type messageResponse struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

type historyResponse struct {
	Messages []messageResponse `json:"messages"`
}

type sessionResponse struct {
	ChatID       string `json:"chatId"`
	MessageCount int    `json:"messageCount"`
	LastActivity string `json:"lastActivity"`
	FirstMessage string `json:"firstMessage"`
}

type sessionListResponse struct {
	Chats []sessionResponse `json:"chats"`
}

type deleteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type documentResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

type documentListResponse struct {
	Docs []documentResponse `json:"docs"`
}

// ─────────────────────────────────────────────
// Concrete handlers
// ─────────────────────────────────────────────

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Welcome to the docchat API",
		"version": "1.0.0",
		"docs":    apiPrefix + "/docs",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"message": "Service is running",
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	out, err := s.chatSvc.Send(r.Context(), chat.SendInput{
		ChatID:  req.ChatID,
		UserID:  req.UserID,
		Message: req.Message,
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmptyMessage) {
			badRequest(w, "Message cannot be empty")
			return
		}
		internalError(w, err)
		return
	}

	var sources []sourceResponse
	for _, src := range out.Sources {
		sources = append(sources, sourceResponse{
			DocID:   string(src.DocID),
			DocName: src.DocName,
		})
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Response:  out.Response,
		MessageID: string(out.MessageID),
		ChatID:    string(out.ChatID),
		UserID:    string(out.UserID),
		Timestamp: formatTimestamp(out.Timestamp),
		Sources:   sources,
	})
}

func (s *Server) handleChats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	summaries, err := s.chatSvc.ListSessions(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}

	resp := sessionListResponse{Chats: make([]sessionResponse, 0, len(summaries))}
	for _, sum := range summaries {
		resp.Chats = append(resp.Chats, sessionResponse{
			ChatID:       string(sum.ChatID),
			MessageCount: sum.MessageCount,
			LastActivity: formatTimestamp(sum.LastActivity),
			FirstMessage: sum.FirstMessage,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

// /api/v1/chats/{id} or /api/v1/chats/{id}/messages
func (s *Server) handleChatWithID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, apiPrefix+"/chats/")
	parts := strings.Split(path, "/")

	id := strings.TrimSpace(parts[0])
	if id == "" {
		badRequest(w, "chatId cannot be empty")
		return
	}

	if len(parts) == 1 {
		switch r.Method {
		case http.MethodDelete:
			s.handleDeleteChat(w, r, domain.ChatID(id))
		default:
			methodNotAllowed(w)
		}
		return
	}

	if len(parts) == 2 && parts[1] == "messages" {
		switch r.Method {
		case http.MethodGet:
			s.handleChatHistory(w, r, domain.ChatID(id))
		default:
			methodNotAllowed(w)
		}
		return
	}

	http.NotFound(w, r)
}

func (s *Server) handleChatHistory(w http.ResponseWriter, r *http.Request, id domain.ChatID) {
	msgs, err := s.chatSvc.History(r.Context(), id)
	if err != nil {
		internalError(w, err)
		return
	}

	resp := historyResponse{Messages: make([]messageResponse, 0, len(msgs))}
	for _, m := range msgs {
		resp.Messages = append(resp.Messages, messageResponse{
			ID:        string(m.ID),
			Role:      string(m.Role),
			Content:   m.Content,
			Timestamp: formatTimestamp(m.Timestamp),
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteChat(w http.ResponseWriter, r *http.Request, id domain.ChatID) {
	if err := s.chatSvc.Delete(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{
				"error": "Chat session " + string(id) + " not found",
			})
			return
		}
		internalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, deleteResponse{
		Success: true,
		Message: "Chat session " + string(id) + " has been successfully deleted",
	})
}

func (s *Server) handleDocs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	chatID := strings.TrimSpace(r.URL.Query().Get("chatId"))
	if chatID == "" {
		badRequest(w, "chatId cannot be empty")
		return
	}

	documents, err := s.docsSvc.ChatDocuments(r.Context(), domain.ChatID(chatID))
	if err != nil {
		internalError(w, err)
		return
	}

	resp := documentListResponse{Docs: make([]documentResponse, 0, len(documents))}
	for _, d := range documents {
		resp.Docs = append(resp.Docs, documentResponse{
			ID:   string(d.ID),
			Name: d.Name,
			Type: d.Type,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

// ─────────────────────────────────────────────
// HTTP Helpers
// ─────────────────────────────────────────────

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{
		"error": msg,
	})
}

func internalError(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error": "internal server error",
	})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{
		"error": "method not allowed",
	})
}
