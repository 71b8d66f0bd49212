package domain

import "context"

// SessionStore defines chat session persistence. Implementations are
// shared across requests and must be safe for concurrent use.
type SessionStore interface {
	// SessionExists is a pure lookup with no side effects.
	SessionExists(ctx context.Context, id ChatID) (bool, error)

	// CreateSession creates an empty session if absent. Returns whether
	// creation happened; an existing session is not an error.
	CreateSession(ctx context.Context, id ChatID) (bool, error)

	// AppendMessage appends to the session, creating it first if absent.
	AppendMessage(ctx context.Context, id ChatID, msg *Message) error

	// History returns the session's messages in append order. Unknown
	// ids yield an empty history, never an error.
	History(ctx context.Context, id ChatID) ([]*Message, error)

	// DeleteSession removes the whole session. Returns whether a
	// session existed.
	DeleteSession(ctx context.Context, id ChatID) (bool, error)

	// ListSessions returns summaries for every non-empty session,
	// most recent activity first.
	ListSessions(ctx context.Context) ([]SessionSummary, error)
}

// DocumentRegistry enumerates the source documents available to a chat.
type DocumentRegistry interface {
	Documents(chatID ChatID) []Document
}

// Retriever returns the chunks most relevant to a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int) ([]SearchResult, error)
}

// GenerationClient produces an answer from a question plus retrieved
// context. Implementations own their prompt templating.
type GenerationClient interface {
	Generate(ctx context.Context, question, contextText string) (string, error)
}

// Embedder converts text into a numeric vector. Implementations may
// require a preparation pass over the corpus before embedding.
type Embedder interface {
	Name() string
	Prepare(ctx context.Context, corpus []string) error
	Dimension() int
	Embed(ctx context.Context, text string) ([]float64, error)
}

// VectorIndex persists chunk vectors and supports similarity search.
type VectorIndex interface {
	Init(ctx context.Context, dimension int) error
	Upsert(ctx context.Context, chunks []Chunk, vectors [][]float64) error
	Search(ctx context.Context, vector []float64, topK int) ([]SearchResult, error)
}
