package domain

import "time"

// Message is one side of a chat exchange. Messages are immutable once
// appended and keep their append order within a session.
type Message struct {
	ID        MessageID
	Role      Role
	Content   string
	Timestamp time.Time
}

// SessionSummary is the metadata projection returned by session listings.
// Sessions without messages are never summarized.
type SessionSummary struct {
	ChatID       ChatID
	MessageCount int
	LastActivity time.Time
	FirstMessage string
}

// Document is a registry entry for one source file the bot can draw on.
type Document struct {
	ID   DocumentID
	Name string
	Type string
}

// SourceAttribution is the per-response projection of a Document.
type SourceAttribution struct {
	DocID           DocumentID
	DocName         string
	RelevantSection string
}

// Chunk is an indexed span of a source document.
type Chunk struct {
	DocumentID DocumentID
	ChunkID    string
	Text       string
	Index      int
}

// SearchResult is a chunk matched against a query, with its score.
type SearchResult struct {
	Chunk Chunk
	Score float64
}
