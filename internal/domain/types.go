package domain

type ChatID string
type UserID string
type MessageID string
type DocumentID string

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)
