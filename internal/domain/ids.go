package domain

import (
	"encoding/hex"

	"github.com/google/uuid"
)

// Generated ids follow the "<prefix>-<8 hex chars>" convention used
// across the API (chat-a1b2c3d4, msg-..., and so on).

func NewChatID() ChatID         { return ChatID("chat-" + shortHex()) }
func NewUserID() UserID         { return UserID("user-" + shortHex()) }
func NewMessageID() MessageID   { return MessageID("msg-" + shortHex()) }
func NewDocumentID() DocumentID { return DocumentID("doc-" + shortHex()) }

func shortHex() string {
	id := uuid.New()
	return hex.EncodeToString(id[:4])
}
