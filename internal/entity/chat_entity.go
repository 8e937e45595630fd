package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

// MessageMetadata is stored as JSON alongside assistant turns.
type MessageMetadata struct {
	Model            string `json:"model,omitempty"`
	TokenCount       int    `json:"token_count,omitempty"`
	ProcessingTimeMs int64  `json:"processing_time_ms,omitempty"`
	ContextUsed      bool   `json:"context_used,omitempty"`
}

// ChatMessage is append-only. Every row carries the owning user id and every
// read or delete must filter by it.
type ChatMessage struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	SessionId string
	Role      string
	Content   string
	Metadata  MessageMetadata
	CreatedAt time.Time
}

// SessionOwner records which user first wrote to a session id. The claim is
// a single conditional insert, so concurrent first writers cannot both win.
type SessionOwner struct {
	SessionId string
	UserId    uuid.UUID
	CreatedAt time.Time
}

// SessionSummary is the ListSessions projection.
type SessionSummary struct {
	SessionId     string
	Title         string
	LastMessage   string
	LastTimestamp time.Time
	MessageCount  int
}
