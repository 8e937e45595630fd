package dto

import (
	"time"

	"github.com/google/uuid"
)

type SendMessageRequest struct {
	SessionId   string   `json:"session_id" validate:"omitempty,max=64"` // generated when absent
	Message     string   `json:"message" validate:"required,min=1,max=8000"`
	Temperature *float64 `json:"temperature" validate:"omitempty,gte=0,lte=2"`
	MaxTokens   *int     `json:"max_tokens" validate:"omitempty,gte=1,lte=8000"`
}

// MemoryUpdateMessage is the payload handed to the maintenance consumer
// after a completed exchange.
type MemoryUpdateMessage struct {
	UserId    uuid.UUID       `json:"user_id"`
	SessionId string          `json:"session_id"`
	UserMsg   *MessagePayload `json:"user_msg"`
	AiMsg     *MessagePayload `json:"ai_msg"`
}

type MessagePayload struct {
	Role             string    `json:"role"`
	Content          string    `json:"content"`
	Model            string    `json:"model,omitempty"`
	TokenCount       int       `json:"token_count,omitempty"`
	ProcessingTimeMs int64     `json:"processing_time_ms,omitempty"`
	ContextUsed      bool      `json:"context_used,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

type MessageResponse struct {
	Id        uuid.UUID `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type SendMessageResponse struct {
	SessionId   string           `json:"session_id"`
	Sent        *MessageResponse `json:"sent"`
	Reply       *MessageResponse `json:"reply"`
	ContextUsed bool             `json:"context_used"`
	Usage       *TokenUsage      `json:"usage,omitempty"`
	Degraded    bool             `json:"degraded,omitempty"`
}

type GetHistoryRequest struct {
	SessionId string `json:"session_id" validate:"required"`
	Limit     int    `json:"limit" validate:"omitempty,min=1,max=200"`
}

type SessionResponse struct {
	SessionId     string    `json:"session_id"`
	Title         string    `json:"title"`
	LastMessage   string    `json:"last_message"`
	LastTimestamp time.Time `json:"last_timestamp"`
	MessageCount  int       `json:"message_count"`
}

type DeleteSessionResponse struct {
	SessionId       string `json:"session_id"`
	DeletedMessages int64  `json:"deleted_messages"`
}
