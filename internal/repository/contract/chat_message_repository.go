package contract

import (
	"context"

	"ai-assistant-be/internal/entity"
	"ai-assistant-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ChatMessageRepository interface {
	Create(ctx context.Context, message *entity.ChatMessage) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatMessage, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// DeleteBySession removes all of a user's messages in a session and
	// reports how many rows were removed.
	DeleteBySession(ctx context.Context, userId uuid.UUID, sessionId string) (int64, error)

	// ListSessions aggregates a user's messages into per-session summaries,
	// most recently active first.
	ListSessions(ctx context.Context, userId uuid.UUID) ([]*entity.SessionSummary, error)
}
