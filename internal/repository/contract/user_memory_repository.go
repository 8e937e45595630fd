package contract

import (
	"context"

	"ai-assistant-be/internal/entity"

	"github.com/google/uuid"
)

type UserMemoryRepository interface {
	// GetOrCreate returns the user's memory record, creating an empty one
	// on first use. Concurrent callers converge on a single row.
	GetOrCreate(ctx context.Context, userId uuid.UUID) (*entity.UserMemory, error)

	Find(ctx context.Context, userId uuid.UUID) (*entity.UserMemory, error)
	Update(ctx context.Context, memory *entity.UserMemory) error
	Delete(ctx context.Context, userId uuid.UUID) error
}
