package contract

import (
	"context"

	"ai-assistant-be/internal/entity"
	"ai-assistant-be/internal/repository/specification"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	Update(ctx context.Context, user *entity.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.User, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// Business Specific
	MarkVerified(ctx context.Context, userId uuid.UUID) error
	UpdateLastLogin(ctx context.Context, userId uuid.UUID) error
	UpdatePreferences(ctx context.Context, userId uuid.UUID, prefs entity.UserPreferences) error
	IncrementUsage(ctx context.Context, userId uuid.UUID) error
	ResetMonthlyUsage(ctx context.Context, userId uuid.UUID) error
}
