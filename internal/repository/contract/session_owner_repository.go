package contract

import (
	"context"

	"ai-assistant-be/internal/entity"
)

type SessionOwnerRepository interface {
	// Claim records the owner of a session if it is unclaimed, and returns
	// the winning owner either way. The first writer wins; concurrent
	// claims never overwrite an existing owner.
	Claim(ctx context.Context, owner *entity.SessionOwner) (*entity.SessionOwner, error)

	Find(ctx context.Context, sessionId string) (*entity.SessionOwner, error)
	Delete(ctx context.Context, sessionId string) error
}
