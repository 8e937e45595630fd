package unitofwork

import (
	"context"

	"ai-assistant-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	ChatMessageRepository() contract.ChatMessageRepository
	SessionOwnerRepository() contract.SessionOwnerRepository
	UserMemoryRepository() contract.UserMemoryRepository
}
