package events

import (
	"time"

	"github.com/google/uuid"
)

// UserRegisteredEvent is published after a successful registration.
type UserRegisteredEvent struct {
	UserId   uuid.UUID
	Email    string
	Username string
	At       time.Time
}

func (e UserRegisteredEvent) EventType() string { return "USER_REGISTERED" }

func (e UserRegisteredEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":  e.UserId.String(),
		"email":    e.Email,
		"username": e.Username,
	}
}

func (e UserRegisteredEvent) Timestamp() time.Time { return e.At }

// AccountDeletedEvent is published when a user removes their account and all
// associated memory and history.
type AccountDeletedEvent struct {
	UserId uuid.UUID
	At     time.Time
}

func (e AccountDeletedEvent) EventType() string { return "ACCOUNT_DELETED" }

func (e AccountDeletedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id": e.UserId.String(),
	}
}

func (e AccountDeletedEvent) Timestamp() time.Time { return e.At }
