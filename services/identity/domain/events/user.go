package events

import (
	"time"

	"github.com/google/uuid"
)

// Identity topics.
const (
	TopicUserRegistered    = "user.registered"
	TopicUserStatusChanged = "user.status_changed"
	TopicUserRoleChanged   = "user.role_changed"
	TopicUserDeleted       = "user.deleted"
)

// UserRegisteredEvent is published after a self-registration is stored.
type UserRegisteredEvent struct {
	EventID    uuid.UUID `json:"event_id"`
	Version    int       `json:"version"`
	ID         uuid.UUID `json:"id"`
	UserID     string    `json:"user_id"`
	Group      string    `json:"group"`
	OccurredAt time.Time `json:"occurred_at"`
}

// UserStatusChangedEvent is published when an admin approves or rejects an account.
type UserStatusChangedEvent struct {
	EventID    uuid.UUID `json:"event_id"`
	Version    int       `json:"version"`
	ID         uuid.UUID `json:"id"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

// UserRoleChangedEvent is published when an admin changes an account's role.
type UserRoleChangedEvent struct {
	EventID    uuid.UUID `json:"event_id"`
	Version    int       `json:"version"`
	ID         uuid.UUID `json:"id"`
	Role       string    `json:"role"`
	OccurredAt time.Time `json:"occurred_at"`
}

// UserDeletedEvent is published after an account is hard deleted. Items that
// still reference the account are left untouched.
type UserDeletedEvent struct {
	EventID    uuid.UUID `json:"event_id"`
	Version    int       `json:"version"`
	ID         uuid.UUID `json:"id"`
	OccurredAt time.Time `json:"occurred_at"`
}
