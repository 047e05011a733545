package repositories

import (
	"context"

	"github.com/google/uuid"
)

// UserRef is the display view of an account referenced by an item.
type UserRef struct {
	ID          uuid.UUID `json:"id"`
	UserID      string    `json:"userId"`
	Name        string    `json:"name"`
	Designation string    `json:"designation"`
}

// UserDirectory resolves account references owned by the identity context.
type UserDirectory interface {
	// Lookup returns the refs of the ids that still exist. Missing ids are
	// absent from the map.
	Lookup(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]UserRef, error)
	// ApprovedInGroup lists approved, active accounts of group.
	ApprovedInGroup(ctx context.Context, group string) ([]UserRef, error)
	// IsApprovedInGroup reports whether id is an approved, active account of group.
	IsApprovedInGroup(ctx context.Context, id uuid.UUID, group string) (bool, error)
}
