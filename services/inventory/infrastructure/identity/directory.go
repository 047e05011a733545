// Package identity adapts the identity context's directory to the inventory
// domain's UserDirectory port.
package identity

import (
	"context"

	"github.com/google/uuid"

	identitymodels "github.com/ghuser/stockledger/services/identity/domain/models"
	"github.com/ghuser/stockledger/services/inventory/domain/repositories"
)

// Source is the subset of the identity DirectoryService the adapter reads.
type Source interface {
	Summaries(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]identitymodels.Summary, error)
	ApprovedInGroup(ctx context.Context, group string) ([]identitymodels.Summary, error)
	IsApprovedInGroup(ctx context.Context, id uuid.UUID, group string) (bool, error)
}

// Directory implements repositories.UserDirectory.
type Directory struct {
	src Source
}

func NewDirectory(src Source) *Directory {
	return &Directory{src: src}
}

var _ repositories.UserDirectory = (*Directory)(nil)

func (d *Directory) Lookup(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]repositories.UserRef, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]repositories.UserRef{}, nil
	}
	sums, err := d.src.Summaries(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]repositories.UserRef, len(sums))
	for id, s := range sums {
		out[id] = toRef(s)
	}
	return out, nil
}

func (d *Directory) ApprovedInGroup(ctx context.Context, group string) ([]repositories.UserRef, error) {
	sums, err := d.src.ApprovedInGroup(ctx, group)
	if err != nil {
		return nil, err
	}
	out := make([]repositories.UserRef, len(sums))
	for i, s := range sums {
		out[i] = toRef(s)
	}
	return out, nil
}

func (d *Directory) IsApprovedInGroup(ctx context.Context, id uuid.UUID, group string) (bool, error) {
	return d.src.IsApprovedInGroup(ctx, id, group)
}

func toRef(s identitymodels.Summary) repositories.UserRef {
	return repositories.UserRef{ID: s.ID, UserID: s.UserID, Name: s.Name, Designation: s.Designation}
}
