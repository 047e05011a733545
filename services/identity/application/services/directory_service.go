package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/ghuser/stockledger/pkg/auth"
	"github.com/ghuser/stockledger/services/identity/domain"
	"github.com/ghuser/stockledger/services/identity/domain/models"
	"github.com/ghuser/stockledger/services/identity/domain/repositories"
)

// DirectoryService is the read-only view of accounts offered to other
// contexts and to the session guard.
type DirectoryService struct {
	repo repositories.UserRepository
}

// NewDirectoryService creates a DirectoryService over repo.
func NewDirectoryService(repo repositories.UserRepository) *DirectoryService {
	return &DirectoryService{repo: repo}
}

// Summaries resolves ids to display fields. Unknown ids are absent from the map.
func (s *DirectoryService) Summaries(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Summary, error) {
	users, err := s.repo.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]models.Summary, len(users))
	for _, u := range users {
		out[u.ID] = u.Summary()
	}
	return out, nil
}

// ApprovedInGroup lists the accounts that may be named custodian in group.
func (s *DirectoryService) ApprovedInGroup(ctx context.Context, group string) ([]models.Summary, error) {
	users, err := s.repo.ListApprovedByGroup(ctx, group)
	if err != nil {
		return nil, err
	}
	out := make([]models.Summary, len(users))
	for i, u := range users {
		out[i] = u.Summary()
	}
	return out, nil
}

// IsApprovedInGroup reports whether id is an approved, active member of group.
func (s *DirectoryService) IsApprovedInGroup(ctx context.Context, id uuid.UUID, group string) (bool, error) {
	u, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, domain.ErrUserNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return u.IsApproved() && u.Group == group, nil
}

// ResolvePrincipal re-reads the caller from the store. Deleted, unapproved or
// inactive accounts yield auth.ErrPrincipalRevoked.
func (s *DirectoryService) ResolvePrincipal(ctx context.Context, id uuid.UUID) (auth.Principal, error) {
	u, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, domain.ErrUserNotFound) {
		return auth.Principal{}, auth.ErrPrincipalRevoked
	}
	if err != nil {
		return auth.Principal{}, err
	}
	if !u.IsApproved() {
		return auth.Principal{}, auth.ErrPrincipalRevoked
	}
	return PrincipalOf(u), nil
}

// PrincipalOf builds the session principal for an account.
func PrincipalOf(u *models.User) auth.Principal {
	return auth.Principal{
		ID:     u.ID,
		UserID: u.UserID,
		Role:   string(u.Role),
		Group:  u.Group,
		Name:   u.Name,
		Email:  u.Email,
	}
}
