package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/ghuser/stockledger/pkg/auth"
	"github.com/ghuser/stockledger/pkg/catalog"
	"github.com/ghuser/stockledger/pkg/logger"
	"github.com/ghuser/stockledger/pkg/validator"
	"github.com/ghuser/stockledger/services/identity/domain/models"
	"github.com/ghuser/stockledger/services/identity/domain/repositories"
)

// AdminService is the approval and role workflow. Callers are admins; the
// route guard enforces that, the actor is only recorded in logs.
type AdminService struct {
	repo repositories.UserRepository
	log  logger.Logger
}

// NewAdminService returns an AdminService.
func NewAdminService(repo repositories.UserRepository, log logger.Logger) *AdminService {
	return &AdminService{repo: repo, log: log}
}

// ListUsers lists accounts newest first, optionally filtered by status.
func (s *AdminService) ListUsers(ctx context.Context, status string) ([]*models.User, error) {
	if status == "" {
		return s.repo.ListByStatus(ctx, nil)
	}
	if !catalog.IsAccountStatus(status) {
		return nil, validator.Field("status", "Must be pending, approved or rejected")
	}
	st := models.Status(status)
	return s.repo.ListByStatus(ctx, &st)
}

// GetUser returns ErrUserNotFound when id names no account.
func (s *AdminService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.repo.GetByID(ctx, id)
}

// SetStatus moves an account to status. Any state is reachable from any
// other; setting the current status is a no-op.
func (s *AdminService) SetStatus(ctx context.Context, actor auth.Principal, id uuid.UUID, status string) (*models.User, error) {
	if !catalog.IsAccountStatus(status) {
		return nil, validator.Field("status", "Must be pending, approved or rejected")
	}
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.Status == models.Status(status) {
		return u, nil
	}
	if err := s.repo.SetStatus(ctx, id, models.Status(status)); err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "user status changed",
		"user_id", u.UserID, "from", u.Status, "to", status, "actor", actor.UserID)
	u.Status = models.Status(status)
	return u, nil
}

// SetRole changes an account's role; setting the current role is a no-op.
func (s *AdminService) SetRole(ctx context.Context, actor auth.Principal, id uuid.UUID, role string) (*models.User, error) {
	if !catalog.IsRole(role) {
		return nil, validator.Field("role", "Must be user, inventory_holder or admin")
	}
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.Role == models.Role(role) {
		return u, nil
	}
	if err := s.repo.SetRole(ctx, id, models.Role(role)); err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "user role changed",
		"user_id", u.UserID, "from", u.Role, "to", role, "actor", actor.UserID)
	u.Role = models.Role(role)
	return u, nil
}

// DeleteUser hard deletes an account. Items that reference it keep the
// reference; reads resolve it to nothing.
func (s *AdminService) DeleteUser(ctx context.Context, actor auth.Principal, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "user deleted", "id", id, "actor", actor.UserID)
	return nil
}
