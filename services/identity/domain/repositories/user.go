package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/ghuser/stockledger/services/identity/domain/models"
)

// UniqueField names an account attribute guarded by a unique index.
type UniqueField string

// Unique account fields, named as they appear in requests.
const (
	FieldUserID UniqueField = "userId"
	FieldEmail  UniqueField = "email"
	FieldPhone  UniqueField = "phone"
)

// UserRepository is the persistence interface for the User aggregate.
// Writes publish their domain event in the same transaction.
type UserRepository interface {
	// Create inserts a new account. A unique index violation is returned as
	// *domain.DuplicateError naming the field.
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByUserID(ctx context.Context, userID string) (*models.User, error)
	Exists(ctx context.Context, field UniqueField, value string) (bool, error)

	// ListByStatus returns accounts newest first; a nil status lists all.
	ListByStatus(ctx context.Context, status *models.Status) ([]*models.User, error)
	ListApprovedByGroup(ctx context.Context, group string) ([]*models.User, error)
	// GetMany returns the accounts that exist among ids, in no particular order.
	GetMany(ctx context.Context, ids []uuid.UUID) ([]*models.User, error)

	// UpdateProfile writes designation and, when passwordHash is non-nil, the
	// new password hash in a single statement.
	UpdateProfile(ctx context.Context, id uuid.UUID, designation string, passwordHash *string) error
	SetStatus(ctx context.Context, id uuid.UUID, status models.Status) error
	SetRole(ctx context.Context, id uuid.UUID, role models.Role) error
	Delete(ctx context.Context, id uuid.UUID) error
}
