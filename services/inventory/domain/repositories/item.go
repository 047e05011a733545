package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/stockledger/services/inventory/domain/models"
)

// ListFilter narrows item listings. A nil Group lists every group; an empty
// Statuses lists every status.
type ListFilter struct {
	Group    *string
	Statuses []models.Status
}

// ItemRepository is the persistence interface for the Item aggregate.
// Every write publishes its domain event in the same transaction; actor is
// the account recorded on that event.
type ItemRepository interface {
	// Create inserts a new item. A taken ledger number is returned as
	// *domain.DuplicateError.
	Create(ctx context.Context, item *models.Item) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error)

	// Update writes details, custodian and status. Writes against an item
	// that became terminal in the meantime return domain.ErrInvalidTransition.
	Update(ctx context.Context, item *models.Item, actor uuid.UUID) error
	AssignCustodian(ctx context.Context, item *models.Item, actor uuid.UUID) error
	SoftDelete(ctx context.Context, item *models.Item, actor uuid.UUID) error

	// Condemn marks every eligible id condemned in one statement and returns
	// the ids that changed. Items already deleted or condemned are skipped;
	// when owner is non-nil, so are items whose responsible holder differs.
	Condemn(ctx context.Context, ids []uuid.UUID, owner *uuid.UUID, actor uuid.UUID, at time.Time) ([]uuid.UUID, error)

	// List returns items newest first.
	List(ctx context.Context, f ListFilter) ([]*models.Item, error)
	// ListHeldBy returns assigned or issued items whose custodian or issue
	// recipient is userID.
	ListHeldBy(ctx context.Context, userID uuid.UUID) ([]*models.Item, error)
	// CountReferencing counts live items that still point at userID.
	CountReferencing(ctx context.Context, userID uuid.UUID) (int, error)
}
