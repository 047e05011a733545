package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/ghuser/stockledger/pkg/database"
	"github.com/ghuser/stockledger/pkg/events"
	"github.com/ghuser/stockledger/services/inventory/domain"
	domainevents "github.com/ghuser/stockledger/services/inventory/domain/events"
	"github.com/ghuser/stockledger/services/inventory/domain/models"
	"github.com/ghuser/stockledger/services/inventory/domain/repositories"
	"github.com/ghuser/stockledger/services/inventory/infrastructure/persistence/postgres/db"
)

const (
	eventVersion     = 1
	ledgerConstraint = "items_ledger_no_key"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var itemColumns = []string{
	"id", "ledger_no", "item_name", "quantity", "unit", "group_name", "procurement_date",
	"custodian_id", "issued_to_id", "issued_date", "assigned_date", "created_by", "status",
	"deleted_at", "condemned_at", "created_at", "updated_at",
}

var terminalStatuses = []string{string(models.StatusDeleted), string(models.StatusCondemned)}

// ItemRepository implements repositories.ItemRepository against PostgreSQL.
type ItemRepository struct {
	db  *database.Database
	pub events.TxPublisher
}

// NewItemRepository returns an ItemRepository. pub may be nil, in which case
// no events are written.
func NewItemRepository(database *database.Database, pub events.TxPublisher) *ItemRepository {
	return &ItemRepository{db: database, pub: pub}
}

var _ repositories.ItemRepository = (*ItemRepository)(nil)

// Create persists a new item and publishes item.created within the same transaction.
func (r *ItemRepository) Create(ctx context.Context, item *models.Item) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if err := db.New(tx).CreateItem(ctx, db.CreateItemParams{
			ID:              item.ID,
			LedgerNo:        item.LedgerNo.String(),
			ItemName:        item.ItemName.String(),
			Quantity:        int32(item.Quantity),
			Unit:            item.Unit.String(),
			GroupName:       item.Group,
			ProcurementDate: item.ProcurementDate,
			CustodianID:     nullUUID(item.CustodianID),
			IssuedToID:      nullUUID(item.IssuedToID),
			IssuedDate:      nullTime(item.IssuedDate),
			AssignedDate:    nullTime(item.AssignedDate),
			CreatedBy:       item.CreatedBy,
			Status:          string(item.Status()),
			DeletedAt:       nullTime(item.DeletedAt),
			CondemnedAt:     nullTime(item.CondemnedAt),
			CreatedAt:       item.CreatedAt,
			UpdatedAt:       item.UpdatedAt,
		}); err != nil {
			return translateWriteError("insert item", err)
		}
		return r.publishChanged(ctx, tx, domainevents.TopicItemCreated, item, item.CreatedBy)
	})
}

// GetByID returns ErrItemNotFound when no row matches.
func (r *ItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	row, err := db.New(r.db.DB()).GetItemByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrItemNotFound
		}
		return nil, fmt.Errorf("query item: %w", err)
	}
	return rowToItem(row), nil
}

// Update rewrites the editable fields and publishes item.updated. A deleted
// or condemned row yields ErrInvalidTransition.
func (r *ItemRepository) Update(ctx context.Context, item *models.Item, actor uuid.UUID) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		n, err := db.New(tx).UpdateItem(ctx, db.UpdateItemParams{
			ID:              item.ID,
			LedgerNo:        item.LedgerNo.String(),
			ItemName:        item.ItemName.String(),
			Quantity:        int32(item.Quantity),
			Unit:            item.Unit.String(),
			ProcurementDate: item.ProcurementDate,
			CustodianID:     nullUUID(item.CustodianID),
			AssignedDate:    nullTime(item.AssignedDate),
			Status:          string(item.Status()),
			UpdatedAt:       item.UpdatedAt,
		})
		if err != nil {
			return translateWriteError("update item", err)
		}
		if n == 0 {
			return domain.ErrInvalidTransition
		}
		return r.publishChanged(ctx, tx, domainevents.TopicItemUpdated, item, actor)
	})
}

// AssignCustodian sets or clears the custodian and publishes
// item.custodian_assigned.
func (r *ItemRepository) AssignCustodian(ctx context.Context, item *models.Item, actor uuid.UUID) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		n, err := db.New(tx).AssignCustodian(ctx, db.AssignCustodianParams{
			ID:           item.ID,
			CustodianID:  nullUUID(item.CustodianID),
			AssignedDate: nullTime(item.AssignedDate),
			Status:       string(item.Status()),
			UpdatedAt:    item.UpdatedAt,
		})
		if err != nil {
			return fmt.Errorf("assign custodian: %w", err)
		}
		if n == 0 {
			return domain.ErrInvalidTransition
		}
		return r.publishChanged(ctx, tx, domainevents.TopicItemCustodianAssigned, item, actor)
	})
}

// SoftDelete marks the item deleted and clears its issue fields.
func (r *ItemRepository) SoftDelete(ctx context.Context, item *models.Item, actor uuid.UUID) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		n, err := db.New(tx).SoftDeleteItem(ctx, db.SoftDeleteItemParams{
			ID:        item.ID,
			DeletedAt: nullTime(item.DeletedAt),
		})
		if err != nil {
			return fmt.Errorf("delete item: %w", err)
		}
		if n == 0 {
			return domain.ErrInvalidTransition
		}
		return r.publishChanged(ctx, tx, domainevents.TopicItemDeleted, item, actor)
	})
}

// Condemn runs one filtered UPDATE over ids. Ineligible ids are left alone
// and simply absent from the result.
func (r *ItemRepository) Condemn(ctx context.Context, ids []uuid.UUID, owner *uuid.UUID, actor uuid.UUID, at time.Time) ([]uuid.UUID, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := condemnQuery(ids, owner, at)
	if err != nil {
		return nil, fmt.Errorf("build condemn: %w", err)
	}

	var condemned []uuid.UUID
	err = r.db.WithTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("condemn items: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var id uuid.UUID
			if err := rows.Scan(&id); err != nil {
				return fmt.Errorf("scan condemned id: %w", err)
			}
			condemned = append(condemned, id)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("iterate condemned ids: %w", err)
		}
		if len(condemned) == 0 {
			return nil
		}

		eventID := uuid.New()
		return r.publish(ctx, tx, domainevents.TopicItemsCondemned, eventID, domainevents.ItemsCondemnedEvent{
			EventID:    eventID,
			Version:    eventVersion,
			ItemIDs:    condemned,
			ActorID:    actor,
			OccurredAt: at,
		})
	})
	if err != nil {
		return nil, err
	}
	return condemned, nil
}

func condemnQuery(ids []uuid.UUID, owner *uuid.UUID, at time.Time) (string, []any, error) {
	q := psql.Update("inventory.items").
		Set("status", string(models.StatusCondemned)).
		Set("condemned_at", at).
		Set("issued_to_id", sq.Expr("NULL")).
		Set("issued_date", sq.Expr("NULL")).
		Set("updated_at", at).
		Where(sq.Eq{"id": ids}).
		Where(sq.NotEq{"status": terminalStatuses})
	if owner != nil {
		q = q.Where(sq.Expr("COALESCE(custodian_id, created_by) = ?", *owner))
	}
	return q.Suffix("RETURNING id").ToSql()
}

// List returns items newest first, filtered by group and status set.
func (r *ItemRepository) List(ctx context.Context, f repositories.ListFilter) ([]*models.Item, error) {
	q := psql.Select(itemColumns...).From("inventory.items")
	if f.Group != nil {
		q = q.Where(sq.Eq{"group_name": *f.Group})
	}
	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			statuses[i] = string(s)
		}
		q = q.Where(sq.Eq{"status": statuses})
	}
	query, args, err := q.OrderBy("created_at DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build item list: %w", err)
	}

	rows, err := r.db.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	var items []*models.Item
	for rows.Next() {
		var i db.InventoryItem
		if err := rows.Scan(
			&i.ID, &i.LedgerNo, &i.ItemName, &i.Quantity, &i.Unit, &i.GroupName, &i.ProcurementDate,
			&i.CustodianID, &i.IssuedToID, &i.IssuedDate, &i.AssignedDate, &i.CreatedBy, &i.Status,
			&i.DeletedAt, &i.CondemnedAt, &i.CreatedAt, &i.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, rowToItem(i))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return items, nil
}

// ListHeldBy returns the active items userID holds as custodian or issue holder.
func (r *ItemRepository) ListHeldBy(ctx context.Context, userID uuid.UUID) ([]*models.Item, error) {
	rows, err := db.New(r.db.DB()).ListItemsHeldBy(ctx, uuid.NullUUID{UUID: userID, Valid: true})
	if err != nil {
		return nil, fmt.Errorf("list held items: %w", err)
	}
	items := make([]*models.Item, len(rows))
	for i, row := range rows {
		items[i] = rowToItem(row)
	}
	return items, nil
}

// CountReferencing counts live items that still name userID.
func (r *ItemRepository) CountReferencing(ctx context.Context, userID uuid.UUID) (int, error) {
	n, err := db.New(r.db.DB()).CountItemsReferencing(ctx, uuid.NullUUID{UUID: userID, Valid: true})
	if err != nil {
		return 0, fmt.Errorf("count referencing items: %w", err)
	}
	return int(n), nil
}

func (r *ItemRepository) publishChanged(ctx context.Context, tx *sql.Tx, topic string, item *models.Item, actor uuid.UUID) error {
	eventID := uuid.New()
	return r.publish(ctx, tx, topic, eventID, domainevents.ItemChangedEvent{
		EventID:     eventID,
		Version:     eventVersion,
		ItemID:      item.ID,
		LedgerNo:    item.LedgerNo.String(),
		Group:       item.Group,
		Status:      string(item.Status()),
		CustodianID: item.CustodianID,
		ActorID:     actor,
		OccurredAt:  item.UpdatedAt,
	})
}

func (r *ItemRepository) publish(ctx context.Context, tx *sql.Tx, topic string, eventID uuid.UUID, event any) error {
	if r.pub == nil {
		return nil
	}
	if err := r.pub.PublishTx(ctx, tx, topic, eventID, eventVersion, event); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

func translateWriteError(op string, err error) error {
	if name, ok := database.UniqueViolation(err); ok && name == ledgerConstraint {
		return &domain.DuplicateError{Field: "ledgerNo"}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// rowToItem maps a db.InventoryItem to a domain models.Item. The status column
// is not read back; it is derived from the row's references and timestamps.
func rowToItem(row db.InventoryItem) *models.Item {
	item := &models.Item{
		ID: row.ID,
		Details: models.Details{
			LedgerNo:        models.LedgerNo(row.LedgerNo),
			ItemName:        models.ItemName(row.ItemName),
			Quantity:        int(row.Quantity),
			Unit:            models.Unit(row.Unit),
			ProcurementDate: row.ProcurementDate,
		},
		Group:     row.GroupName,
		CreatedBy: row.CreatedBy,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
	if row.CustodianID.Valid {
		item.CustodianID = &row.CustodianID.UUID
	}
	if row.IssuedToID.Valid {
		item.IssuedToID = &row.IssuedToID.UUID
	}
	if row.IssuedDate.Valid {
		item.IssuedDate = &row.IssuedDate.Time
	}
	if row.AssignedDate.Valid {
		item.AssignedDate = &row.AssignedDate.Time
	}
	if row.DeletedAt.Valid {
		item.DeletedAt = &row.DeletedAt.Time
	}
	if row.CondemnedAt.Valid {
		item.CondemnedAt = &row.CondemnedAt.Time
	}
	return item
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
