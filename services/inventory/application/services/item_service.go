package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ghuser/stockledger/pkg/auth"
	pkgcache "github.com/ghuser/stockledger/pkg/cache"
	"github.com/ghuser/stockledger/pkg/catalog"
	"github.com/ghuser/stockledger/pkg/logger"
	"github.com/ghuser/stockledger/pkg/validator"
	"github.com/ghuser/stockledger/services/inventory/domain"
	"github.com/ghuser/stockledger/services/inventory/domain/models"
	"github.com/ghuser/stockledger/services/inventory/domain/repositories"
	domainsvcs "github.com/ghuser/stockledger/services/inventory/domain/services"
)

// ItemInput is the editable part of an item as submitted by a caller.
type ItemInput struct {
	LedgerNo        string
	ItemName        string
	Quantity        int
	Unit            string
	ProcurementDate time.Time
	Custodian       *uuid.UUID
}

func (in ItemInput) details() (models.Details, error) {
	errs := validator.FieldErrors{}
	ledger, err := models.NewLedgerNo(in.LedgerNo)
	if err != nil {
		errs["ledgerNo"] = "Ledger number must be alphanumeric"
	}
	name, err := models.NewItemName(in.ItemName)
	if err != nil {
		errs["itemName"] = "Item name may contain only letters and spaces"
	}
	switch {
	case in.Quantity < 0:
		errs["quantity"] = "Quantity cannot be negative"
	case in.Quantity > models.MaxQuantity:
		errs["quantity"] = "Quantity is too large"
	}
	unit, err := models.NewUnit(in.Unit)
	if err != nil {
		errs["unit"] = "Unknown unit"
	}
	if in.ProcurementDate.IsZero() {
		errs["procurementDate"] = "Procurement date is required"
	}
	if len(errs) > 0 {
		return models.Details{}, errs
	}
	return models.Details{
		LedgerNo:        ledger,
		ItemName:        name,
		Quantity:        in.Quantity,
		Unit:            unit,
		ProcurementDate: in.ProcurementDate,
	}, nil
}

// ItemView is an item with its account references resolved for display.
// A reference to an account that no longer exists resolves to nil.
type ItemView struct {
	*models.Item
	Custodian *repositories.UserRef
	IssuedTo  *repositories.UserRef
	Creator   *repositories.UserRef
}

// ItemService runs the item lifecycle. Every call takes the caller's
// Principal; role, group and ownership rules come from the domain services
// package. Events are written by the repository (outbox pattern); single item
// reads go through the Redis cache when one is configured, and every write
// evicts the items it touched.
type ItemService struct {
	repo  repositories.ItemRepository
	users repositories.UserDirectory
	cache *pkgcache.ItemCache
	log   logger.Logger
	now   func() time.Time

	transitions transitions
}

// NewItemService returns an ItemService. itemCache may be nil.
func NewItemService(repo repositories.ItemRepository, users repositories.UserDirectory, itemCache *pkgcache.ItemCache, log logger.Logger) *ItemService {
	return &ItemService{
		repo:        repo,
		users:       users,
		cache:       itemCache,
		log:         log,
		now:         func() time.Time { return time.Now().UTC() },
		transitions: newTransitions(),
	}
}

// Create records a new item in the caller's group.
func (s *ItemService) Create(ctx context.Context, p auth.Principal, in ItemInput) (*ItemView, error) {
	if !domainsvcs.CanRecord(p) {
		return nil, domain.ErrForbidden
	}
	d, err := in.details()
	if err != nil {
		return nil, err
	}
	if err := s.checkCustodian(ctx, in.Custodian, p.Group); err != nil {
		return nil, err
	}

	item := models.NewItem(d, p.Group, p.ID, in.Custodian, s.now())
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, err
	}
	s.transitions.add(ctx, "create", 1)
	s.log.InfoContext(ctx, "item recorded",
		"item_id", item.ID, "ledger_no", item.LedgerNo, "group", item.Group, "actor", p.UserID)
	return s.view(ctx, item)
}

// Update replaces an item's details and custodian.
func (s *ItemService) Update(ctx context.Context, p auth.Principal, id uuid.UUID, in ItemInput) (*ItemView, error) {
	d, err := in.details()
	if err != nil {
		return nil, err
	}
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !domainsvcs.CanEdit(p, item) {
		return nil, domain.ErrForbidden
	}
	if err := s.checkCustodian(ctx, in.Custodian, item.Group); err != nil {
		return nil, err
	}
	if err := item.Update(d, in.Custodian, s.now()); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, item, p.ID); err != nil {
		return nil, err
	}
	s.evict(ctx, item.ID)
	s.transitions.add(ctx, "update", 1)
	return s.view(ctx, item)
}

// AssignCustodian hands an item to an approved account of the item's group.
// Only the responsible holder or an admin may do this.
func (s *ItemService) AssignCustodian(ctx context.Context, p auth.Principal, id, custodian uuid.UUID) (*ItemView, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !domainsvcs.CanView(p, item) {
		return nil, domain.ErrForbidden
	}
	if err := s.checkCustodian(ctx, &custodian, item.Group); err != nil {
		return nil, err
	}
	if err := item.AssignCustodian(custodian, s.now()); err != nil {
		return nil, err
	}
	if err := s.repo.AssignCustodian(ctx, item, p.ID); err != nil {
		return nil, err
	}
	s.evict(ctx, item.ID)
	s.transitions.add(ctx, "assign", 1)
	s.log.InfoContext(ctx, "custodian assigned", "item_id", item.ID, "custodian", custodian, "actor", p.UserID)
	return s.view(ctx, item)
}

// Condemn retires every eligible item in ids and returns how many changed.
// Items the caller is not responsible for, and items already deleted or
// condemned, are skipped without error.
func (s *ItemService) Condemn(ctx context.Context, p auth.Principal, ids []uuid.UUID) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	changed, err := s.repo.Condemn(ctx, ids, domainsvcs.CondemnOwner(p), p.ID, s.now())
	if err != nil {
		return 0, err
	}
	s.evict(ctx, changed...)
	s.transitions.add(ctx, "condemn", len(changed))
	s.log.InfoContext(ctx, "items condemned",
		"requested", len(ids), "condemned", len(changed), "actor", p.UserID)
	return len(changed), nil
}

// Delete soft-deletes an item. Deleting an already deleted item succeeds
// without writing.
func (s *ItemService) Delete(ctx context.Context, p auth.Principal, id uuid.UUID) error {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !domainsvcs.CanEdit(p, item) {
		return domain.ErrForbidden
	}
	changed, err := item.MarkDeleted(s.now())
	if err != nil || !changed {
		return err
	}
	if err := s.repo.SoftDelete(ctx, item, p.ID); err != nil {
		return err
	}
	s.evict(ctx, item.ID)
	s.transitions.add(ctx, "delete", 1)
	s.log.InfoContext(ctx, "item deleted", "item_id", item.ID, "actor", p.UserID)
	return nil
}

// Get returns one item with its references resolved. The caller must be its
// responsible holder or an admin.
func (s *ItemService) Get(ctx context.Context, p auth.Principal, id uuid.UUID) (*ItemView, error) {
	item, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !domainsvcs.CanView(p, item) {
		return nil, domain.ErrForbidden
	}
	return s.view(ctx, item)
}

// List returns the items of a group filtered by status, newest first.
// Non-admins only ever see their own group.
func (s *ItemService) List(ctx context.Context, p auth.Principal, group string, statuses []string) ([]*ItemView, error) {
	if group != "" && !catalog.IsGroup(group) {
		return nil, validator.Field("group", "Unknown group")
	}
	filter := repositories.ListFilter{}
	for _, raw := range statuses {
		st, ok := models.ParseStatus(raw)
		if !ok {
			return nil, validator.Field("status", fmt.Sprintf("Unknown status %q", raw))
		}
		filter.Statuses = append(filter.Statuses, st)
	}
	scope, err := domainsvcs.GroupScope(p, group)
	if err != nil {
		return nil, err
	}
	filter.Group = scope

	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, items)
}

// ListForUser returns the assigned or issued items held by userID, or by the
// caller when userID is nil.
func (s *ItemService) ListForUser(ctx context.Context, p auth.Principal, userID *uuid.UUID) ([]*ItemView, error) {
	holder, err := domainsvcs.HolderScope(p, userID)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.ListHeldBy(ctx, holder)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, items)
}

// Custodians lists the accounts the caller may name as custodian.
func (s *ItemService) Custodians(ctx context.Context, p auth.Principal) ([]repositories.UserRef, error) {
	return s.users.ApprovedInGroup(ctx, p.Group)
}

// References counts the live items that still name userID as custodian or
// issue holder. Deleting an account leaves those references in place.
func (s *ItemService) References(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.CountReferencing(ctx, userID)
}

// Warm reloads one item into the cache. Unknown ids are evicted instead.
func (s *ItemService) Warm(ctx context.Context, id uuid.UUID) error {
	if s.cache == nil {
		return nil
	}
	item, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, domain.ErrItemNotFound) {
		return s.cache.Delete(ctx, id)
	}
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, toCached(item))
}

func (s *ItemService) checkCustodian(ctx context.Context, custodian *uuid.UUID, group string) error {
	if custodian == nil {
		return nil
	}
	ok, err := s.users.IsApprovedInGroup(ctx, *custodian, group)
	if err != nil {
		return fmt.Errorf("check custodian: %w", err)
	}
	if !ok {
		return validator.Field("custodian", "Must be an approved user of the item's group")
	}
	return nil
}

// load reads an item through the cache.
func (s *ItemService) load(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, id)
		if err == nil {
			return fromCached(cached), nil
		}
		if !errors.Is(err, redis.Nil) {
			s.log.WarnContext(ctx, "item cache read failed", "item_id", id, "error", err)
		}
	}

	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, toCached(item)); err != nil {
			s.log.WarnContext(ctx, "item cache write failed", "item_id", id, "error", err)
		}
	}
	return item, nil
}

func (s *ItemService) evict(ctx context.Context, ids ...uuid.UUID) {
	if s.cache == nil || len(ids) == 0 {
		return
	}
	if err := s.cache.Delete(ctx, ids...); err != nil {
		s.log.WarnContext(ctx, "item cache eviction failed", "items", len(ids), "error", err)
	}
}

func (s *ItemService) view(ctx context.Context, item *models.Item) (*ItemView, error) {
	views, err := s.resolve(ctx, []*models.Item{item})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

// resolve looks up every referenced account in one directory call.
func (s *ItemService) resolve(ctx context.Context, items []*models.Item) ([]*ItemView, error) {
	seen := map[uuid.UUID]bool{}
	var ids []uuid.UUID
	add := func(id *uuid.UUID) {
		if id != nil && !seen[*id] {
			seen[*id] = true
			ids = append(ids, *id)
		}
	}
	for _, it := range items {
		add(it.CustodianID)
		add(it.IssuedToID)
		add(&it.CreatedBy)
	}

	refs, err := s.users.Lookup(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve references: %w", err)
	}
	ref := func(id *uuid.UUID) *repositories.UserRef {
		if id == nil {
			return nil
		}
		if r, ok := refs[*id]; ok {
			return &r
		}
		return nil
	}

	views := make([]*ItemView, len(items))
	for i, it := range items {
		views[i] = &ItemView{
			Item:      it,
			Custodian: ref(it.CustodianID),
			IssuedTo:  ref(it.IssuedToID),
			Creator:   ref(&it.CreatedBy),
		}
	}
	return views, nil
}

func toCached(i *models.Item) *pkgcache.CachedItem {
	return &pkgcache.CachedItem{
		ID:              i.ID,
		LedgerNo:        i.LedgerNo.String(),
		ItemName:        i.ItemName.String(),
		Quantity:        i.Quantity,
		Unit:            i.Unit.String(),
		Group:           i.Group,
		ProcurementDate: i.ProcurementDate,
		CustodianID:     i.CustodianID,
		IssuedToID:      i.IssuedToID,
		IssuedDate:      i.IssuedDate,
		AssignedDate:    i.AssignedDate,
		CreatedBy:       i.CreatedBy,
		DeletedAt:       i.DeletedAt,
		CondemnedAt:     i.CondemnedAt,
		CreatedAt:       i.CreatedAt,
		UpdatedAt:       i.UpdatedAt,
	}
}

func fromCached(c *pkgcache.CachedItem) *models.Item {
	return &models.Item{
		ID: c.ID,
		Details: models.Details{
			LedgerNo:        models.LedgerNo(c.LedgerNo),
			ItemName:        models.ItemName(c.ItemName),
			Quantity:        c.Quantity,
			Unit:            models.Unit(c.Unit),
			ProcurementDate: c.ProcurementDate,
		},
		Group:        c.Group,
		CustodianID:  c.CustodianID,
		IssuedToID:   c.IssuedToID,
		IssuedDate:   c.IssuedDate,
		AssignedDate: c.AssignedDate,
		CreatedBy:    c.CreatedBy,
		DeletedAt:    c.DeletedAt,
		CondemnedAt:  c.CondemnedAt,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}
