package services

import (
	"context"
	"io"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ghuser/stockledger/pkg/auth"
	pkgcache "github.com/ghuser/stockledger/pkg/cache"
	"github.com/ghuser/stockledger/pkg/catalog"
	"github.com/ghuser/stockledger/pkg/config"
	"github.com/ghuser/stockledger/pkg/logger"
	"github.com/ghuser/stockledger/services/inventory/domain"
	"github.com/ghuser/stockledger/services/inventory/domain/models"
	"github.com/ghuser/stockledger/services/inventory/domain/repositories"
)

// memItems is an in-memory ItemRepository that mirrors the SQL guards.
type memItems struct {
	mu     sync.Mutex
	items  map[uuid.UUID]*models.Item
	reads  int
	events []string
}

func newMemItems() *memItems {
	return &memItems{items: map[uuid.UUID]*models.Item{}}
}

func clone(i *models.Item) *models.Item {
	cp := *i
	return &cp
}

func (m *memItems) Create(_ context.Context, item *models.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, it := range m.items {
		if it.LedgerNo == item.LedgerNo {
			return &domain.DuplicateError{Field: "ledgerNo"}
		}
	}
	m.items[item.ID] = clone(item)
	m.events = append(m.events, "created")
	return nil
}

func (m *memItems) GetByID(_ context.Context, id uuid.UUID) (*models.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	it, ok := m.items[id]
	if !ok {
		return nil, domain.ErrItemNotFound
	}
	return clone(it), nil
}

func (m *memItems) write(item *models.Item, event string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.items[item.ID]
	if !ok || cur.Status().Terminal() && event != "deleted" || cur.Status() == models.StatusCondemned {
		return domain.ErrInvalidTransition
	}
	m.items[item.ID] = clone(item)
	m.events = append(m.events, event)
	return nil
}

func (m *memItems) Update(_ context.Context, item *models.Item, _ uuid.UUID) error {
	return m.write(item, "updated")
}

func (m *memItems) AssignCustodian(_ context.Context, item *models.Item, _ uuid.UUID) error {
	return m.write(item, "assigned")
}

func (m *memItems) SoftDelete(_ context.Context, item *models.Item, _ uuid.UUID) error {
	return m.write(item, "deleted")
}

func (m *memItems) Condemn(_ context.Context, ids []uuid.UUID, owner *uuid.UUID, _ uuid.UUID, at time.Time) ([]uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var changed []uuid.UUID
	for _, id := range ids {
		it, ok := m.items[id]
		if !ok || it.Status().Terminal() {
			continue
		}
		if owner != nil && it.ResponsibleHolder() != *owner {
			continue
		}
		t := at
		it.CondemnedAt = &t
		it.IssuedToID, it.IssuedDate = nil, nil
		it.UpdatedAt = at
		changed = append(changed, id)
	}
	if len(changed) > 0 {
		m.events = append(m.events, "condemned")
	}
	return changed, nil
}

func (m *memItems) List(_ context.Context, f repositories.ListFilter) ([]*models.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Item
	for _, it := range m.items {
		if f.Group != nil && it.Group != *f.Group {
			continue
		}
		if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, it.Status()) {
			continue
		}
		out = append(out, clone(it))
	}
	slices.SortFunc(out, func(a, b *models.Item) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}

func (m *memItems) ListHeldBy(_ context.Context, userID uuid.UUID) ([]*models.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Item
	for _, it := range m.items {
		st := it.Status()
		if st != models.StatusAssigned && st != models.StatusIssued {
			continue
		}
		if it.CustodianID != nil && *it.CustodianID == userID || it.IssuedToID != nil && *it.IssuedToID == userID {
			out = append(out, clone(it))
		}
	}
	return out, nil
}

func (m *memItems) CountReferencing(ctx context.Context, userID uuid.UUID) (int, error) {
	held, err := m.ListHeldBy(ctx, userID)
	return len(held), err
}

// memDirectory is a fixed set of approved accounts.
type memDirectory struct {
	users map[uuid.UUID]memUser
}

type memUser struct {
	ref   repositories.UserRef
	group string
}

func (d *memDirectory) add(userID, group string) uuid.UUID {
	id := uuid.New()
	d.users[id] = memUser{
		ref:   repositories.UserRef{ID: id, UserID: userID, Name: "User " + userID, Designation: "Technical Officer"},
		group: group,
	}
	return id
}

func (d *memDirectory) Lookup(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]repositories.UserRef, error) {
	out := map[uuid.UUID]repositories.UserRef{}
	for _, id := range ids {
		if u, ok := d.users[id]; ok {
			out[id] = u.ref
		}
	}
	return out, nil
}

func (d *memDirectory) ApprovedInGroup(_ context.Context, group string) ([]repositories.UserRef, error) {
	var out []repositories.UserRef
	for _, u := range d.users {
		if u.group == group {
			out = append(out, u.ref)
		}
	}
	return out, nil
}

func (d *memDirectory) IsApprovedInGroup(_ context.Context, id uuid.UUID, group string) (bool, error) {
	u, ok := d.users[id]
	return ok && u.group == group, nil
}

type fixture struct {
	svc   *ItemService
	repo  *memItems
	dir   *memDirectory
	cache *pkgcache.ItemCache
	redis *miniredis.Miniredis
	clock time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	rc := pkgcache.Wrap(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = rc.Close() })

	f := &fixture{
		repo:  newMemItems(),
		dir:   &memDirectory{users: map[uuid.UUID]memUser{}},
		cache: pkgcache.NewItemCache(rc),
		redis: mr,
		clock: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
	}
	log := logger.NewWithWriter(&config.Config{LogLevel: "error"}, io.Discard)
	f.svc = NewItemService(f.repo, f.dir, f.cache, log)
	f.svc.now = func() time.Time {
		f.clock = f.clock.Add(time.Minute)
		return f.clock
	}
	return f
}

// principal registers an approved account in the directory and returns its
// session principal.
func (f *fixture) principal(userID, role, group string) auth.Principal {
	id := f.dir.add(userID, group)
	return auth.Principal{ID: id, UserID: userID, Role: role, Group: group, Name: "User " + userID}
}

func (f *fixture) holder(userID string) auth.Principal {
	return f.principal(userID, catalog.RoleInventoryHolder, "IT")
}

func (f *fixture) cached(id uuid.UUID) bool {
	return f.redis.Exists("item:" + id.String())
}

func chairInput(ledger string) ItemInput {
	return ItemInput{
		LedgerNo:        ledger,
		ItemName:        "Chair",
		Quantity:        5,
		Unit:            "piece",
		ProcurementDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}
