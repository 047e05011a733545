package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ghuser/stockledger/pkg/database"
	"github.com/ghuser/stockledger/services/inventory/domain"
	domainevents "github.com/ghuser/stockledger/services/inventory/domain/events"
	"github.com/ghuser/stockledger/services/inventory/domain/models"
	"github.com/ghuser/stockledger/services/inventory/domain/repositories"
)

type recordingPublisher struct {
	topics []string
	events []any
}

func (p *recordingPublisher) PublishTx(_ context.Context, _ *sql.Tx, topic string, _ uuid.UUID, _ int, event any) error {
	p.topics = append(p.topics, topic)
	p.events = append(p.events, event)
	return nil
}

func newRepoWithMock(t *testing.T) (*ItemRepository, sqlmock.Sqlmock, *recordingPublisher) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	pub := &recordingPublisher{}
	return NewItemRepository(database.New(sqlDB, nil), pub), mock, pub
}

func anyArgs(n int) []driver.Value {
	args := make([]driver.Value, n)
	for i := range args {
		args[i] = sqlmock.AnyArg()
	}
	return args
}

var testNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func sampleItem(custodian *uuid.UUID) *models.Item {
	return models.NewItem(models.Details{
		LedgerNo:        "LED001",
		ItemName:        "Office Chair",
		Quantity:        4,
		Unit:            "nos",
		ProcurementDate: testNow.AddDate(0, -1, 0),
	}, "IT", uuid.New(), custodian, testNow)
}

func itemRow(id, createdBy uuid.UUID, custodian *uuid.UUID) *sqlmock.Rows {
	var cust, assigned any
	status := "available"
	if custodian != nil {
		cust, assigned, status = custodian.String(), testNow, "assigned"
	}
	return sqlmock.NewRows(itemColumns).AddRow(
		id.String(), "LED001", "Office Chair", 4, "nos", "IT", testNow,
		cust, nil, nil, assigned, createdBy.String(), status,
		nil, nil, testNow, testNow,
	)
}

func TestCreate_PublishesCreatedEvent(t *testing.T) {
	repo, mock, pub := newRepoWithMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO inventory\.items`).
		WithArgs(anyArgs(17)...).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	item := sampleItem(nil)
	if err := repo.Create(context.Background(), item); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(pub.topics) != 1 || pub.topics[0] != domainevents.TopicItemCreated {
		t.Fatalf("expected one %s event, got %v", domainevents.TopicItemCreated, pub.topics)
	}
	ev := pub.events[0].(domainevents.ItemChangedEvent)
	if ev.ItemID != item.ID || ev.ActorID != item.CreatedBy || ev.Status != "available" {
		t.Fatalf("unexpected event: %+v", ev)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unfulfilled expectations: %v", err)
	}
}

func TestCreate_DuplicateLedgerNo(t *testing.T) {
	repo, mock, pub := newRepoWithMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO inventory\.items`).
		WithArgs(anyArgs(17)...).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "items_ledger_no_key"})
	mock.ExpectRollback()

	err := repo.Create(context.Background(), sampleItem(nil))
	var dup *domain.DuplicateError
	if !errors.As(err, &dup) || dup.Field != "ledgerNo" {
		t.Fatalf("expected ledgerNo duplicate, got %v", err)
	}
	if !errors.Is(err, domain.ErrItemAlreadyExists) {
		t.Fatal("duplicate must match ErrItemAlreadyExists")
	}
	if len(pub.topics) != 0 {
		t.Fatal("no event may be published for a failed insert")
	}
}

func TestGetByID_DerivesStatus(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)
	id, creator, custodian := uuid.New(), uuid.New(), uuid.New()
	mock.ExpectQuery(`FROM inventory\.items\s+WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(itemRow(id, creator, &custodian))

	item, err := repo.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if item.Status() != models.StatusAssigned || *item.CustodianID != custodian {
		t.Fatalf("unexpected item: %+v", item)
	}
	if item.IssuedToID != nil || item.DeletedAt != nil {
		t.Fatal("null columns must map to nil")
	}
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)
	mock.ExpectQuery(`FROM inventory\.items`).WillReturnError(sql.ErrNoRows)

	if _, err := repo.GetByID(context.Background(), uuid.New()); !errors.Is(err, domain.ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
}

func TestUpdate_TerminalRowIsInvalidTransition(t *testing.T) {
	repo, mock, pub := newRepoWithMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE inventory\.items`).
		WithArgs(anyArgs(10)...).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Update(context.Background(), sampleItem(nil), uuid.New())
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if len(pub.topics) != 0 {
		t.Fatal("no event may be published")
	}
}

func TestAssignCustodian_PublishesWithActor(t *testing.T) {
	repo, mock, pub := newRepoWithMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE inventory\.items`).
		WithArgs(anyArgs(5)...).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	custodian, actor := uuid.New(), uuid.New()
	item := sampleItem(nil)
	if err := item.AssignCustodian(custodian, testNow); err != nil {
		t.Fatal(err)
	}
	if err := repo.AssignCustodian(context.Background(), item, actor); err != nil {
		t.Fatalf("AssignCustodian: %v", err)
	}
	ev := pub.events[0].(domainevents.ItemChangedEvent)
	if pub.topics[0] != domainevents.TopicItemCustodianAssigned || ev.ActorID != actor || *ev.CustodianID != custodian {
		t.Fatalf("unexpected event %s %+v", pub.topics[0], ev)
	}
}

func TestSoftDelete(t *testing.T) {
	repo, mock, pub := newRepoWithMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE inventory\.items\s+SET status\s+= 'deleted'`).
		WithArgs(anyArgs(2)...).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	item := sampleItem(nil)
	if _, err := item.MarkDeleted(testNow); err != nil {
		t.Fatal(err)
	}
	if err := repo.SoftDelete(context.Background(), item, item.CreatedBy); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	if pub.topics[0] != domainevents.TopicItemDeleted {
		t.Fatalf("unexpected topic %s", pub.topics[0])
	}
}

func TestCondemnQuery_OwnerPredicateOnlyForHolders(t *testing.T) {
	ids := []uuid.UUID{uuid.New(), uuid.New()}

	admin, args, err := condemnQuery(ids, nil, testNow)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(admin, "COALESCE") {
		t.Fatalf("admin condemn must not filter by owner: %s", admin)
	}
	if len(args) != 7 {
		t.Fatalf("expected 7 args, got %d", len(args))
	}

	owner := uuid.New()
	holder, args, err := condemnQuery(ids, &owner, testNow)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(holder, "COALESCE(custodian_id, created_by) = $8") {
		t.Fatalf("holder condemn must filter by owner: %s", holder)
	}
	if args[len(args)-1] != owner {
		t.Fatalf("expected owner as last arg, got %v", args[len(args)-1])
	}
	if !strings.Contains(holder, "id IN ($4,$5)") || !strings.HasSuffix(holder, "RETURNING id") {
		t.Fatalf("unexpected statement: %s", holder)
	}
}

func TestCondemn_ReturnsChangedIDsAndPublishesOnce(t *testing.T) {
	repo, mock, pub := newRepoWithMock(t)
	a, b := uuid.New(), uuid.New()
	actor := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE inventory\.items SET status = \$1.*RETURNING id`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(a.String()))
	mock.ExpectCommit()

	got, err := repo.Condemn(context.Background(), []uuid.UUID{a, b}, nil, actor, testNow)
	if err != nil {
		t.Fatalf("Condemn: %v", err)
	}
	if len(got) != 1 || got[0] != a {
		t.Fatalf("expected only %s, got %v", a, got)
	}
	if len(pub.topics) != 1 || pub.topics[0] != domainevents.TopicItemsCondemned {
		t.Fatalf("expected one condemn event, got %v", pub.topics)
	}
	ev := pub.events[0].(domainevents.ItemsCondemnedEvent)
	if ev.ActorID != actor || len(ev.ItemIDs) != 1 {
		t.Fatalf("unexpected event: %+v", ev)
	}
}

func TestCondemn_NothingEligible(t *testing.T) {
	repo, mock, pub := newRepoWithMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE inventory\.items`).WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectCommit()

	got, err := repo.Condemn(context.Background(), []uuid.UUID{uuid.New()}, nil, uuid.New(), testNow)
	if err != nil || len(got) != 0 {
		t.Fatalf("expected no ids, got %v %v", got, err)
	}
	if len(pub.topics) != 0 {
		t.Fatal("no event when nothing changed")
	}

	got, err = repo.Condemn(context.Background(), nil, nil, uuid.New(), testNow)
	if err != nil || got != nil {
		t.Fatalf("empty input must short-circuit, got %v %v", got, err)
	}
}

func TestList_Filters(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)
	group := "IT"
	id, creator := uuid.New(), uuid.New()
	mock.ExpectQuery(`SELECT .* FROM inventory\.items WHERE group_name = \$1 AND status IN \(\$2,\$3\) ORDER BY created_at DESC`).
		WithArgs("IT", "available", "assigned").
		WillReturnRows(itemRow(id, creator, nil))

	items, err := repo.List(context.Background(), repositories.ListFilter{
		Group:    &group,
		Statuses: []models.Status{models.StatusAvailable, models.StatusAssigned},
	})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 1 || items[0].ID != id {
		t.Fatalf("unexpected items: %+v", items)
	}
}

func TestList_Unfiltered(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)
	mock.ExpectQuery(`FROM inventory\.items ORDER BY created_at DESC`).
		WillReturnRows(sqlmock.NewRows(itemColumns))

	items, err := repo.List(context.Background(), repositories.ListFilter{})
	if err != nil || len(items) != 0 {
		t.Fatalf("expected empty list, got %v %v", items, err)
	}
}

func TestCountReferencing(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)
	user := uuid.New()
	mock.ExpectQuery(`SELECT count\(\*\)\s+FROM inventory\.items`).
		WithArgs(uuid.NullUUID{UUID: user, Valid: true}).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	n, err := repo.CountReferencing(context.Background(), user)
	if err != nil || n != 3 {
		t.Fatalf("expected 3, got %d %v", n, err)
	}
}
