package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ghuser/stockledger/pkg/database"
	"github.com/ghuser/stockledger/services/identity/domain"
	domainevents "github.com/ghuser/stockledger/services/identity/domain/events"
	"github.com/ghuser/stockledger/services/identity/domain/models"
	"github.com/ghuser/stockledger/services/identity/domain/repositories"
)

type recordingPublisher struct {
	topics []string
	events []any
	err    error
}

func (p *recordingPublisher) PublishTx(_ context.Context, _ *sql.Tx, topic string, _ uuid.UUID, _ int, event any) error {
	if p.err != nil {
		return p.err
	}
	p.topics = append(p.topics, topic)
	p.events = append(p.events, event)
	return nil
}

func newRepoWithMock(t *testing.T) (*UserRepository, sqlmock.Sqlmock, *recordingPublisher) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	pub := &recordingPublisher{}
	return NewUserRepository(database.New(sqlDB, nil), pub), mock, pub
}

func anyArgs(n int) []driver.Value {
	args := make([]driver.Value, n)
	for i := range args {
		args[i] = sqlmock.AnyArg()
	}
	return args
}

func userRow(id uuid.UUID) *sqlmock.Rows {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return sqlmock.NewRows(userColumns).AddRow(
		id.String(), "123456", "asha@example.org", "9876543210", "Asha", "Scientist B", "drds", "IT",
		"permanent", nil, nil, "inventory_holder", "approved", true, "$2a$10$hash", now, now,
	)
}

func sampleUser() *models.User {
	phone := "9876543210"
	return models.NewUser(models.Registration{
		UserID:         "123456",
		Email:          "asha@example.org",
		Phone:          &phone,
		Name:           "Asha",
		Designation:    "Scientist B",
		Cadre:          "drds",
		Group:          "IT",
		EmploymentType: "permanent",
	}, "$2a$10$hash")
}

func TestCreate_PublishesRegisteredEvent(t *testing.T) {
	repo, mock, pub := newRepoWithMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO identity\.users`).
		WithArgs(anyArgs(17)...).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	u := sampleUser()
	if err := repo.Create(context.Background(), u); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(pub.topics) != 1 || pub.topics[0] != domainevents.TopicUserRegistered {
		t.Fatalf("expected one %s event, got %v", domainevents.TopicUserRegistered, pub.topics)
	}
	ev, ok := pub.events[0].(domainevents.UserRegisteredEvent)
	if !ok || ev.ID != u.ID || ev.Group != "IT" {
		t.Fatalf("unexpected event payload: %+v", pub.events[0])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unfulfilled expectations: %v", err)
	}
}

func TestCreate_UniqueViolationNamesField(t *testing.T) {
	tests := []struct {
		constraint string
		field      string
	}{
		{"users_user_id_key", "userId"},
		{"users_email_key", "email"},
		{"users_phone_key", "phone"},
	}
	for _, tt := range tests {
		t.Run(tt.constraint, func(t *testing.T) {
			repo, mock, pub := newRepoWithMock(t)
			mock.ExpectBegin()
			mock.ExpectExec(`INSERT INTO identity\.users`).
				WithArgs(anyArgs(17)...).
				WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: tt.constraint})
			mock.ExpectRollback()

			err := repo.Create(context.Background(), sampleUser())
			if !errors.Is(err, domain.ErrUserAlreadyExists) {
				t.Fatalf("expected ErrUserAlreadyExists, got %v", err)
			}
			var dup *domain.DuplicateError
			if !errors.As(err, &dup) || dup.Field != tt.field {
				t.Fatalf("expected duplicate on %s, got %v", tt.field, err)
			}
			if len(pub.topics) != 0 {
				t.Fatal("no event may be published for a failed insert")
			}
		})
	}
}

func TestCreate_PublishFailureRollsBack(t *testing.T) {
	repo, mock, pub := newRepoWithMock(t)
	pub.err = errors.New("outbox down")
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO identity\.users`).
		WithArgs(anyArgs(17)...).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	if err := repo.Create(context.Background(), sampleUser()); err == nil {
		t.Fatal("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unfulfilled expectations: %v", err)
	}
}

func TestGetByID(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)
	id := uuid.New()
	mock.ExpectQuery(`FROM identity\.users\s+WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(userRow(id))

	u, err := repo.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if u.ID != id || u.Group != "IT" || u.Role != models.RoleInventoryHolder {
		t.Fatalf("unexpected user: %+v", u)
	}
	if u.Phone == nil || *u.Phone != "9876543210" {
		t.Fatalf("expected phone, got %v", u.Phone)
	}
	if u.Gender != nil || u.DOB != nil {
		t.Fatal("null columns must map to nil")
	}
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)
	mock.ExpectQuery(`FROM identity\.users`).WillReturnError(sql.ErrNoRows)

	if _, err := repo.GetByID(context.Background(), uuid.New()); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestExists(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)
	mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM identity\.users WHERE email = \$1\)`).
		WithArgs("asha@example.org").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.Exists(context.Background(), repositories.FieldEmail, "asha@example.org")
	if err != nil || !ok {
		t.Fatalf("expected exists, got %v %v", ok, err)
	}

	if _, err := repo.Exists(context.Background(), "name", "x"); err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestGetMany_SingleInQuery(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)
	a, b := uuid.New(), uuid.New()
	mock.ExpectQuery(`SELECT .+ FROM identity\.users WHERE id IN \(\$1,\$2\)`).
		WithArgs(a, b).
		WillReturnRows(userRow(a))

	users, err := repo.GetMany(context.Background(), []uuid.UUID{a, b})
	if err != nil {
		t.Fatalf("GetMany: %v", err)
	}
	if len(users) != 1 || users[0].ID != a {
		t.Fatalf("unexpected users: %+v", users)
	}
}

func TestGetMany_EmptySkipsQuery(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)
	users, err := repo.GetMany(context.Background(), nil)
	if err != nil || users != nil {
		t.Fatalf("expected nil, nil; got %v %v", users, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("no query expected: %v", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)
	id := uuid.New()
	hash := "$2a$10$new"
	mock.ExpectExec(`UPDATE identity\.users\s+SET designation`).
		WithArgs(id, "Scientist C", sql.NullString{String: hash, Valid: true}).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.UpdateProfile(context.Background(), id, "Scientist C", &hash); err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}

	mock.ExpectExec(`UPDATE identity\.users`).
		WithArgs(id, "Scientist C", sql.NullString{}).
		WillReturnResult(sqlmock.NewResult(0, 0))
	if err := repo.UpdateProfile(context.Background(), id, "Scientist C", nil); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestSetStatus(t *testing.T) {
	repo, mock, pub := newRepoWithMock(t)
	id := uuid.New()
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE identity\.users SET status = \$2`).
		WithArgs(id, "approved").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := repo.SetStatus(context.Background(), id, models.StatusApproved); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if len(pub.topics) != 1 || pub.topics[0] != domainevents.TopicUserStatusChanged {
		t.Fatalf("unexpected events: %v", pub.topics)
	}
}

func TestSetRole_NotFound(t *testing.T) {
	repo, mock, pub := newRepoWithMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE identity\.users SET role = \$2`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	if err := repo.SetRole(context.Background(), uuid.New(), models.RoleAdmin); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if len(pub.topics) != 0 {
		t.Fatal("no event for a missing user")
	}
}

func TestDelete_PublishesDeletedEvent(t *testing.T) {
	repo, mock, pub := newRepoWithMock(t)
	id := uuid.New()
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM identity\.users WHERE id = \$1`).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := repo.Delete(context.Background(), id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	ev, ok := pub.events[0].(domainevents.UserDeletedEvent)
	if !ok || ev.ID != id {
		t.Fatalf("unexpected event: %+v", pub.events)
	}
}
