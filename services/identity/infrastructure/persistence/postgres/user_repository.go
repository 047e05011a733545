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
	"github.com/ghuser/stockledger/services/identity/domain"
	domainevents "github.com/ghuser/stockledger/services/identity/domain/events"
	"github.com/ghuser/stockledger/services/identity/domain/models"
	"github.com/ghuser/stockledger/services/identity/domain/repositories"
	"github.com/ghuser/stockledger/services/identity/infrastructure/persistence/postgres/db"
)

// eventVersion is the schema version stamped on every identity event.
const eventVersion = 1

// constraintFields maps unique constraint names onto request field names.
var constraintFields = map[string]string{
	"users_user_id_key": string(repositories.FieldUserID),
	"users_email_key":   string(repositories.FieldEmail),
	"users_phone_key":   string(repositories.FieldPhone),
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var userColumns = []string{
	"id", "user_id", "email", "phone", "name", "designation", "cadre", "group_name",
	"employment_type", "gender", "dob", "role", "status", "is_active", "password_hash",
	"created_at", "updated_at",
}

// UserRepository implements repositories.UserRepository against PostgreSQL.
type UserRepository struct {
	db  *database.Database
	pub events.TxPublisher
}

// NewUserRepository returns a UserRepository. pub may be nil, in which case
// no events are written.
func NewUserRepository(database *database.Database, pub events.TxPublisher) *UserRepository {
	return &UserRepository{db: database, pub: pub}
}

var _ repositories.UserRepository = (*UserRepository)(nil)

// Create inserts the account and publishes UserRegisteredEvent in the same
// transaction.
func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if err := db.New(tx).CreateUser(ctx, db.CreateUserParams{
			ID:             u.ID,
			UserID:         u.UserID,
			Email:          u.Email,
			Phone:          nullString(u.Phone),
			Name:           u.Name,
			Designation:    u.Designation,
			Cadre:          u.Cadre,
			GroupName:      u.Group,
			EmploymentType: u.EmploymentType,
			Gender:         nullString(u.Gender),
			Dob:            nullTime(u.DOB),
			Role:           string(u.Role),
			Status:         string(u.Status),
			IsActive:       u.IsActive,
			PasswordHash:   u.PasswordHash,
			CreatedAt:      u.CreatedAt,
			UpdatedAt:      u.UpdatedAt,
		}); err != nil {
			if name, ok := database.UniqueViolation(err); ok {
				if field, known := constraintFields[name]; known {
					return &domain.DuplicateError{Field: field}
				}
				return domain.ErrUserAlreadyExists
			}
			return fmt.Errorf("insert user: %w", err)
		}

		eventID := uuid.New()
		return r.publish(ctx, tx, domainevents.TopicUserRegistered, eventID, domainevents.UserRegisteredEvent{
			EventID:    eventID,
			Version:    eventVersion,
			ID:         u.ID,
			UserID:     u.UserID,
			Group:      u.Group,
			OccurredAt: u.CreatedAt,
		})
	})
}

// GetByID returns ErrUserNotFound when no row matches.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	row, err := db.New(r.db.DB()).GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	return rowToUser(row), nil
}

// GetByUserID returns ErrUserNotFound when no row matches.
func (r *UserRepository) GetByUserID(ctx context.Context, userID string) (*models.User, error) {
	row, err := db.New(r.db.DB()).GetUserByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("query user by user id: %w", err)
	}
	return rowToUser(row), nil
}

func (r *UserRepository) Exists(ctx context.Context, field repositories.UniqueField, value string) (bool, error) {
	q := db.New(r.db.DB())
	var (
		exists bool
		err    error
	)
	switch field {
	case repositories.FieldUserID:
		exists, err = q.UserIDExists(ctx, value)
	case repositories.FieldEmail:
		exists, err = q.EmailExists(ctx, value)
	case repositories.FieldPhone:
		exists, err = q.PhoneExists(ctx, value)
	default:
		return false, fmt.Errorf("unknown unique field %q", field)
	}
	if err != nil {
		return false, fmt.Errorf("check %s exists: %w", field, err)
	}
	return exists, nil
}

func (r *UserRepository) ListByStatus(ctx context.Context, status *models.Status) ([]*models.User, error) {
	q := db.New(r.db.DB())
	var (
		rows []db.IdentityUser
		err  error
	)
	if status == nil {
		rows, err = q.ListUsers(ctx)
	} else {
		rows, err = q.ListUsersByStatus(ctx, string(*status))
	}
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return rowsToUsers(rows), nil
}

func (r *UserRepository) ListApprovedByGroup(ctx context.Context, group string) ([]*models.User, error) {
	rows, err := db.New(r.db.DB()).ListApprovedUsersByGroup(ctx, group)
	if err != nil {
		return nil, fmt.Errorf("list approved users: %w", err)
	}
	return rowsToUsers(rows), nil
}

// GetMany loads every account among ids with a single IN query.
func (r *UserRepository) GetMany(ctx context.Context, ids []uuid.UUID) ([]*models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := psql.Select(userColumns...).
		From("identity.users").
		Where(sq.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build user lookup: %w", err)
	}

	rows, err := r.db.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		var row db.IdentityUser
		if err := rows.Scan(
			&row.ID, &row.UserID, &row.Email, &row.Phone, &row.Name, &row.Designation,
			&row.Cadre, &row.GroupName, &row.EmploymentType, &row.Gender, &row.Dob,
			&row.Role, &row.Status, &row.IsActive, &row.PasswordHash,
			&row.CreatedAt, &row.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, rowToUser(row))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

// UpdateProfile writes designation and the optional new hash in one statement.
func (r *UserRepository) UpdateProfile(ctx context.Context, id uuid.UUID, designation string, passwordHash *string) error {
	n, err := db.New(r.db.DB()).UpdateProfile(ctx, db.UpdateProfileParams{
		ID:           id,
		Designation:  designation,
		PasswordHash: nullString(passwordHash),
	})
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if n == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) SetStatus(ctx context.Context, id uuid.UUID, status models.Status) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		n, err := db.New(tx).SetUserStatus(ctx, db.SetUserStatusParams{ID: id, Status: string(status)})
		if err != nil {
			return fmt.Errorf("set user status: %w", err)
		}
		if n == 0 {
			return domain.ErrUserNotFound
		}
		eventID := uuid.New()
		return r.publish(ctx, tx, domainevents.TopicUserStatusChanged, eventID, domainevents.UserStatusChangedEvent{
			EventID:    eventID,
			Version:    eventVersion,
			ID:         id,
			Status:     string(status),
			OccurredAt: time.Now().UTC(),
		})
	})
}

func (r *UserRepository) SetRole(ctx context.Context, id uuid.UUID, role models.Role) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		n, err := db.New(tx).SetUserRole(ctx, db.SetUserRoleParams{ID: id, Role: string(role)})
		if err != nil {
			return fmt.Errorf("set user role: %w", err)
		}
		if n == 0 {
			return domain.ErrUserNotFound
		}
		eventID := uuid.New()
		return r.publish(ctx, tx, domainevents.TopicUserRoleChanged, eventID, domainevents.UserRoleChangedEvent{
			EventID:    eventID,
			Version:    eventVersion,
			ID:         id,
			Role:       string(role),
			OccurredAt: time.Now().UTC(),
		})
	})
}

// Delete hard deletes the account. Items referencing it are not touched.
func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		n, err := db.New(tx).DeleteUser(ctx, id)
		if err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		if n == 0 {
			return domain.ErrUserNotFound
		}
		eventID := uuid.New()
		return r.publish(ctx, tx, domainevents.TopicUserDeleted, eventID, domainevents.UserDeletedEvent{
			EventID:    eventID,
			Version:    eventVersion,
			ID:         id,
			OccurredAt: time.Now().UTC(),
		})
	})
}

func (r *UserRepository) publish(ctx context.Context, tx *sql.Tx, topic string, eventID uuid.UUID, event any) error {
	if r.pub == nil {
		return nil
	}
	if err := r.pub.PublishTx(ctx, tx, topic, eventID, eventVersion, event); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

func rowToUser(row db.IdentityUser) *models.User {
	u := &models.User{
		ID:             row.ID,
		UserID:         row.UserID,
		Email:          row.Email,
		Name:           row.Name,
		Designation:    row.Designation,
		Cadre:          row.Cadre,
		Group:          row.GroupName,
		EmploymentType: row.EmploymentType,
		Role:           models.Role(row.Role),
		Status:         models.Status(row.Status),
		IsActive:       row.IsActive,
		PasswordHash:   row.PasswordHash,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}
	if row.Phone.Valid {
		u.Phone = &row.Phone.String
	}
	if row.Gender.Valid {
		u.Gender = &row.Gender.String
	}
	if row.Dob.Valid {
		u.DOB = &row.Dob.Time
	}
	return u
}

func rowsToUsers(rows []db.IdentityUser) []*models.User {
	users := make([]*models.User, len(rows))
	for i, row := range rows {
		users[i] = rowToUser(row)
	}
	return users
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
