package services

import (
	"context"
	"encoding/json"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/ghuser/stockledger/pkg/config"
	"github.com/ghuser/stockledger/pkg/logger"
	"github.com/ghuser/stockledger/services/identity/domain"
	"github.com/ghuser/stockledger/services/identity/domain/models"
	"github.com/ghuser/stockledger/services/identity/domain/repositories"
)

func discardLogger() logger.Logger {
	return logger.NewWithWriter(&config.Config{LogLevel: "error"}, io.Discard)
}

// plainHasher prefixes instead of hashing so tests stay fast.
type plainHasher struct{}

func (plainHasher) Hash(plain string) (string, error) { return "hashed:" + plain, nil }

func (plainHasher) Compare(hash, plain string) bool { return hash == "hashed:"+plain }

// memUsers is an in-memory UserRepository that enforces the unique fields.
type memUsers struct {
	mu       sync.Mutex
	users    map[uuid.UUID]*models.User
	writes   int
	statuses int
	roles    int
}

func newMemUsers(seed ...*models.User) *memUsers {
	m := &memUsers{users: map[uuid.UUID]*models.User{}}
	for _, u := range seed {
		m.users[u.ID] = u
	}
	return m
}

var _ repositories.UserRepository = (*memUsers)(nil)

func (m *memUsers) Create(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		switch {
		case existing.UserID == u.UserID:
			return &domain.DuplicateError{Field: "userId"}
		case existing.Email == u.Email:
			return &domain.DuplicateError{Field: "email"}
		case existing.Phone != nil && u.Phone != nil && *existing.Phone == *u.Phone:
			return &domain.DuplicateError{Field: "phone"}
		}
	}
	cp := *u
	m.users[u.ID] = &cp
	m.writes++
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) GetByUserID(_ context.Context, userID string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.UserID == userID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *memUsers) Exists(_ context.Context, field repositories.UniqueField, value string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		switch field {
		case repositories.FieldUserID:
			if u.UserID == value {
				return true, nil
			}
		case repositories.FieldEmail:
			if u.Email == value {
				return true, nil
			}
		case repositories.FieldPhone:
			if u.Phone != nil && *u.Phone == value {
				return true, nil
			}
		}
	}
	return false, nil
}

func (m *memUsers) sorted(keep func(*models.User) bool) []*models.User {
	var out []*models.User
	for _, u := range m.users {
		if keep(u) {
			cp := *u
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *memUsers) ListByStatus(_ context.Context, status *models.Status) ([]*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(func(u *models.User) bool { return status == nil || u.Status == *status }), nil
}

func (m *memUsers) ListApprovedByGroup(_ context.Context, group string) ([]*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.sorted(func(u *models.User) bool { return u.Group == group && u.IsApproved() })
	sort.Slice(out, func(i, j int) bool { return strings.Compare(out[i].Name, out[j].Name) < 0 })
	return out, nil
}

func (m *memUsers) GetMany(_ context.Context, ids []uuid.UUID) ([]*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.User
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memUsers) UpdateProfile(_ context.Context, id uuid.UUID, designation string, passwordHash *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Designation = designation
	if passwordHash != nil {
		u.PasswordHash = *passwordHash
	}
	m.writes++
	return nil
}

func (m *memUsers) SetStatus(_ context.Context, id uuid.UUID, status models.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Status = status
	m.statuses++
	return nil
}

func (m *memUsers) SetRole(_ context.Context, id uuid.UUID, role models.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Role = role
	m.roles++
	return nil
}

func (m *memUsers) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

func seededUser(userID, group string, status models.Status, role models.Role) *models.User {
	u := models.NewUser(models.Registration{
		UserID:         userID,
		Email:          userID + "@example.org",
		Name:           "User " + userID,
		Designation:    "Technical Officer",
		Cadre:          "drtc",
		Group:          group,
		EmploymentType: "permanent",
	}, "hashed:password1")
	u.Status = status
	u.Role = role
	return u
}

type memSettings struct {
	sections map[string]json.RawMessage
}

func (m *memSettings) All(context.Context) (map[string]json.RawMessage, error) {
	return m.sections, nil
}

func (m *memSettings) Save(_ context.Context, section string, raw json.RawMessage) error {
	if m.sections == nil {
		m.sections = map[string]json.RawMessage{}
	}
	m.sections[section] = raw
	return nil
}
