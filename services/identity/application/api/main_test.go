package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghuser/stockledger/pkg/app"
	"github.com/ghuser/stockledger/pkg/auth"
	"github.com/ghuser/stockledger/pkg/config"
	"github.com/ghuser/stockledger/pkg/logger"
	appsvcs "github.com/ghuser/stockledger/services/identity/application/services"
	"github.com/ghuser/stockledger/services/identity/domain"
	"github.com/ghuser/stockledger/services/identity/domain/models"
	"github.com/ghuser/stockledger/services/identity/domain/repositories"
)

type plainHasher struct{}

func (plainHasher) Hash(p string) (string, error) { return "hashed:" + p, nil }

func (plainHasher) Compare(h, p string) bool { return h == "hashed:"+p }

// stubUsers implements the subset of UserRepository the routes exercise.
type stubUsers struct {
	repositories.UserRepository
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
}

func (s *stubUsers) Create(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *stubUsers) Exists(_ context.Context, field repositories.UniqueField, value string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if field == repositories.FieldUserID && u.UserID == value || field == repositories.FieldEmail && u.Email == value {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubUsers) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, domain.ErrUserNotFound
}

func (s *stubUsers) GetByUserID(_ context.Context, userID string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.UserID == userID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (s *stubUsers) SetStatus(_ context.Context, id uuid.UUID, st models.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[id].Status = st
	return nil
}

type testEnv struct {
	router http.Handler
	repo   *stubUsers
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	repo := &stubUsers{users: map[uuid.UUID]*models.User{}}
	log := logger.NewWithWriter(&config.Config{LogLevel: "error"}, io.Discard)
	cfg := &config.Config{LoginRateLimit: 5, RegistrationEnabled: true}

	store := sessions.NewCookieStore([]byte("test-auth-key-32-bytes-long!!!!!"))
	a := &app.Application{
		Config:   cfg,
		Logger:   log,
		Sessions: auth.NewSessionManager(store, 24*time.Hour, 720*time.Hour),
	}
	svcs := &appsvcs.Services{
		Accounts:  appsvcs.NewAccountService(repo, plainHasher{}, log, true),
		Admin:     appsvcs.NewAdminService(repo, log),
		Directory: appsvcs.NewDirectoryService(repo),
		Settings:  appsvcs.NewSettingsService(appsvcs.Settings{}, nil, log),
	}

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) { IdentityRoutes(r, a, svcs) })
	return &testEnv{router: r, repo: repo}
}

func (e *testEnv) seed(userID string, status models.Status, role models.Role) *models.User {
	u := models.NewUser(models.Registration{
		UserID: userID, Email: userID + "@example.org", Name: "User " + userID,
		Designation: "Technical Officer", Cadre: "drtc", Group: "IT", EmploymentType: "permanent",
	}, "hashed:password1")
	u.Status, u.Role = status, role
	e.repo.users[u.ID] = u
	return u
}

func (e *testEnv) do(method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.RemoteAddr = "203.0.113.7:5000"
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) login(t *testing.T, userID string) *http.Cookie {
	t.Helper()
	w := e.do(http.MethodPost, "/api/auth/login", map[string]any{"userId": userID, "password": "password1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	for _, c := range w.Result().Cookies() {
		if c.Name == "stockledger_session" {
			return c
		}
	}
	t.Fatal("no session cookie")
	return nil
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestRegister(t *testing.T) {
	e := newEnv(t)
	body := map[string]any{
		"userId": "123456", "email": "asha@example.org", "name": "Asha Rao",
		"designation": "Scientist B", "cadre": "drds", "group": "IT",
		"employmentType": "permanent", "password": "password1", "confirmPassword": "password1",
		"role": "admin",
	}

	w := e.do(http.MethodPost, "/api/auth/register", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var stored *models.User
	for _, u := range e.repo.users {
		stored = u
	}
	require.NotNil(t, stored)
	assert.Equal(t, models.RoleUser, stored.Role, "requested role must be ignored")
	assert.Equal(t, models.StatusPending, stored.Status)

	w = e.do(http.MethodPost, "/api/auth/register", body)
	assert.Equal(t, http.StatusConflict, w.Code)
	fields := decode(t, w)["fields"].(map[string]any)
	assert.Equal(t, "User ID already exists", fields["userId"])
}

func TestRegister_FieldErrors(t *testing.T) {
	e := newEnv(t)
	w := e.do(http.MethodPost, "/api/auth/register", map[string]any{
		"userId": "12345", "email": "nope", "phone": "123", "group": "HR",
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	fields := decode(t, w)["fields"].(map[string]any)
	for _, f := range []string{"userId", "email", "phone", "group", "name", "password"} {
		assert.Contains(t, fields, f)
	}
	assert.Empty(t, e.repo.users)
}

func TestLogin_PendingAccount(t *testing.T) {
	e := newEnv(t)
	e.seed("222222", models.StatusPending, models.RoleUser)

	w := e.do(http.MethodPost, "/api/auth/login", map[string]any{"userId": "222222", "password": "password1"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Your account is pending approval", decode(t, w)["error"])

	w = e.do(http.MethodPost, "/api/auth/login", map[string]any{"userId": "222222", "password": "wrong"})
	assert.Equal(t, "Invalid user ID or password", decode(t, w)["error"])
}

func TestLogin_RateLimited(t *testing.T) {
	e := newEnv(t)
	var last int
	for range 6 {
		last = e.do(http.MethodPost, "/api/auth/login", map[string]any{"userId": "999999", "password": "x"}).Code
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
}

func TestMe_WithSession(t *testing.T) {
	e := newEnv(t)
	u := e.seed("111111", models.StatusApproved, models.RoleUser)
	cookie := e.login(t, "111111")

	w := e.do(http.MethodGet, "/api/auth/me", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	user := decode(t, w)["user"].(map[string]any)
	assert.Equal(t, u.ID.String(), user["id"])
	assert.NotContains(t, user, "passwordHash")

	assert.Equal(t, http.StatusUnauthorized, e.do(http.MethodGet, "/api/auth/me", nil).Code)
}

func TestMe_RejectedAfterDeletion(t *testing.T) {
	e := newEnv(t)
	u := e.seed("111111", models.StatusApproved, models.RoleUser)
	cookie := e.login(t, "111111")
	delete(e.repo.users, u.ID)

	assert.Equal(t, http.StatusUnauthorized, e.do(http.MethodGet, "/api/auth/me", nil, cookie).Code)
}

func TestAdminRoutes_Guarded(t *testing.T) {
	e := newEnv(t)
	e.seed("111111", models.StatusApproved, models.RoleUser)
	e.seed("222222", models.StatusApproved, models.RoleInventoryHolder)
	admin := e.seed("000000", models.StatusApproved, models.RoleAdmin)
	pending := e.seed("333333", models.StatusPending, models.RoleUser)

	for _, userID := range []string{"111111", "222222"} {
		w := e.do(http.MethodGet, "/api/admin/settings", nil, e.login(t, userID))
		assert.Equal(t, http.StatusForbidden, w.Code, userID)
	}
	assert.Equal(t, http.StatusUnauthorized, e.do(http.MethodGet, "/api/admin/settings", nil).Code)

	adminCookie := e.login(t, "000000")
	w := e.do(http.MethodPut, "/api/admin/users/"+pending.ID.String()+"/status", map[string]any{"status": "approved"}, adminCookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, models.StatusApproved, e.repo.users[pending.ID].Status)

	// demoted admins lose access on the next request
	e.repo.users[admin.ID].Role = models.RoleUser
	w = e.do(http.MethodGet, "/api/admin/settings", nil, adminCookie)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
