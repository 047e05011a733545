package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

const sessionName = "stockledger_session"

// Session value keys.
const (
	keyID        = "id"
	keyUserID    = "user_id"
	keyRole      = "role"
	keyGroup     = "group"
	keyName      = "name"
	keyEmail     = "email"
	keyExpiresAt = "expires_at"
)

// sessionDeleter is implemented by stores that keep session data server-side.
type sessionDeleter interface {
	Delete(ctx context.Context, id string) error
}

// SessionManager writes and reads the login session on top of a sessions.Store.
type SessionManager struct {
	store       sessions.Store
	ttl         time.Duration
	rememberTTL time.Duration
	now         func() time.Time
}

// NewSessionManager returns a SessionManager. ttl applies to ordinary logins,
// rememberTTL to logins with "remember me".
func NewSessionManager(store sessions.Store, ttl, rememberTTL time.Duration) *SessionManager {
	return &SessionManager{store: store, ttl: ttl, rememberTTL: rememberTTL, now: time.Now}
}

// Login starts a session for p and writes the cookie.
func (m *SessionManager) Login(w http.ResponseWriter, r *http.Request, p Principal, remember bool) error {
	session, err := m.store.Get(r, sessionName)
	if err != nil {
		return fmt.Errorf("get session: %w", err)
	}
	ttl := m.ttl
	if remember {
		ttl = m.rememberTTL
	}
	// new id on every login; the previous server-side session goes away
	if d, ok := m.store.(sessionDeleter); ok && !session.IsNew && session.ID != "" {
		if err := d.Delete(r.Context(), session.ID); err != nil {
			return fmt.Errorf("delete previous session: %w", err)
		}
	}
	session.ID = ""
	session.Options.MaxAge = int(ttl.Seconds())
	writePrincipal(session, p)
	session.Values[keyExpiresAt] = m.now().Add(ttl).Unix()

	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Update rewrites the principal fields of the current session, keeping its
// expiry. Used after a profile change or a refresh from the identity store.
func (m *SessionManager) Update(w http.ResponseWriter, r *http.Request, p Principal) error {
	session, err := m.store.Get(r, sessionName)
	if err != nil {
		return fmt.Errorf("get session: %w", err)
	}
	if session.IsNew {
		return ErrUnauthenticated
	}
	if exp, ok := session.Values[keyExpiresAt].(int64); ok {
		left := time.Unix(exp, 0).Sub(m.now())
		if left < time.Second {
			if err := m.Logout(w, r); err != nil {
				return err
			}
			return ErrUnauthenticated
		}
		session.Options.MaxAge = int(left / time.Second)
	}
	writePrincipal(session, p)
	return session.Save(r, w)
}

// Logout deletes the server-side session and clears the cookie.
func (m *SessionManager) Logout(w http.ResponseWriter, r *http.Request) error {
	session, err := m.store.Get(r, sessionName)
	if err != nil {
		return fmt.Errorf("get session: %w", err)
	}
	session.Options.MaxAge = -1
	session.Values = map[any]any{}
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Load returns the principal of a valid, unexpired session.
func (m *SessionManager) Load(r *http.Request) (Principal, error) {
	session, err := m.store.Get(r, sessionName)
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}

	exp, ok := session.Values[keyExpiresAt].(int64)
	if !ok || !m.now().Before(time.Unix(exp, 0)) {
		return Principal{}, ErrUnauthenticated
	}

	idStr, _ := session.Values[keyID].(string)
	id, err := uuid.Parse(idStr)
	if err != nil {
		return Principal{}, fmt.Errorf("%w: invalid session id value", ErrUnauthenticated)
	}

	return Principal{
		ID:     id,
		UserID: stringValue(session, keyUserID),
		Role:   stringValue(session, keyRole),
		Group:  stringValue(session, keyGroup),
		Name:   stringValue(session, keyName),
		Email:  stringValue(session, keyEmail),
	}, nil
}

func writePrincipal(session *sessions.Session, p Principal) {
	session.Values[keyID] = p.ID.String()
	session.Values[keyUserID] = p.UserID
	session.Values[keyRole] = p.Role
	session.Values[keyGroup] = p.Group
	session.Values[keyName] = p.Name
	session.Values[keyEmail] = p.Email
}

func stringValue(session *sessions.Session, key string) string {
	s, _ := session.Values[key].(string)
	return s
}
