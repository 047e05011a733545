package auth

import (
	"context"
	"errors"
	"slices"

	"github.com/google/uuid"

	"github.com/ghuser/stockledger/pkg/catalog"
)

// contextKey is an unexported type to prevent key collisions in context.
type contextKey string

const principalKey contextKey = "principal"

// ErrUnauthenticated is returned when no Principal exists in the request context.
// Handlers should return 401 when this error occurs.
var ErrUnauthenticated = errors.New("authentication required")

// Principal is the authenticated caller. It is passed explicitly into every
// application service call.
type Principal struct {
	ID     uuid.UUID // account uuid
	UserID string    // 6-digit employee number
	Role   string
	Group  string
	Name   string
	Email  string
}

// IsAdmin reports whether the caller holds the admin role.
func (p Principal) IsAdmin() bool { return p.Role == catalog.RoleAdmin }

// HasRole reports whether the caller holds one of roles.
func (p Principal) HasRole(roles ...string) bool { return slices.Contains(roles, p.Role) }

// PrincipalFromCtx extracts the authenticated caller from the request context.
func PrincipalFromCtx(ctx context.Context) (Principal, error) {
	p, ok := ctx.Value(principalKey).(Principal)
	if !ok || p.ID == uuid.Nil {
		return Principal{}, ErrUnauthenticated
	}
	return p, nil
}

// WithPrincipal returns a new context carrying p.
// Used by authentication middleware after validating the session.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}
