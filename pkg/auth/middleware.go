package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/ghuser/stockledger/pkg/httpx"
	"github.com/ghuser/stockledger/pkg/logger"
)

// ErrPrincipalRevoked is returned by a PrincipalResolver when the account
// behind a session no longer exists or may no longer sign in.
var ErrPrincipalRevoked = errors.New("principal revoked")

// PrincipalResolver re-reads a principal from the identity store.
type PrincipalResolver interface {
	ResolvePrincipal(ctx context.Context, id uuid.UUID) (Principal, error)
}

// RequireAuth is a chi middleware that enforces authentication via session cookies.
// It loads the session, rejects missing or expired ones, and injects the
// Principal into the request context.
//
// After this middleware, handlers can safely call auth.PrincipalFromCtx(r.Context()).
func RequireAuth(m *SessionManager, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := m.Load(r)
			if err != nil {
				log.DebugContext(r.Context(), "session rejected", "error", err)
				httpx.JSONError(w, http.StatusUnauthorized, ErrUnauthenticated.Error())
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

// RequireRole returns 403 unless the principal holds one of roles.
// Must run after RequireAuth.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := PrincipalFromCtx(r.Context())
			if err != nil {
				httpx.JSONError(w, http.StatusUnauthorized, ErrUnauthenticated.Error())
				return
			}
			if !p.HasRole(roles...) {
				httpx.JSONError(w, http.StatusForbidden, "access denied")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Refresh replaces the session principal with the one currently in the
// identity store, so a demoted, moved or deleted account is never trusted on
// its cached role or group. Must run after RequireAuth.
func Refresh(resolver PrincipalResolver, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cached, err := PrincipalFromCtx(r.Context())
			if err != nil {
				httpx.JSONError(w, http.StatusUnauthorized, ErrUnauthenticated.Error())
				return
			}
			p, err := resolver.ResolvePrincipal(r.Context(), cached.ID)
			switch {
			case errors.Is(err, ErrPrincipalRevoked):
				log.WarnContext(r.Context(), "session principal revoked", "user_id", cached.UserID)
				httpx.JSONError(w, http.StatusUnauthorized, ErrUnauthenticated.Error())
				return
			case err != nil:
				log.ErrorContext(r.Context(), "resolve principal", "error", err)
				httpx.JSONError(w, http.StatusInternalServerError, "internal server error")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}
