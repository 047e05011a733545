package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/ghuser/stockledger/pkg/app"
	"github.com/ghuser/stockledger/pkg/auth"
	"github.com/ghuser/stockledger/pkg/catalog"
	"github.com/ghuser/stockledger/pkg/httpx"
	"github.com/ghuser/stockledger/services/identity/application/handlers"
	appsvcs "github.com/ghuser/stockledger/services/identity/application/services"
)

// IdentityRoutes registers the auth, profile and admin account endpoints.
// adminRoutes are mounted under /admin behind the same guard chain.
func IdentityRoutes(r chi.Router, a *app.Application, svcs *appsvcs.Services, adminRoutes ...func(chi.Router)) {
	authH := handlers.NewAuthHandler(svcs, a.Sessions, a.Logger)
	adminH := handlers.NewAdminHandler(svcs, a.Logger)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authH.Register)
		r.With(LoginLimiter(a.Config.LoginRateLimit)).Post("/login", authH.Login)
		r.Post("/logout", authH.Logout)
		r.Get("/check/{field}", authH.Check)
		r.With(auth.RequireAuth(a.Sessions, a.Logger)).Get("/me", authH.Me)
	})

	r.With(auth.RequireAuth(a.Sessions, a.Logger)).Put("/profile", authH.UpdateProfile)

	r.Route("/admin", func(r chi.Router) {
		r.Use(AdminOnly(a, svcs)...)
		r.Get("/users", adminH.ListUsers)
		r.Get("/users/{id}", adminH.GetUser)
		r.Put("/users/{id}/status", adminH.SetStatus)
		r.Put("/users/{id}/role", adminH.SetRole)
		r.Delete("/users/{id}", adminH.DeleteUser)
		r.Get("/settings", adminH.GetSettings)
		r.Post("/settings", adminH.SaveSettings)
		for _, fn := range adminRoutes {
			fn(r)
		}
	})
}

// AdminOnly is the guard chain for admin routes: a valid session, a principal
// re-read from the store, and the admin role.
func AdminOnly(a *app.Application, svcs *appsvcs.Services) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		auth.RequireAuth(a.Sessions, a.Logger),
		auth.Refresh(svcs.Directory, a.Logger),
		auth.RequireRole(catalog.RoleAdmin),
	}
}

// LoginLimiter allows perMinute login attempts per client IP.
func LoginLimiter(perMinute int) func(http.Handler) http.Handler {
	return httprate.Limit(perMinute, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
			httpx.JSONError(w, http.StatusTooManyRequests, "Too many login attempts, try again later")
		}),
	)
}
