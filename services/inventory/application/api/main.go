package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/ghuser/stockledger/pkg/app"
	"github.com/ghuser/stockledger/pkg/auth"
	"github.com/ghuser/stockledger/services/inventory/application/handlers"
	appsvcs "github.com/ghuser/stockledger/services/inventory/application/services"
)

// InventoryRoutes registers the item endpoints. Every route needs a session
// and re-reads the caller through resolver, so a revoked, demoted or moved
// account is never served on the role or group its session cached.
func InventoryRoutes(r chi.Router, a *app.Application, svcs *appsvcs.Services, resolver auth.PrincipalResolver) {
	h := handlers.NewItemHandler(svcs.Items, a.Logger)

	r.Route("/inventory", func(r chi.Router) {
		r.Use(auth.RequireAuth(a.Sessions, a.Logger), auth.Refresh(resolver, a.Logger))

		r.Get("/items", h.List)
		r.Get("/items/{id}", h.Get)
		r.Get("/my-items", h.MyItems)
		r.Get("/custodians", h.Custodians)

		r.Post("/items", h.Create)
		r.Post("/items/condemn", h.Condemn)
		r.Put("/items/{id}", h.Update)
		r.Put("/items/{id}/custodian", h.AssignCustodian)
		r.Delete("/items/{id}", h.Delete)
	})
}

// AdminRoutes returns the system-wide item listing for the admin router.
func AdminRoutes(a *app.Application, svcs *appsvcs.Services) func(chi.Router) {
	h := handlers.NewItemHandler(svcs.Items, a.Logger)
	return func(r chi.Router) {
		r.Get("/items", h.List)
	}
}
