// Package services holds the authorization rules of the inventory context.
// They are pure functions of the caller and the item.
package services

import (
	"github.com/google/uuid"

	"github.com/ghuser/stockledger/pkg/auth"
	"github.com/ghuser/stockledger/pkg/catalog"
	"github.com/ghuser/stockledger/services/inventory/domain"
	"github.com/ghuser/stockledger/services/inventory/domain/models"
)

// CanRecord reports whether p may record new items.
func CanRecord(p auth.Principal) bool {
	return p.HasRole(catalog.RoleInventoryHolder, catalog.RoleAdmin)
}

// CanView reports whether p may read item or hand it to another custodian:
// the responsible holder or an admin.
func CanView(p auth.Principal, item *models.Item) bool {
	return p.IsAdmin() || item.ResponsibleHolder() == p.ID
}

// CanEdit reports whether p may edit or delete item: an inventory holder of
// the item's group, or an admin.
func CanEdit(p auth.Principal, item *models.Item) bool {
	if p.IsAdmin() {
		return true
	}
	return p.Role == catalog.RoleInventoryHolder && p.Group == item.Group
}

// GroupScope resolves the group a listing may cover. Admins may ask for any
// group or none (nil); everyone else is pinned to their own group.
func GroupScope(p auth.Principal, requested string) (*string, error) {
	if p.IsAdmin() {
		if requested == "" {
			return nil, nil
		}
		return &requested, nil
	}
	if requested != "" && requested != p.Group {
		return nil, domain.ErrForbidden
	}
	g := p.Group
	return &g, nil
}

// HolderScope resolves whose held items a listing may cover. Only admins may
// ask about another account.
func HolderScope(p auth.Principal, requested *uuid.UUID) (uuid.UUID, error) {
	if requested == nil || *requested == p.ID {
		return p.ID, nil
	}
	if !p.IsAdmin() {
		return uuid.Nil, domain.ErrForbidden
	}
	return *requested, nil
}

// CondemnOwner returns the ownership restriction for a bulk condemn: nil for
// admins, the caller's id otherwise.
func CondemnOwner(p auth.Principal) *uuid.UUID {
	if p.IsAdmin() {
		return nil
	}
	id := p.ID
	return &id
}
