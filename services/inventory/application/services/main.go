package services

import (
	"github.com/ghuser/stockledger/pkg/app"
	"github.com/ghuser/stockledger/pkg/cache"
	"github.com/ghuser/stockledger/services/inventory/domain/repositories"
	"github.com/ghuser/stockledger/services/inventory/infrastructure/persistence/postgres"
)

// Services is the application-layer service container for the inventory context.
type Services struct {
	Items *ItemService
}

// New wires the inventory services. users is the identity directory adapter.
func New(a *app.Application, users repositories.UserDirectory) *Services {
	repo := postgres.NewItemRepository(a.Db, a.Publisher())
	var itemCache *cache.ItemCache
	if a.Redis != nil {
		itemCache = cache.NewItemCache(a.Redis)
	}
	return &Services{
		Items: NewItemService(repo, users, itemCache, a.Logger),
	}
}
