package services

import (
	"github.com/ghuser/stockledger/pkg/app"
	"github.com/ghuser/stockledger/pkg/cache"
	"github.com/ghuser/stockledger/pkg/catalog"
	"github.com/ghuser/stockledger/services/identity/infrastructure/persistence/postgres"
	"github.com/ghuser/stockledger/services/identity/infrastructure/security"
)

// Services is the application-layer service container for the identity context.
type Services struct {
	Accounts  *AccountService
	Admin     *AdminService
	Directory *DirectoryService
	Settings  *SettingsService
}

// New wires all identity application services with infrastructure from the
// Application container.
func New(a *app.Application) *Services {
	repo := postgres.NewUserRepository(a.Db, a.Publisher())
	hasher := security.NewBcryptHasher(a.Config.PasswordHashCost)

	var store SettingsStore
	if a.Redis != nil {
		store = cache.NewSettingsStore(a.Redis)
	}

	return &Services{
		Accounts:  NewAccountService(repo, hasher, a.Logger, a.Config.RegistrationEnabled),
		Admin:     NewAdminService(repo, a.Logger),
		Directory: NewDirectoryService(repo),
		Settings:  NewSettingsService(defaultSettings(a), store, a.Logger),
	}
}

func defaultSettings(a *app.Application) Settings {
	registration := "enabled"
	if !a.Config.RegistrationEnabled {
		registration = "disabled"
	}
	return Settings{
		UserRegistration:       registration,
		DefaultUserRole:        catalog.RoleUser,
		ItemExpiryNotification: "enabled",
		ExpiryWarningDays:      a.Config.ExpiryWarningDays,
		PasswordPolicy:         a.Config.PasswordPolicy,
		LoginAttempts:          a.Config.LoginRateLimit,
	}
}
