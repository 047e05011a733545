package app

import (
	"github.com/ghuser/stockledger/pkg/auth"
	"github.com/ghuser/stockledger/pkg/cache"
	"github.com/ghuser/stockledger/pkg/config"
	"github.com/ghuser/stockledger/pkg/database"
	"github.com/ghuser/stockledger/pkg/events"
	"github.com/ghuser/stockledger/pkg/logger"
)

// Application holds shared infrastructure dependencies for all bounded contexts.
// Pass it to each context's Routes function during server initialization.
//
// Logging: app.Logger is backed by a trace-aware handler. Use slog's context
// methods and trace_id, span_id and request_id are injected automatically:
//
//	app.Logger.InfoContext(ctx, "item condemned", "count", n)
//
// Use app.Logger.Info/Error (no context) only for startup and shutdown messages.
type Application struct {
	Config   *config.Config
	Db       *database.Database
	Logger   logger.Logger
	EventBus *events.EventBus   // nil disables outbox publishing
	Redis    *cache.RedisClient // nil disables the item cache and settings overrides
	Sessions *auth.SessionManager
}

// Publisher returns the outbox publisher, or nil when no bus is configured.
// The explicit nil keeps repositories from holding a typed-nil interface.
func (a *Application) Publisher() events.TxPublisher {
	if a.EventBus == nil {
		return nil
	}
	return a.EventBus
}
