package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/ghuser/stockledger/pkg/app"
	"github.com/ghuser/stockledger/pkg/cache"
	"github.com/ghuser/stockledger/pkg/config"
	"github.com/ghuser/stockledger/pkg/database"
	"github.com/ghuser/stockledger/pkg/events"
	"github.com/ghuser/stockledger/pkg/logger"
	"github.com/ghuser/stockledger/pkg/telemetry"
	identitySvcs "github.com/ghuser/stockledger/services/identity/application/services"
	identityEvents "github.com/ghuser/stockledger/services/identity/domain/events"
	inventorySvcs "github.com/ghuser/stockledger/services/inventory/application/services"
	itemEvents "github.com/ghuser/stockledger/services/inventory/domain/events"
	"github.com/ghuser/stockledger/services/inventory/infrastructure/identity"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := config.ValidateForProduction(cfg); err != nil {
		slog.Error("production config validation failed", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg)

	ctx := context.Background()

	otelShutdown, _, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		log.Error("failed to setup otel", "error", err)
		os.Exit(1)
	}
	defer otelShutdown(ctx) //nolint:errcheck

	if err := telemetry.SetupSentry(cfg); err != nil {
		log.Warn("failed to setup sentry, continuing without crash reporting", "error", err)
	}
	defer telemetry.SentryFlush()

	pool, err := database.NewPool(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer pool.Close()
	log.Info("database pool connected")

	eventBus, err := events.NewEventBus(cfg, log)
	if err != nil {
		log.Error("failed to setup event bus", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer eventBus.Close() //nolint:errcheck

	redisClient, err := cache.NewRedisClient(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer redisClient.Close() //nolint:errcheck
	log.Info("redis connected")

	// The worker only reads and publishes nothing, so no EventBus is set on
	// the Application and the repositories run without an outbox.
	a := &app.Application{
		Config: cfg,
		Db:     pool,
		Logger: log,
		Redis:  redisClient,
	}
	items := inventorySvcs.New(a, identity.NewDirectory(identitySvcs.New(a).Directory)).Items

	if err := registerSubscribers(ctx, eventBus, log, items); err != nil {
		log.Error("failed to register subscribers", "error", err)
		os.Exit(1) //nolint:gocritic
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// EventBus.Close() (via defer) waits up to 30s for in-flight handlers.
	log.Info("worker stopped")
}

type subscription struct {
	topic   string
	handler func(context.Context, *message.Message) error
}

// registerSubscribers wires all domain event handlers.
func registerSubscribers(ctx context.Context, bus *events.EventBus, log logger.Logger, items *inventorySvcs.ItemService) error {
	subs := []subscription{
		{itemEvents.TopicItemCreated, warmItem(log, items)},
		{itemEvents.TopicItemUpdated, warmItem(log, items)},
		{itemEvents.TopicItemCustodianAssigned, warmItem(log, items)},
		{itemEvents.TopicItemDeleted, warmItem(log, items)},
		{itemEvents.TopicItemsCondemned, warmCondemned(log, items)},
		{identityEvents.TopicUserDeleted, reportOrphans(log, items)},
	}

	topics := make([]string, 0, len(subs))
	for _, sub := range subs {
		errCh, err := bus.Subscribe(ctx, sub.topic, sub.handler)
		if err != nil {
			return err
		}
		// Drain subscriber errors in background so the channel never blocks.
		go func(topic string) {
			for err := range errCh {
				log.ErrorContext(ctx, "subscriber error", "topic", topic, "error", err)
			}
		}(sub.topic)
		topics = append(topics, sub.topic)
	}

	log.Info("event subscribers registered", "topics", topics)
	return nil
}

// warmItem refreshes the cached read model of the item an event names.
// Handlers must be idempotent: EventBus retries up to 3x on failure.
func warmItem(log logger.Logger, items *inventorySvcs.ItemService) func(context.Context, *message.Message) error {
	return func(ctx context.Context, msg *message.Message) error {
		evt, err := events.Decode[itemEvents.ItemChangedEvent](msg)
		if err != nil {
			return err
		}
		warm(ctx, log, items, evt.ItemID)
		return nil
	}
}

func warmCondemned(log logger.Logger, items *inventorySvcs.ItemService) func(context.Context, *message.Message) error {
	return func(ctx context.Context, msg *message.Message) error {
		evt, err := events.Decode[itemEvents.ItemsCondemnedEvent](msg)
		if err != nil {
			return err
		}
		for _, id := range evt.ItemIDs {
			warm(ctx, log, items, id)
		}
		log.InfoContext(ctx, "condemned items refreshed", "count", len(evt.ItemIDs), "actor_id", evt.ActorID)
		return nil
	}
}

// Cache warming is best-effort; a failure is logged and never retried.
func warm(ctx context.Context, log logger.Logger, items *inventorySvcs.ItemService, id uuid.UUID) {
	if err := items.Warm(ctx, id); err != nil {
		log.WarnContext(ctx, "cache warm failed", "item_id", id, "error", err)
		return
	}
	log.DebugContext(ctx, "cache warmed", "item_id", id)
}

// reportOrphans logs how many live items still point at a deleted account.
// The references stay and read back as null.
func reportOrphans(log logger.Logger, items *inventorySvcs.ItemService) func(context.Context, *message.Message) error {
	return func(ctx context.Context, msg *message.Message) error {
		evt, err := events.Decode[identityEvents.UserDeletedEvent](msg)
		if err != nil {
			return err
		}
		n, err := items.References(ctx, evt.ID)
		if err != nil {
			return err
		}
		if n > 0 {
			log.WarnContext(ctx, "deleted account still referenced by items", "user_id", evt.ID, "items", n)
		}
		return nil
	}
}
