package main

import (
	"embed"
	"log/slog"
	"os"

	"github.com/ghuser/stockledger/pkg/config"
	"github.com/ghuser/stockledger/pkg/migrator"
)

//go:embed *.sql
var MigrationsFS embed.FS

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := migrator.RunMigrations(cfg.DatabaseURL, "identity", MigrationsFS); err != nil {
		slog.Error("identity migrations failed", "error", err)
		os.Exit(1)
	}
	slog.Info("identity migrations applied")
}
