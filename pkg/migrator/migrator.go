// Package migrator applies the embedded goose migrations of one bounded context.
package migrator

import (
	"database/sql"
	"fmt"
	"io/fs"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// RunMigrations runs all pending goose migrations from the embedded FS against
// dbURL. Each context keeps its own version table (e.g. goose_identity) so the
// contexts migrate independently.
func RunMigrations(dbURL, name string, files fs.FS) error {
	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close() //nolint:errcheck

	return Up(db, name, files)
}

// Up applies the migrations in files on an open database.
func Up(db *sql.DB, name string, files fs.FS) error {
	goose.SetBaseFS(files)
	goose.SetTableName(VersionTable(name))

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("failed to up %s migrations: %w", name, err)
	}
	return nil
}

// VersionTable is the goose version table used for the named context.
func VersionTable(name string) string {
	return "goose_" + name
}
