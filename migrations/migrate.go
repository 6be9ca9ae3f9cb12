// Package migrations embeds the goose SQL migrations for the sync service
// schema: users, version ledger, current state, recycle bin, devices, and
// wallet blobs.
package migrations

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed *.sql
var sqlFiles embed.FS

// Migrate applies all pending migrations to db.
func Migrate(db *sql.DB) error {
	goose.SetBaseFS(sqlFiles)

	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("migration error: set dialect: %w", err)
	}

	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	return nil
}
