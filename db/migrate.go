package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// Migrate applies the schema for driver. Every statement is idempotent, so
// running it against an existing database is safe.
func Migrate(ctx context.Context, db *sql.DB, driver string) error {
	var file string
	switch driver {
	case DriverPostgres:
		file = "schema/postgres.sql"
	case DriverSQLite:
		file = "schema/sqlite.sql"
	default:
		return fmt.Errorf("unsupported database driver %q", driver)
	}

	schema, err := schemaFS.ReadFile(file)
	if err != nil {
		return fmt.Errorf("failed to read schema %s: %w", file, err)
	}
	if _, err := db.ExecContext(ctx, string(schema)); err != nil {
		return fmt.Errorf("failed to apply schema %s: %w", file, err)
	}
	return nil
}
