package postgres

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jmoiron/sqlx"

	"library-circulation/internal/logger"
)

//go:embed schema.sql
var schemaSQL string

// EnsureSchema creates the circulation tables if they do not exist yet.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	logger.DatabaseCall("EnsureSchema", "schema.sql")
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		logger.DatabaseResult("EnsureSchema", 0, err)
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	logger.DatabaseResult("EnsureSchema", 0, nil)
	return nil
}
