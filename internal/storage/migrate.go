package storage

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/001_initial_schema.sql
var initialSchema string

// Migrate applies the bootstrap schema. Every statement is idempotent,
// so running it on an already-initialized database is a no-op.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, initialSchema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
