// Package storagetest opens real databases for store tests.
package storagetest

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"bookswap/internal/adapters/storage"
)

// PostgresURLEnv names the variable that enables Postgres store tests.
const PostgresURLEnv = "BOOKSWAP_TEST_DATABASE_URL"

// OpenPostgres connects to the test database and applies migrations.
// Tests are skipped when PostgresURLEnv is unset. Callers should use
// unique user IDs since the schema is shared across packages.
func OpenPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv(PostgresURLEnv)
	if dsn == "" {
		t.Skipf("%s not set; skipping Postgres store test", PostgresURLEnv)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := storage.ConnectPostgres(ctx, dsn, 8, nil, 0)
	if err != nil {
		t.Fatalf("connect postgres: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := storage.MigratePostgres(ctx, pool); err != nil {
		t.Fatalf("migrate postgres: %v", err)
	}
	return pool
}
