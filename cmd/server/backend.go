package main

import (
	"context"
	"fmt"
	"log/slog"

	web "bookswap/internal/adapters/http"
	"bookswap/internal/adapters/http/perf"
	"bookswap/internal/adapters/storage"
	blockStore "bookswap/internal/adapters/storage/block"
	directoryStore "bookswap/internal/adapters/storage/directory"
	messageStore "bookswap/internal/adapters/storage/message"
	"bookswap/internal/config"
)

// backend is an opened, migrated database with its stores.
type backend struct {
	stores web.Stores
	ping   func(ctx context.Context) error
	close  func()
	schema int
}

// openBackend connects to the configured driver and applies migrations.
// PRE: cfg passed Validate
// POST: Stores are ready; call close when done
func openBackend(ctx context.Context, cfg *config.Config, collector *perf.Collector) (*backend, error) {
	switch cfg.DB.Driver {
	case config.DriverPostgres:
		return openPostgres(ctx, cfg, collector)
	default:
		return openSQLite(cfg, collector)
	}
}

func openSQLite(cfg *config.Config, collector *perf.Collector) (*backend, error) {
	db, err := storage.OpenSQLite(cfg.DB.Path, cfg.DB.BusyTimeoutMs, cfg.DB.MaxOpenConns)
	if err != nil {
		return nil, err
	}
	version, err := storage.SchemaVersion(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	slog.Info("database_ready", "driver", config.DriverSQLite, "path", cfg.DB.Path, "schema", version)

	timed := storage.NewTimedDB(db, collector, cfg.SlowQuery())
	return &backend{
		stores: web.Stores{
			Messages:  messageStore.NewSQLiteStore(timed),
			Blocks:    blockStore.NewSQLiteStore(timed),
			Directory: directoryStore.NewSQLiteStore(timed),
		},
		ping: timed.PingContext,
		close: func() {
			if err := db.Close(); err != nil {
				slog.Warn("database_close_failed", "error", err.Error())
			}
		},
		schema: version,
	}, nil
}

func openPostgres(ctx context.Context, cfg *config.Config, collector *perf.Collector) (*backend, error) {
	pool, err := storage.ConnectPostgres(ctx, cfg.DB.URL, int32(cfg.DB.MaxOpenConns), collector, cfg.SlowQuery())
	if err != nil {
		return nil, err
	}
	if err := storage.MigratePostgres(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate postgres: %w", err)
	}
	slog.Info("database_ready", "driver", config.DriverPostgres, "schema", storage.LatestPostgresSchemaVersion())

	return &backend{
		stores: web.Stores{
			Messages:  messageStore.NewPgStore(pool),
			Blocks:    blockStore.NewPgStore(pool),
			Directory: directoryStore.NewPgStore(pool),
		},
		ping:   pool.Ping,
		close:  pool.Close,
		schema: storage.LatestPostgresSchemaVersion(),
	}, nil
}
