package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	web "bookswap/internal/adapters/http"
	"bookswap/internal/adapters/http/perf"
	"bookswap/internal/application/orchestrators"
	"bookswap/internal/config"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

// shutdownGrace bounds how long in-flight requests may run after a signal.
const shutdownGrace = 10 * time.Second

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load(args, os.LookupEnv)
	if err != nil {
		return err
	}
	slog.SetDefault(newLogger(cfg))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Performance instrumentation: every store statement and request is timed.
	collector := perf.NewCollector(perf.DefaultRingSize)

	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	be, err := openBackend(connectCtx, cfg, collector)
	cancel()
	if err != nil {
		return err
	}
	defer be.close()

	if cfg.SeedDemoData {
		seeded, err := orchestrators.ExecuteSeedDemo(ctx, orchestrators.SeedDemoDeps{
			Directory:  be.stores.Directory,
			Messages:   be.stores.Messages,
			GenerateID: uuid.NewString,
			Now:        time.Now,
		})
		if err != nil {
			return fmt.Errorf("seed demo data: %w", err)
		}
		if seeded {
			slog.Info("seed_event", "event", "demo_seed_loaded")
		}
	}

	srv := web.NewServer(be.stores, collector, web.Options{
		StoreTimeout:       cfg.StoreTimeout,
		SlowRequest:        cfg.SlowRequest(),
		RateLimitPerSecond: cfg.RateLimitPerSecond,
		PerfEndpoint:       cfg.PerfEndpoint,
		Ping:               be.ping,
	})
	defer srv.Close()

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.StoreTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()
	slog.Info("server_started",
		"version", version,
		"addr", cfg.Addr,
		"env", cfg.Environment,
		"db_driver", cfg.DB.Driver,
		"schema", be.schema,
	)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("server_stopping", "grace", shutdownGrace.String())
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancelShutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	slog.Info("server_stopped")
	return nil
}

// newLogger picks JSON logs for production and text logs for development.
func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.Environment == config.Production {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
