/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the shift hours engine server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags and load configuration
  2. Open the configured shift store (sqlite, bolt or memory)
  3. Build the pay policy, then prefer a stored one of the same ID
  4. Start the pay period close scheduler
  5. Optionally seed the demo scenario into an empty store
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -config  YAML config file (default: ./shift-engine.yaml when present)
  -addr    HTTP listen address, overrides server.addr
  -driver  Storage driver: sqlite, bolt or memory
  -db      Database path. Use ":memory:" for in-memory SQLite
  -seed    Load the demo scenario when the store is empty

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the period close scheduler
  2. Stop accepting new connections
  3. Wait for active requests to complete (server.shutdown_timeout)
  4. Close database connection

EXAMPLES:
  # Run with file database
  ./server -db="./data/shifts.db"

  # Run without persistence, with demo data
  ./server -driver=memory -seed

  # Configure through the environment
  SHIFT_PAY_PERIOD_TYPE=biweekly SHIFT_PAY_REFERENCE_DATE=2025-01-06 ./server

SEE ALSO:
  - config/config.go: Configuration sources and precedence
  - api/server.go: Router configuration
  - api/scheduler.go: Pay period close scheduler
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/warp/shift-engine/api"
	"github.com/warp/shift-engine/config"
	"github.com/warp/shift-engine/engine"
	"github.com/warp/shift-engine/engine/store"
	"github.com/warp/shift-engine/logger"
	"github.com/warp/shift-engine/store/bolt"
	"github.com/warp/shift-engine/store/sqlite"
)

const demoScenario = "regular-week"

func main() {
	// Flags
	configPath := flag.String("config", "", "YAML config file")
	addr := flag.String("addr", "", "HTTP listen address")
	driver := flag.String("driver", "", "Storage driver: sqlite, bolt or memory")
	dbPath := flag.String("db", "", "Database path")
	seed := flag.Bool("seed", false, "Load the demo scenario when the store is empty")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *driver != "" {
		cfg.Storage.Driver = *driver
	}
	if *dbPath != "" {
		cfg.Storage.Path = *dbPath
	}
	if *seed {
		cfg.Server.SeedDemo = true
	}

	log := logger.New(cfg.Logging)
	if err := run(cfg, log); err != nil {
		log.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log logger.Logger) error {
	// Initialize store
	shifts, closer, err := openStore(cfg.Storage)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Storage.Driver, err)
	}
	if closer != nil {
		defer closer.Close()
	}

	policy, err := cfg.Policy()
	if err != nil {
		return err
	}

	// Initialize handler
	handler := api.NewHandler(shifts, policy, log)

	// Stored policies win over configuration
	if err := handler.LoadPolicy(context.Background()); err != nil {
		log.Warn("failed to load stored policy", "error", err)
	}

	if cfg.Server.SeedDemo {
		if err := seedDemo(context.Background(), handler); err != nil {
			log.Warn("failed to seed demo scenario", "error", err)
		}
	}

	scheduler := api.NewPeriodCloseScheduler(handler)
	handler.Closer = scheduler
	scheduler.Start()
	defer scheduler.Stop()

	// Create router and server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      api.NewRouter(handler, cfg.Server.CORSOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	errc := make(chan error, 1)
	go func() {
		p := handler.Policy()
		log.Info("server starting",
			"addr", cfg.Server.Addr,
			"driver", cfg.Storage.Driver,
			"policy", p.ID,
			"period_type", p.PeriodType,
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errc:
		return err
	case sig := <-quit:
		log.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}

	log.Info("server stopped")
	return nil
}

// openStore returns the shift store for the configured driver and, for
// file-backed drivers, the handle to close on exit.
func openStore(cfg config.StorageConfig) (engine.ShiftStore, io.Closer, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		s, err := sqlite.New(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	case config.DriverBolt:
		s, err := bolt.Open(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	case config.DriverMemory:
		return store.NewMemory(), nil, nil
	}
	return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}

// seedDemo loads the demo scenario unless the store already holds shifts.
func seedDemo(ctx context.Context, h *api.Handler) error {
	existing, err := h.Store.Range(ctx, time.Time{}, time.Date(9999, 1, 1, 0, 0, 0, 0, time.UTC), true)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	return h.LoadScenarioByID(ctx, demoScenario)
}
