package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/solarfleet/solarcast/internal/controllers/fetcher"
	"github.com/solarfleet/solarcast/internal/controllers/restserver"
	"github.com/solarfleet/solarcast/internal/database"
	"github.com/solarfleet/solarcast/internal/log"
	"github.com/solarfleet/solarcast/internal/solcast"
	"github.com/solarfleet/solarcast/pkg/config"
	"go.uber.org/zap"
)

// App represents the main application
type App struct {
	configProvider config.Provider
	logger         *zap.SugaredLogger
}

// New creates a new application instance
func New(configProvider config.Provider, logger *zap.SugaredLogger) *App {
	return &App{
		configProvider: configProvider,
		logger:         logger,
	}
}

// Run starts the application and blocks until shutdown
func (a *App) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cfg, err := a.configProvider.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if cfg.API.Key == "" {
		return fmt.Errorf("no upstream API key configured")
	}

	client := solcast.NewClient(cfg.API.Key, cfg.API.Endpoint, a.logger)

	var db *database.Client
	if cfg.Storage.SQLite != nil {
		db, err = database.NewClient(cfg.Storage.SQLite.Path, a.logger)
		if err != nil {
			return err
		}
		defer db.Close()
	}

	for _, controller := range cfg.Controllers {
		switch controller.Type {
		case "fetcher":
			if db == nil {
				return fmt.Errorf("fetch controller requires sqlite storage to be configured")
			}
			fc := config.FetcherData{}
			if controller.Fetcher != nil {
				fc = *controller.Fetcher
			}
			f, err := fetcher.NewController(ctx, &wg, a.configProvider, fc, client, db, a.logger)
			if err != nil {
				return err
			}
			if err := f.StartController(); err != nil {
				return err
			}
		case "rest":
			if controller.RESTServer == nil {
				return fmt.Errorf("rest controller is missing its server configuration")
			}
			rs, err := restserver.NewController(ctx, &wg, a.configProvider, *controller.RESTServer, client, db, a.logger)
			if err != nil {
				return err
			}
			if err := rs.StartController(); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown controller type %q", controller.Type)
		}
	}

	log.Info("application started successfully")

	// Set up signal handling
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	// Wait for shutdown signal
	select {
	case <-sigs:
		log.Info("shutdown signal received, initiating graceful shutdown...")
	case <-ctx.Done():
		log.Info("context cancelled, shutting down...")
	}

	// Cancel context to signal all goroutines to stop
	cancel()

	// Wait for all workers to terminate
	log.Info("waiting for all workers to terminate...")
	wg.Wait()
	log.Info("shutdown complete")

	return nil
}
