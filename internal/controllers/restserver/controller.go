// Package restserver exposes processed forecasts over HTTP.
package restserver

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/solarfleet/solarcast/internal/database"
	"github.com/solarfleet/solarcast/internal/solcast"
	"github.com/solarfleet/solarcast/pkg/config"
	"go.uber.org/zap"
)

// Controller represents the REST server controller
type Controller struct {
	ctx            context.Context
	wg             *sync.WaitGroup
	configProvider config.Provider
	restConfig     config.RESTServerData
	Server         http.Server
	client         *solcast.Client
	db             *database.Client
	sites          map[string]config.SiteData
	logger         *zap.SugaredLogger
	handlers       *Handlers
}

// NewController creates a new REST server controller. db may be nil when no
// archive storage is configured; forecasts are then always fetched live.
func NewController(ctx context.Context, wg *sync.WaitGroup, configProvider config.Provider, rc config.RESTServerData, client *solcast.Client, db *database.Client, logger *zap.SugaredLogger) (*Controller, error) {
	ctrl := &Controller{
		ctx:            ctx,
		wg:             wg,
		configProvider: configProvider,
		restConfig:     rc,
		client:         client,
		db:             db,
		logger:         logger,
	}

	if rc.Port == 0 {
		return nil, fmt.Errorf("REST server port must be set")
	}

	sites, err := configProvider.GetSites()
	if err != nil {
		return nil, fmt.Errorf("error loading site configurations: %w", err)
	}
	ctrl.sites = make(map[string]config.SiteData, len(sites))
	for _, site := range sites {
		ctrl.sites[site.Name] = site
	}

	ctrl.handlers = NewHandlers(ctrl)

	router := mux.NewRouter()
	router.HandleFunc("/api/forecast", ctrl.handlers.GetForecast).Methods(http.MethodGet)
	router.HandleFunc("/api/forecast/summary", ctrl.handlers.GetForecastSummary).Methods(http.MethodGet)
	router.HandleFunc("/health", ctrl.handlers.GetHealth).Methods(http.MethodGet)
	router.Use(ctrl.requestLogger)

	ctrl.Server = http.Server{
		Addr:        net.JoinHostPort(rc.ListenAddr, strconv.Itoa(rc.Port)),
		Handler:     router,
		ReadTimeout: 10 * time.Second,
	}

	return ctrl, nil
}

// StartController starts serving and arranges a graceful shutdown when the
// controller context is cancelled.
func (c *Controller) StartController() error {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.logger.Infof("REST server listening on %s", c.Server.Addr)
		if err := c.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			c.logger.Errorf("REST server error: %v", err)
		}
	}()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		<-c.ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.Server.Shutdown(shutdownCtx); err != nil {
			c.logger.Errorf("REST server shutdown error: %v", err)
		}
	}()

	return nil
}

func (c *Controller) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		c.logger.Debugw("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"duration", time.Since(start),
		)
	})
}
