// Package fetcher periodically pulls forecasts from the upstream API,
// enriches them, and archives the result.
package fetcher

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/solarfleet/solarcast/internal/database"
	"github.com/solarfleet/solarcast/internal/forecast"
	"github.com/solarfleet/solarcast/internal/solcast"
	"github.com/solarfleet/solarcast/pkg/config"
	"go.uber.org/zap"
)

// retentionDays controls how long archived snapshots are kept.
const retentionDays = 14

// Controller fetches, processes and stores forecasts for every configured
// site on its own schedule.
type Controller struct {
	ctx            context.Context
	wg             *sync.WaitGroup
	configProvider config.Provider
	fetcherConfig  config.FetcherData
	client         *solcast.Client
	db             *database.Client
	processor      *forecast.Processor
	logger         *zap.SugaredLogger
}

// NewController creates a fetch controller.
func NewController(ctx context.Context, wg *sync.WaitGroup, configProvider config.Provider, fc config.FetcherData, client *solcast.Client, db *database.Client, logger *zap.SugaredLogger) (*Controller, error) {
	sites, err := configProvider.GetSites()
	if err != nil {
		return nil, fmt.Errorf("error loading site configurations: %w", err)
	}
	if len(sites) == 0 {
		logger.Info("no forecast sites configured - fetch controller will start but remain idle")
	}

	return &Controller{
		ctx:            ctx,
		wg:             wg,
		configProvider: configProvider,
		fetcherConfig:  fc,
		client:         client,
		db:             db,
		processor:      forecast.NewProcessor(logger),
		logger:         logger,
	}, nil
}

// StartController launches one refresh goroutine per configured site.
func (c *Controller) StartController() error {
	sites, err := c.configProvider.GetSites()
	if err != nil {
		return fmt.Errorf("error getting sites: %w", err)
	}

	for _, site := range sites {
		c.logger.Infof("starting forecast fetching for site %s (%.4f, %.4f)",
			site.Name, site.Latitude, site.Longitude)
		siteCopy := site
		c.wg.Add(1)
		go c.refreshPeriodically(siteCopy)
	}

	c.wg.Add(1)
	go c.pruneDaily()

	return nil
}

// refreshInterval derives the per-site refresh cadence: the configured
// override, or a quarter of the forecast horizon.
func (c *Controller) refreshInterval(site config.SiteData) time.Duration {
	if c.fetcherConfig.RefreshMinutes > 0 {
		return time.Duration(c.fetcherConfig.RefreshMinutes) * time.Minute
	}
	return time.Duration(site.Hours) * time.Hour / 4
}

func (c *Controller) refreshPeriodically(site config.SiteData) {
	defer c.wg.Done()

	// Tickers only fire after the interval has elapsed, so fetch once
	// before starting the ticker.
	if err := c.fetchAndStore(site); err != nil {
		c.logger.Errorf("error fetching forecast for site %s: %v", site.Name, err)
	}

	interval := c.refreshInterval(site)
	c.logger.Infof("refreshing forecast for site %s every %v", site.Name, interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.fetchAndStore(site); err != nil {
				c.logger.Errorf("error fetching forecast for site %s: %v", site.Name, err)
			}
		case <-c.ctx.Done():
			return
		}
	}
}

func (c *Controller) fetchAndStore(site config.SiteData) error {
	panel := panelFromConfig(site.Panel)

	samples, err := c.client.RadiationAndWeather(c.ctx, solcast.Request{
		Latitude:        site.Latitude,
		Longitude:       site.Longitude,
		Hours:           site.Hours,
		IntervalMinutes: site.IntervalMinutes,
		Panel:           panel,
	})
	if err != nil {
		return err
	}

	records := c.processor.Process(samples, forecast.Query{
		Latitude:       site.Latitude,
		Longitude:      site.Longitude,
		TimezoneOffset: site.TimezoneOffset,
		Panel:          panel,
	})
	if len(records) == 0 {
		c.logger.Warnf("no valid forecast samples for site %s", site.Name)
		return nil
	}

	id, err := c.db.SaveSnapshot(site.Name, time.Now(), forecast.Select(records, nil))
	if err != nil {
		return err
	}
	c.logger.Infof("stored forecast snapshot %s for site %s (%d records)", id, site.Name, len(records))
	return nil
}

func (c *Controller) pruneDaily() {
	defer c.wg.Done()

	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cutoff := time.Now().AddDate(0, 0, -retentionDays)
			n, err := c.db.PruneBefore(cutoff)
			if err != nil {
				c.logger.Errorf("error pruning forecast archive: %v", err)
			} else if n > 0 {
				c.logger.Infof("pruned %d expired forecast snapshots", n)
			}
		case <-c.ctx.Done():
			return
		}
	}
}

func panelFromConfig(p *config.PanelData) *forecast.PanelConfig {
	if p == nil || p.Mode == "" {
		return nil
	}
	return &forecast.PanelConfig{
		Mode:       forecast.PanelMode(p.Mode),
		TiltDeg:    p.TiltDeg,
		AzimuthDeg: p.AzimuthDeg,
	}
}
