// Package database stores processed forecast snapshots in SQLite via GORM.
package database

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/solarfleet/solarcast/internal/forecast"
	"github.com/solarfleet/solarcast/internal/log"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Client holds the connection to the forecast archive
type Client struct {
	DB     *gorm.DB
	logger *zap.SugaredLogger
}

// NewClient opens (creating if necessary) the archive at path and migrates
// its schema.
func NewClient(path string, zlogger *zap.SugaredLogger) (*Client, error) {
	dbLogger := logger.New(
		zap.NewStdLog(log.GetZapLogger()),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: dbLogger})
	if err != nil {
		return nil, fmt.Errorf("opening forecast archive %s: %w", path, err)
	}

	if err := db.AutoMigrate(&Snapshot{}, &RecordRow{}); err != nil {
		return nil, fmt.Errorf("migrating forecast archive schema: %w", err)
	}

	return &Client{DB: db, logger: zlogger}, nil
}

// SaveSnapshot stores a processed record sequence for a site and returns the
// snapshot ID.
func (c *Client) SaveSnapshot(siteName string, fetchedAt time.Time, records []forecast.Record) (string, error) {
	snap := Snapshot{
		ID:        uuid.NewString(),
		SiteName:  siteName,
		FetchedAt: fetchedAt,
	}
	snap.Records = make([]RecordRow, 0, len(records))
	for _, r := range records {
		snap.Records = append(snap.Records, toRow(snap.ID, r))
	}

	if err := c.DB.Create(&snap).Error; err != nil {
		return "", fmt.Errorf("saving forecast snapshot for %s: %w", siteName, err)
	}
	c.logger.Debugf("saved snapshot %s for site %s (%d records)", snap.ID, siteName, len(records))
	return snap.ID, nil
}

// LatestSnapshot returns the most recently fetched snapshot for a site, with
// its records in chronological order, or (nil, nil) when the site has none.
func (c *Client) LatestSnapshot(siteName string) (*Snapshot, []forecast.Record, error) {
	var snap Snapshot
	err := c.DB.Where("site_name = ?", siteName).
		Order("fetched_at DESC").
		First(&snap).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("loading latest snapshot for %s: %w", siteName, err)
	}

	var rows []RecordRow
	if err := c.DB.Where("snapshot_id = ?", snap.ID).Order("time ASC").Find(&rows).Error; err != nil {
		return nil, nil, fmt.Errorf("loading snapshot records for %s: %w", snap.ID, err)
	}

	records := make([]forecast.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, toRecord(row))
	}
	return &snap, records, nil
}

// PruneBefore deletes snapshots fetched before cutoff, returning the number
// removed. Record rows are deleted explicitly: SQLite only enforces the
// cascade constraint when the foreign-keys pragma is on, which the driver
// does not enable.
func (c *Client) PruneBefore(cutoff time.Time) (int64, error) {
	var pruned int64
	err := c.DB.Transaction(func(tx *gorm.DB) error {
		var ids []string
		if err := tx.Model(&Snapshot{}).Where("fetched_at < ?", cutoff).Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		if err := tx.Where("snapshot_id IN ?", ids).Delete(&RecordRow{}).Error; err != nil {
			return err
		}
		res := tx.Where("id IN ?", ids).Delete(&Snapshot{})
		if res.Error != nil {
			return res.Error
		}
		pruned = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("pruning forecast snapshots: %w", err)
	}
	return pruned, nil
}

// Close closes the underlying database handle.
func (c *Client) Close() error {
	sqlDB, err := c.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
