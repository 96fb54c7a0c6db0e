package database

import (
	"time"

	"github.com/solarfleet/solarcast/internal/forecast"
)

// Snapshot is one stored fetch: the full processed record sequence for a
// site at a fetch instant.
type Snapshot struct {
	ID        string      `gorm:"primaryKey"`
	SiteName  string      `gorm:"index:idx_site_fetched,not null"`
	FetchedAt time.Time   `gorm:"index:idx_site_fetched,not null"`
	Records   []RecordRow `gorm:"foreignKey:SnapshotID;constraint:OnDelete:CASCADE"`
}

func (Snapshot) TableName() string {
	return "forecast_snapshots"
}

// RecordRow is one enriched forecast record within a snapshot.
type RecordRow struct {
	ID            uint      `gorm:"primaryKey;autoIncrement"`
	SnapshotID    string    `gorm:"index;not null"`
	Time          time.Time `gorm:"not null"`
	UTCOffsetSec  int
	GHI           float64
	DNI           float64
	Zenith        float64
	Azimuth       float64
	GTI           float64
	GTIValid      bool
	AirTemp       *float64
	CloudOpacity  float64
	WindSpeed     float64
	WindDirection float64
	Period        string
}

func (RecordRow) TableName() string {
	return "forecast_records"
}

// toRow flattens a forecast.Record for storage.
func toRow(snapshotID string, r forecast.Record) RecordRow {
	row := RecordRow{
		SnapshotID:    snapshotID,
		Time:          r.Time,
		UTCOffsetSec:  utcOffsetSeconds(r.Time),
		GHI:           r.GHI,
		DNI:           r.DNI,
		Zenith:        r.Zenith,
		Azimuth:       r.Azimuth,
		GTI:           r.GTI,
		GTIValid:      r.GTIValid,
		CloudOpacity:  r.CloudOpacity,
		WindSpeed:     r.WindSpeed,
		WindDirection: r.WindDirection,
		Period:        r.Period,
	}
	if r.AirTemp.Set {
		v := r.AirTemp.Value
		row.AirTemp = &v
	}
	return row
}

// toRecord rebuilds a forecast.Record from storage, restoring the original
// fixed-offset zone on the timestamp.
func toRecord(row RecordRow) forecast.Record {
	rec := forecast.Record{
		Time:          row.Time.In(time.FixedZone("", row.UTCOffsetSec)),
		GHI:           row.GHI,
		DNI:           row.DNI,
		Zenith:        row.Zenith,
		Azimuth:       row.Azimuth,
		GTI:           row.GTI,
		GTIValid:      row.GTIValid,
		CloudOpacity:  row.CloudOpacity,
		WindSpeed:     row.WindSpeed,
		WindDirection: row.WindDirection,
		Period:        row.Period,
	}
	if row.AirTemp != nil {
		rec.AirTemp = forecast.Supplied(*row.AirTemp)
	}
	return rec
}

func utcOffsetSeconds(t time.Time) int {
	_, offset := t.Zone()
	return offset
}
