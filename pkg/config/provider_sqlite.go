package config

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteProvider implements Provider for SQLite configuration databases
type SQLiteProvider struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteProvider creates a new SQLite configuration provider
func NewSQLiteProvider(dbPath string) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	return &SQLiteProvider{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// LoadConfig loads the complete configuration from the SQLite database
func (s *SQLiteProvider) LoadConfig() (*Data, error) {
	config := &Data{}

	api, err := s.GetAPI()
	if err != nil {
		return nil, fmt.Errorf("failed to load API config: %w", err)
	}
	config.API = *api

	sites, err := s.GetSites()
	if err != nil {
		return nil, fmt.Errorf("failed to load sites: %w", err)
	}
	config.Sites = sites

	storage, err := s.GetStorageConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load storage config: %w", err)
	}
	config.Storage = *storage

	controllers, err := s.GetControllers()
	if err != nil {
		return nil, fmt.Errorf("failed to load controllers: %w", err)
	}
	config.Controllers = controllers

	config.Normalize()
	return config, nil
}

// GetAPI returns the upstream API configuration
func (s *SQLiteProvider) GetAPI() (*APIData, error) {
	api := &APIData{}
	row := s.db.QueryRow(`SELECT key, COALESCE(endpoint, '') FROM api LIMIT 1`)
	if err := row.Scan(&api.Key, &api.Endpoint); err != nil {
		if err == sql.ErrNoRows {
			return api, nil
		}
		return nil, fmt.Errorf("querying api config: %w", err)
	}
	return api, nil
}

// GetSites returns the configured forecast sites
func (s *SQLiteProvider) GetSites() ([]SiteData, error) {
	rows, err := s.db.Query(`
		SELECT name, latitude, longitude, timezone_offset,
		       COALESCE(hours, 0), COALESCE(interval_minutes, 0),
		       COALESCE(panel_mode, ''), COALESCE(panel_tilt, 0), COALESCE(panel_azimuth, 0)
		FROM sites ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("querying sites: %w", err)
	}
	defer rows.Close()

	var sites []SiteData
	for rows.Next() {
		var site SiteData
		var panelMode string
		var panelTilt, panelAzimuth float64
		err := rows.Scan(&site.Name, &site.Latitude, &site.Longitude, &site.TimezoneOffset,
			&site.Hours, &site.IntervalMinutes, &panelMode, &panelTilt, &panelAzimuth)
		if err != nil {
			return nil, fmt.Errorf("scanning site row: %w", err)
		}
		if panelMode != "" {
			site.Panel = &PanelData{
				Mode:       panelMode,
				TiltDeg:    panelTilt,
				AzimuthDeg: panelAzimuth,
			}
		}
		site.applyDefaults()
		sites = append(sites, site)
	}
	return sites, rows.Err()
}

// GetStorageConfig returns the storage configuration
func (s *SQLiteProvider) GetStorageConfig() (*StorageData, error) {
	storage := &StorageData{}
	row := s.db.QueryRow(`SELECT path FROM storage_sqlite LIMIT 1`)
	var path string
	if err := row.Scan(&path); err != nil {
		if err == sql.ErrNoRows {
			return storage, nil
		}
		return nil, fmt.Errorf("querying storage config: %w", err)
	}
	storage.SQLite = &SQLiteData{Path: path}
	return storage, nil
}

// GetControllers returns the controller configurations
func (s *SQLiteProvider) GetControllers() ([]ControllerData, error) {
	rows, err := s.db.Query(`
		SELECT type, COALESCE(listen_addr, ''), COALESCE(port, 0), COALESCE(refresh_minutes, 0)
		FROM controllers ORDER BY type`)
	if err != nil {
		return nil, fmt.Errorf("querying controllers: %w", err)
	}
	defer rows.Close()

	var controllers []ControllerData
	for rows.Next() {
		var c ControllerData
		var listenAddr string
		var port, refreshMinutes int
		if err := rows.Scan(&c.Type, &listenAddr, &port, &refreshMinutes); err != nil {
			return nil, fmt.Errorf("scanning controller row: %w", err)
		}
		switch c.Type {
		case "rest":
			c.RESTServer = &RESTServerData{ListenAddr: listenAddr, Port: port}
		case "fetcher":
			c.Fetcher = &FetcherData{RefreshMinutes: refreshMinutes}
		}
		controllers = append(controllers, c)
	}
	return controllers, rows.Err()
}

// IsReadOnly returns false: SQLite configurations may be edited in place
func (s *SQLiteProvider) IsReadOnly() bool {
	return false
}

// Close closes the underlying database handle
func (s *SQLiteProvider) Close() error {
	return s.db.Close()
}
