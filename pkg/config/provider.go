// Package config provides configuration loading from YAML files or SQLite
// databases behind a common provider interface.
package config

// Provider defines the interface for configuration data sources
type Provider interface {
	// Load complete configuration
	LoadConfig() (*Data, error)

	// Get specific configuration sections
	GetAPI() (*APIData, error)
	GetSites() ([]SiteData, error)
	GetStorageConfig() (*StorageData, error)
	GetControllers() ([]ControllerData, error)

	IsReadOnly() bool
	Close() error
}

// Data represents the complete configuration structure
type Data struct {
	API         APIData          `json:"api" yaml:"api"`
	Sites       []SiteData       `json:"sites" yaml:"sites"`
	Storage     StorageData      `json:"storage,omitempty" yaml:"storage,omitempty"`
	Controllers []ControllerData `json:"controllers,omitempty" yaml:"controllers,omitempty"`
}

// APIData holds the upstream forecast API credentials and endpoint
type APIData struct {
	Key      string `json:"key" yaml:"key"`
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
}

// SiteData holds one forecast site: the location, its civil-time offset,
// the sampling parameters, and optional panel geometry
type SiteData struct {
	Name            string     `json:"name" yaml:"name"`
	Latitude        float64    `json:"latitude" yaml:"latitude"`
	Longitude       float64    `json:"longitude" yaml:"longitude"`
	TimezoneOffset  int        `json:"timezone_offset" yaml:"timezone_offset"`
	Hours           int        `json:"hours,omitempty" yaml:"hours,omitempty"`
	IntervalMinutes int        `json:"interval_minutes,omitempty" yaml:"interval_minutes,omitempty"`
	Panel           *PanelData `json:"panel,omitempty" yaml:"panel,omitempty"`
}

// PanelData holds panel geometry for a site
type PanelData struct {
	Mode       string  `json:"mode" yaml:"mode"`
	TiltDeg    float64 `json:"tilt,omitempty" yaml:"tilt,omitempty"`
	AzimuthDeg float64 `json:"azimuth,omitempty" yaml:"azimuth,omitempty"`
}

// StorageData holds the configuration for storage backends
type StorageData struct {
	SQLite *SQLiteData `json:"sqlite,omitempty" yaml:"sqlite,omitempty"`
}

// SQLiteData holds the forecast archive database location
type SQLiteData struct {
	Path string `json:"path" yaml:"path"`
}

// ControllerData holds the configuration for controller backends
type ControllerData struct {
	Type       string          `json:"type" yaml:"type"`
	RESTServer *RESTServerData `json:"rest,omitempty" yaml:"rest,omitempty"`
	Fetcher    *FetcherData    `json:"fetcher,omitempty" yaml:"fetcher,omitempty"`
}

// RESTServerData holds REST server listen configuration
type RESTServerData struct {
	ListenAddr string `json:"listen_addr,omitempty" yaml:"listen_addr,omitempty"`
	Port       int    `json:"port" yaml:"port"`
}

// FetcherData holds the periodic fetch controller configuration
type FetcherData struct {
	RefreshMinutes int `json:"refresh_minutes,omitempty" yaml:"refresh_minutes,omitempty"`
}

// Defaults applied where a site omits sampling parameters
const (
	DefaultForecastHours   = 48
	DefaultIntervalMinutes = 30
)

// Normalize fills in site defaults
func (d *Data) Normalize() {
	for i := range d.Sites {
		d.Sites[i].applyDefaults()
	}
}

// applyDefaults fills in sampling parameters a site omits. Every path that
// hands sites to a controller must apply this, not just LoadConfig.
func (s *SiteData) applyDefaults() {
	if s.Hours == 0 {
		s.Hours = DefaultForecastHours
	}
	if s.IntervalMinutes == 0 {
		s.IntervalMinutes = DefaultIntervalMinutes
	}
}
