// Package forecast contains the core forecast-processing pipeline: the data
// model for raw upstream samples and enriched records, per-sample enrichment
// with sun geometry and plane-of-array irradiance, and time-based record
// selection.
package forecast

import (
	"bytes"
	"fmt"
	"strconv"
	"time"
)

// OptionalFloat is a float64 that may be absent from an upstream sample.
// Absence is distinct from zero: a missing air temperature stays missing,
// while a missing wind speed defaults to zero at processing time.
type OptionalFloat struct {
	Value float64
	Set   bool
}

// Supplied returns an OptionalFloat carrying v.
func Supplied(v float64) OptionalFloat {
	return OptionalFloat{Value: v, Set: true}
}

var jsonNull = []byte("null")

// UnmarshalJSON implements json.Unmarshaler. A JSON null (or an absent key,
// which leaves the zero value untouched) yields an unset OptionalFloat.
func (o *OptionalFloat) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, jsonNull) {
		*o = OptionalFloat{}
		return nil
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("parsing optional float %q: %w", data, err)
	}
	*o = Supplied(v)
	return nil
}

// MarshalJSON implements json.Marshaler. Unset values serialize as null.
func (o OptionalFloat) MarshalJSON() ([]byte, error) {
	if !o.Set {
		return jsonNull, nil
	}
	return strconv.AppendFloat(nil, o.Value, 'g', -1, 64), nil
}

// RawSample is one time bucket of upstream forecast data, as delivered by
// the radiation-and-weather endpoint. Immutable once decoded.
type RawSample struct {
	PeriodEnd     string        `json:"period_end"`
	GHI           float64       `json:"ghi"`
	DNI           float64       `json:"dni"`
	CloudOpacity  float64       `json:"cloud_opacity"`
	WindSpeed     float64       `json:"wind_speed_10m"`
	WindDirection float64       `json:"wind_direction_10m"`
	AirTemp       OptionalFloat `json:"air_temp"`
	Zenith        OptionalFloat `json:"zenith"`
	Azimuth       OptionalFloat `json:"azimuth"`
	GTI           OptionalFloat `json:"gti"`
	Period        string        `json:"period,omitempty"`
}

// PanelMode selects how panel geometry is interpreted.
type PanelMode string

const (
	// PanelFixed is a stationary panel with a fixed tilt and facing.
	PanelFixed PanelMode = "fixed"
	// PanelSingleAxis is a horizontal single-axis tracker; the orientation
	// is the tracking-axis bearing.
	PanelSingleAxis PanelMode = "horizontal_single_axis"
	// PanelMobile is a vehicle-mounted panel; the orientation is the
	// vehicle heading and GTI is always recomputed locally with a
	// motion-loss correction.
	PanelMobile PanelMode = "mobile"
)

// PanelConfig describes mounted-panel geometry. A nil *PanelConfig means no
// panel geometry was given and GTI stays unavailable unless supplied
// upstream.
type PanelConfig struct {
	Mode       PanelMode `json:"mode"`
	TiltDeg    float64   `json:"tilt"`
	AzimuthDeg float64   `json:"azimuth"`
}

// Validate checks the panel mode.
func (p *PanelConfig) Validate() error {
	switch p.Mode {
	case PanelFixed, PanelSingleAxis, PanelMobile:
		return nil
	default:
		return fmt.Errorf("unknown panel mode %q", p.Mode)
	}
}

// Query carries the request context a batch of samples is processed under.
type Query struct {
	Latitude       float64
	Longitude      float64
	TimezoneOffset int // whole hours east of UTC
	Target         *time.Time
	Panel          *PanelConfig
}

// Validate range-checks the query.
func (q Query) Validate() error {
	if q.Latitude < -90 || q.Latitude > 90 {
		return fmt.Errorf("latitude %v out of range [-90, 90]", q.Latitude)
	}
	if q.Longitude < -180 || q.Longitude > 180 {
		return fmt.Errorf("longitude %v out of range [-180, 180]", q.Longitude)
	}
	if q.TimezoneOffset < -12 || q.TimezoneOffset > 14 {
		return fmt.Errorf("timezone offset %d out of range [-12, 14]", q.TimezoneOffset)
	}
	if q.Panel != nil {
		return q.Panel.Validate()
	}
	return nil
}

// Location returns the fixed-offset zone the query's timestamps are
// expressed in.
func (q Query) Location() *time.Location {
	return time.FixedZone(fmt.Sprintf("UTC%+d", q.TimezoneOffset), q.TimezoneOffset*3600)
}

// Record is one enriched forecast sample. Zenith and azimuth are always
// populated; GTI is meaningful only when GTIValid is true. Immutable once
// built.
type Record struct {
	Time          time.Time     `json:"time"`
	GHI           float64       `json:"ghi"`
	DNI           float64       `json:"dni"`
	Zenith        float64       `json:"zenith"`
	Azimuth       float64       `json:"azimuth"`
	GTI           float64       `json:"gti"`
	GTIValid      bool          `json:"gti_valid"`
	AirTemp       OptionalFloat `json:"air_temp"`
	CloudOpacity  float64       `json:"cloud_opacity"`
	WindSpeed     float64       `json:"wind_speed"`
	WindDirection float64       `json:"wind_direction"`
	Period        string        `json:"period,omitempty"`
}
