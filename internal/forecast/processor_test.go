package forecast

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/solarfleet/solarcast/pkg/solar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestProcessor() *Processor {
	return NewProcessor(zap.NewNop().Sugar())
}

func TestProcessDropsSamplesWithoutTimestamp(t *testing.T) {
	samples := []RawSample{
		{PeriodEnd: "", GHI: 100},
		{PeriodEnd: "not-a-timestamp", GHI: 200},
		{PeriodEnd: "2024-06-01T03:00:00Z", GHI: 300},
	}

	records := newTestProcessor().Process(samples, Query{Latitude: 35, Longitude: 139})

	require.Len(t, records, 1)
	assert.Equal(t, 300.0, records[0].GHI)
}

func TestProcessTimezoneShift(t *testing.T) {
	samples := []RawSample{{PeriodEnd: "2024-06-01T03:00:00Z", GHI: 500}}

	records := newTestProcessor().Process(samples, Query{
		Latitude:       35.68,
		Longitude:      139.77,
		TimezoneOffset: 9,
	})

	require.Len(t, records, 1)
	assert.Equal(t, 12, records[0].Time.Hour())
	assert.Equal(t, 1, records[0].Time.Day())
}

func TestProcessComputesSunGeometry(t *testing.T) {
	samples := []RawSample{{PeriodEnd: "2024-06-01T03:00:00Z", GHI: 500, DNI: 700}}
	q := Query{Latitude: 35.68, Longitude: 139.77, TimezoneOffset: 9}

	records := newTestProcessor().Process(samples, q)
	require.Len(t, records, 1)

	local := time.Date(2024, 6, 1, 12, 0, 0, 0, q.Location())
	wantZenith, wantAzimuth := solar.Position(local, q.Latitude, q.Longitude)
	assert.InDelta(t, wantZenith, records[0].Zenith, 1e-9)
	assert.InDelta(t, wantAzimuth, records[0].Azimuth, 1e-9)
}

func TestProcessPrefersUpstreamSunGeometry(t *testing.T) {
	samples := []RawSample{{
		PeriodEnd: "2024-06-01T03:00:00Z",
		Zenith:    Supplied(41.5),
		Azimuth:   Supplied(152.3),
	}}

	records := newTestProcessor().Process(samples, Query{Latitude: 35, Longitude: 139})
	require.Len(t, records, 1)
	assert.Equal(t, 41.5, records[0].Zenith)
	assert.Equal(t, 152.3, records[0].Azimuth)
}

func TestProcessGTIPrecedence(t *testing.T) {
	const periodEnd = "2024-06-01T03:00:00Z"
	fixedPanel := &PanelConfig{Mode: PanelFixed, TiltDeg: 30, AzimuthDeg: 180}
	mobilePanel := &PanelConfig{Mode: PanelMobile, TiltDeg: 10, AzimuthDeg: 180}

	tests := []struct {
		name        string
		sample      RawSample
		panel       *PanelConfig
		wantValid   bool
		wantGTI     float64
		wantGTISign bool // check computed GTI is positive instead of exact
	}{
		{
			name:      "no panel and no upstream GTI leaves GTI invalid",
			sample:    RawSample{PeriodEnd: periodEnd, GHI: 500, DNI: 700},
			wantValid: false,
		},
		{
			name:      "upstream GTI wins for fixed panels",
			sample:    RawSample{PeriodEnd: periodEnd, GHI: 500, DNI: 700, GTI: Supplied(612)},
			panel:     fixedPanel,
			wantValid: true,
			wantGTI:   612,
		},
		{
			name:      "upstream GTI accepted without panel geometry",
			sample:    RawSample{PeriodEnd: periodEnd, GHI: 500, DNI: 700, GTI: Supplied(421)},
			wantValid: true,
			wantGTI:   421,
		},
		{
			name:        "fixed panel computes GTI when upstream is absent",
			sample:      RawSample{PeriodEnd: periodEnd, GHI: 500, DNI: 700},
			panel:       fixedPanel,
			wantValid:   true,
			wantGTISign: true,
		},
		{
			name:        "mobile panel recomputes even over upstream GTI",
			sample:      RawSample{PeriodEnd: periodEnd, GHI: 500, DNI: 700, GTI: Supplied(9999)},
			panel:       mobilePanel,
			wantValid:   true,
			wantGTISign: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := newTestProcessor().Process([]RawSample{tt.sample}, Query{
				Latitude:       35.68,
				Longitude:      139.77,
				TimezoneOffset: 9,
				Panel:          tt.panel,
			})
			require.Len(t, records, 1)

			rec := records[0]
			assert.Equal(t, tt.wantValid, rec.GTIValid)
			if tt.wantGTISign {
				assert.Greater(t, rec.GTI, 0.0)
				assert.NotEqual(t, 9999.0, rec.GTI)
			} else {
				assert.Equal(t, tt.wantGTI, rec.GTI)
			}
		})
	}
}

func TestProcessMobileAppliesCorrectionFactor(t *testing.T) {
	sample := RawSample{PeriodEnd: "2024-06-01T03:00:00Z", GHI: 500, DNI: 700}
	q := Query{Latitude: 35.68, Longitude: 139.77, TimezoneOffset: 9}

	qFixed := q
	qFixed.Panel = &PanelConfig{Mode: PanelFixed, TiltDeg: 10, AzimuthDeg: 180}
	qMobile := q
	qMobile.Panel = &PanelConfig{Mode: PanelMobile, TiltDeg: 10, AzimuthDeg: 180}

	fixed := newTestProcessor().Process([]RawSample{sample}, qFixed)
	mobile := newTestProcessor().Process([]RawSample{sample}, qMobile)
	require.Len(t, fixed, 1)
	require.Len(t, mobile, 1)

	assert.InDelta(t, fixed[0].GTI*solar.MobileCorrectionFactor, mobile[0].GTI, 1e-9)
}

func TestProcessOptionalAirTemp(t *testing.T) {
	samples := []RawSample{
		{PeriodEnd: "2024-06-01T03:00:00Z", GHI: 100, AirTemp: Supplied(21.5)},
		{PeriodEnd: "2024-06-01T03:30:00Z", GHI: 150},
	}

	records := newTestProcessor().Process(samples, Query{Latitude: 35, Longitude: 139})
	require.Len(t, records, 2)

	assert.True(t, records[0].AirTemp.Set)
	assert.Equal(t, 21.5, records[0].AirTemp.Value)
	assert.False(t, records[1].AirTemp.Set)
	assert.Equal(t, 150.0, records[1].GHI)
}

func TestRawSampleDecoding(t *testing.T) {
	payload := `{
		"period_end": "2024-06-01T03:00:00.0000000Z",
		"ghi": 512.5,
		"dni": 780,
		"cloud_opacity": 0.25,
		"wind_speed_10m": 3.4,
		"wind_direction_10m": 270,
		"air_temp": null,
		"gti": 601.2,
		"period": "PT30M"
	}`

	var s RawSample
	require.NoError(t, json.Unmarshal([]byte(payload), &s))

	assert.Equal(t, 512.5, s.GHI)
	assert.Equal(t, 780.0, s.DNI)
	assert.False(t, s.AirTemp.Set, "explicit null stays unset")
	assert.False(t, s.Zenith.Set, "absent key stays unset")
	assert.True(t, s.GTI.Set)
	assert.Equal(t, 601.2, s.GTI.Value)
	assert.Equal(t, "PT30M", s.Period)

	// Fractional-second timestamps from the upstream API must parse.
	records := newTestProcessor().Process([]RawSample{s}, Query{Latitude: 35, Longitude: 139})
	assert.Len(t, records, 1)
}

func TestQueryValidate(t *testing.T) {
	tests := []struct {
		name    string
		query   Query
		wantErr bool
	}{
		{"valid", Query{Latitude: 35, Longitude: 139, TimezoneOffset: 9}, false},
		{"latitude too high", Query{Latitude: 91}, true},
		{"longitude too low", Query{Longitude: -181}, true},
		{"timezone offset too high", Query{TimezoneOffset: 15}, true},
		{"timezone offset too low", Query{TimezoneOffset: -13}, true},
		{"bad panel mode", Query{Panel: &PanelConfig{Mode: "tracking"}}, true},
		{"mobile panel", Query{Panel: &PanelConfig{Mode: PanelMobile, TiltDeg: 10}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.query.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
