package forecast

import (
	"fmt"
	"time"

	"github.com/solarfleet/solarcast/pkg/solar"
	"go.uber.org/zap"
)

// Processor enriches raw upstream samples into Records. Processing is pure
// per sample; samples with a missing or unparsable timestamp are logged and
// skipped, never fatal to the batch.
type Processor struct {
	logger *zap.SugaredLogger
}

// NewProcessor creates a Processor logging skipped samples to logger.
func NewProcessor(logger *zap.SugaredLogger) *Processor {
	return &Processor{logger: logger}
}

// Process enriches every sample under the query's coordinates, timezone and
// panel configuration. Sample order is irrelevant: each record depends only
// on its own sample. An empty result is valid, not an error.
func (p *Processor) Process(samples []RawSample, q Query) []Record {
	loc := q.Location()
	records := make([]Record, 0, len(samples))
	for _, s := range samples {
		rec, err := p.processOne(s, q, loc)
		if err != nil {
			p.logger.Warnw("skipping forecast sample", "period_end", s.PeriodEnd, "error", err)
			continue
		}
		records = append(records, rec)
	}
	return records
}

func (p *Processor) processOne(s RawSample, q Query, loc *time.Location) (Record, error) {
	if s.PeriodEnd == "" {
		return Record{}, fmt.Errorf("sample has no period_end")
	}
	utc, err := time.Parse(time.RFC3339, s.PeriodEnd)
	if err != nil {
		return Record{}, fmt.Errorf("parsing period_end: %w", err)
	}
	localTime := utc.In(loc)

	// Prefer upstream-supplied sun geometry; compute it otherwise.
	var zenith, azimuth float64
	if s.Zenith.Set && s.Azimuth.Set {
		zenith, azimuth = s.Zenith.Value, s.Azimuth.Value
	} else {
		zenith, azimuth = solar.Position(localTime, q.Latitude, q.Longitude)
	}

	gti, gtiValid := resolveGTI(s, q.Panel, zenith, azimuth)

	return Record{
		Time:          localTime,
		GHI:           s.GHI,
		DNI:           s.DNI,
		Zenith:        zenith,
		Azimuth:       azimuth,
		GTI:           gti,
		GTIValid:      gtiValid,
		AirTemp:       s.AirTemp,
		CloudOpacity:  s.CloudOpacity,
		WindSpeed:     s.WindSpeed,
		WindDirection: s.WindDirection,
		Period:        s.Period,
	}, nil
}

// resolveGTI applies the upstream-vs-computed precedence rule: mobile panels
// always recompute locally (with the motion-loss correction); otherwise an
// upstream value wins, and local decomposition is the fallback when panel
// geometry is known. With neither, GTI is unavailable.
func resolveGTI(s RawSample, panel *PanelConfig, zenith, azimuth float64) (gti float64, valid bool) {
	if panel != nil && panel.Mode == PanelMobile {
		return solar.MobileTiltedIrradiance(s.GHI, s.DNI, zenith, azimuth, panel.TiltDeg, panel.AzimuthDeg), true
	}
	if s.GTI.Set {
		return s.GTI.Value, true
	}
	if panel != nil {
		return solar.TiltedIrradiance(s.GHI, s.DNI, zenith, azimuth, panel.TiltDeg, panel.AzimuthDeg), true
	}
	return 0, false
}
