package forecast

import (
	"sort"
	"time"

	"github.com/solarfleet/solarcast/pkg/solar"
	"gonum.org/v1/gonum/stat"
)

// DaySummary aggregates one local calendar day of forecast records.
type DaySummary struct {
	Date           time.Time `json:"date"` // local midnight
	Samples        int       `json:"samples"`
	PeakGHI        float64   `json:"peak_ghi"`
	MeanGHI        float64   `json:"mean_ghi"`
	PeakGTI        float64   `json:"peak_gti"`
	MeanGTI        float64   `json:"mean_gti"`
	EnergyGHI      float64   `json:"energy_ghi_wh"` // Wh/m², trapezoidal
	EnergyGTI      float64   `json:"energy_gti_wh"` // Wh/m²; 0 unless GTI valid all day
	SunriseMinutes int       `json:"sunrise_minutes"`
	SunsetMinutes  int       `json:"sunset_minutes"`
	// Clearness is the ratio of mean forecast GHI to mean clear-sky GHI
	// over the day's daylight samples; 0 when undefined.
	Clearness float64 `json:"clearness"`
}

// Summarize groups records by local calendar day and aggregates each day.
// Records may arrive in any order; days are returned chronologically.
func Summarize(records []Record, latitude, longitude float64) []DaySummary {
	if len(records) == 0 {
		return nil
	}

	// Key by formatted date rather than a midnight time.Time: records can
	// carry distinct Location instances for the same fixed offset, and
	// time.Time map keys compare those by pointer.
	byDay := make(map[string][]Record)
	for _, r := range records {
		byDay[r.Time.Format("2006-01-02")] = append(byDay[r.Time.Format("2006-01-02")], r)
	}

	keys := make([]string, 0, len(byDay))
	for key := range byDay {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	summaries := make([]DaySummary, 0, len(keys))
	for _, key := range keys {
		group := byDay[key]
		first := group[0].Time
		day := time.Date(first.Year(), first.Month(), first.Day(), 0, 0, 0, 0, first.Location())
		summaries = append(summaries, summarizeDay(day, group, latitude, longitude))
	}
	return summaries
}

func summarizeDay(day time.Time, records []Record, latitude, longitude float64) DaySummary {
	sortChronological(records)

	ghi := make([]float64, len(records))
	gti := make([]float64, len(records))
	gtiComplete := true
	var peakGHI, peakGTI float64
	for i, r := range records {
		ghi[i] = r.GHI
		if r.GHI > peakGHI {
			peakGHI = r.GHI
		}
		if !r.GTIValid {
			gtiComplete = false
			continue
		}
		gti[i] = r.GTI
		if r.GTI > peakGTI {
			peakGTI = r.GTI
		}
	}

	s := DaySummary{
		Date:      day,
		Samples:   len(records),
		PeakGHI:   peakGHI,
		MeanGHI:   stat.Mean(ghi, nil),
		EnergyGHI: trapezoidWh(records, func(r Record) float64 { return r.GHI }),
	}
	if gtiComplete {
		s.PeakGTI = peakGTI
		s.MeanGTI = stat.Mean(gti, nil)
		s.EnergyGTI = trapezoidWh(records, func(r Record) float64 { return r.GTI })
	}

	s.SunriseMinutes, s.SunsetMinutes = solar.DaylightWindow(day.YearDay(), latitude, longitude)
	s.Clearness = clearness(records, latitude, longitude)

	return s
}

// trapezoidWh integrates an irradiance series (W/m²) over its timestamps
// into Wh/m².
func trapezoidWh(records []Record, value func(Record) float64) float64 {
	var wh float64
	for i := 1; i < len(records); i++ {
		dt := records[i].Time.Sub(records[i-1].Time).Hours()
		if dt <= 0 {
			continue
		}
		wh += (value(records[i]) + value(records[i-1])) / 2 * dt
	}
	return wh
}

// clearness compares mean forecast GHI against the mean Bras clear-sky GHI
// over the samples where the clear-sky model reports daylight.
func clearness(records []Record, latitude, longitude float64) float64 {
	var forecastSum, clearSum float64
	var n int
	for _, r := range records {
		clear := solar.ClearSkyGHI(r.Time, latitude, longitude, solar.DefaultTurbidity)
		if clear <= 0 {
			continue
		}
		forecastSum += r.GHI
		clearSum += clear
		n++
	}
	if n == 0 || clearSum == 0 {
		return 0
	}
	return forecastSum / clearSum
}
