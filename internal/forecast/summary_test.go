package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeGroupsByDay(t *testing.T) {
	records := []Record{
		{Time: localTime(2024, 6, 2, 12, 0), GHI: 800},
		{Time: localTime(2024, 6, 1, 10, 0), GHI: 0},
		{Time: localTime(2024, 6, 1, 11, 0), GHI: 100},
		{Time: localTime(2024, 6, 1, 12, 0), GHI: 200},
	}

	days := Summarize(records, 35, 139)
	require.Len(t, days, 2)

	first := days[0]
	assert.Equal(t, 1, first.Date.Day())
	assert.Equal(t, 3, first.Samples)
	assert.Equal(t, 200.0, first.PeakGHI)
	assert.InDelta(t, 100.0, first.MeanGHI, 1e-9)
	// Trapezoid over (0, 100, 200) at one-hour spacing.
	assert.InDelta(t, 200.0, first.EnergyGHI, 1e-9)

	assert.Equal(t, 2, days[1].Date.Day())
	assert.Equal(t, 1, days[1].Samples)
}

func TestSummarizeGTIOnlyWhenComplete(t *testing.T) {
	complete := []Record{
		{Time: localTime(2024, 6, 1, 11, 0), GHI: 100, GTI: 120, GTIValid: true},
		{Time: localTime(2024, 6, 1, 12, 0), GHI: 200, GTI: 240, GTIValid: true},
	}
	days := Summarize(complete, 35, 139)
	require.Len(t, days, 1)
	assert.Equal(t, 240.0, days[0].PeakGTI)
	assert.InDelta(t, 180.0, days[0].MeanGTI, 1e-9)

	partial := []Record{
		{Time: localTime(2024, 6, 1, 11, 0), GHI: 100, GTI: 120, GTIValid: true},
		{Time: localTime(2024, 6, 1, 12, 0), GHI: 200},
	}
	days = Summarize(partial, 35, 139)
	require.Len(t, days, 1)
	assert.Zero(t, days[0].PeakGTI)
	assert.Zero(t, days[0].MeanGTI)
	assert.Zero(t, days[0].EnergyGTI)
}

func TestSummarizeDaylightWindow(t *testing.T) {
	records := []Record{
		{Time: localTime(2024, 6, 1, 12, 0), GHI: 500},
	}

	days := Summarize(records, 0, 0)
	require.Len(t, days, 1)

	// Equator: roughly a 12-hour day centred on local noon.
	assert.InDelta(t, 360, days[0].SunriseMinutes, 20)
	assert.InDelta(t, 1080, days[0].SunsetMinutes, 20)
}

func TestSummarizeClearness(t *testing.T) {
	// Daylight samples with forecast GHI far below the clear-sky model
	// must yield a clearness ratio in (0, 1).
	loc := time.FixedZone("UTC+0", 0)
	records := []Record{
		{Time: time.Date(2024, 6, 1, 11, 0, 0, 0, loc), GHI: 300},
		{Time: time.Date(2024, 6, 1, 12, 0, 0, 0, loc), GHI: 350},
	}

	days := Summarize(records, 0, 0)
	require.Len(t, days, 1)
	assert.Greater(t, days[0].Clearness, 0.0)
	assert.Less(t, days[0].Clearness, 1.0)
}

func TestSummarizeEmpty(t *testing.T) {
	assert.Nil(t, Summarize(nil, 35, 139))
}
