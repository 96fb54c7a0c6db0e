package forecast

import (
	"sort"
	"time"
)

// fallbackLimit caps the number of records returned when no sample shares
// the target's calendar date.
const fallbackLimit = 24

// Select orders a batch of records against an optional target timestamp.
// Records are never modified, only reordered and filtered.
//
// Without a target the full batch is returned sorted chronologically. With a
// target, records sharing the target's calendar date are ranked by
// minute-of-day distance to it (ties keep chronological order). When no
// record falls on that date, the whole batch is ranked by absolute time
// distance to the target instant and truncated; this fallback branch returns
// nearness order, not chronological order.
func Select(records []Record, target *time.Time) []Record {
	out := make([]Record, len(records))
	copy(out, records)

	if target == nil {
		sortChronological(out)
		return out
	}

	sameDay := make([]Record, 0, len(out))
	for _, r := range out {
		if sameDate(r.Time, *target) {
			sameDay = append(sameDay, r)
		}
	}

	if len(sameDay) > 0 {
		sortChronological(sameDay)
		targetMinute := minuteOfDay(*target)
		sort.SliceStable(sameDay, func(i, j int) bool {
			return absInt(minuteOfDay(sameDay[i].Time)-targetMinute) <
				absInt(minuteOfDay(sameDay[j].Time)-targetMinute)
		})
		return sameDay
	}

	// No sample on the requested date: fall back to the globally nearest
	// records so a short forecast horizon still yields something useful.
	sort.SliceStable(out, func(i, j int) bool {
		return absDuration(out[i].Time.Sub(*target)) < absDuration(out[j].Time.Sub(*target))
	})
	if len(out) > fallbackLimit {
		out = out[:fallbackLimit]
	}
	return out
}

func sortChronological(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Time.Before(records[j].Time)
	})
}

func sameDate(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

func minuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
