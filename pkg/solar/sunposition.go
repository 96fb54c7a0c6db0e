// Package solar provides sun geometry and irradiance calculations for
// forecast processing. The position model is intentionally simple: Cooper's
// declination approximation and a longitude-only clock correction
// (4 minutes of time per degree), with no equation-of-time term. Downstream
// consumers are calibrated to this model, so its precision must not be
// changed without recalibrating them.
package solar

import (
	"math"
	"time"
)

// sinZenithEpsilon is the threshold below which the azimuth denominator is
// treated as zero (sun at the zenith or nadir).
const sinZenithEpsilon = 1e-9

func degToRad(deg float64) float64 { return deg * math.Pi / 180.0 }
func radToDeg(rad float64) float64 { return rad * 180.0 / math.Pi }

// clamp constrains v to [-1, 1] so that floating-point overshoot never
// escapes the domain of Asin/Acos.
func clamp(v float64) float64 {
	if v > 1.0 {
		return 1.0
	}
	if v < -1.0 {
		return -1.0
	}
	return v
}

// Declination returns the solar declination in degrees for the given day of
// year, using Cooper's approximation.
func Declination(dayOfYear int) float64 {
	return 23.45 * math.Sin(degToRad(360.0*float64(284+dayOfYear)/365.0))
}

// Position computes the topocentric sun position for a local civil timestamp
// at the given coordinates. The zenith angle is in [0, 180] degrees and the
// azimuth is a compass bearing in [0, 360) degrees (0 = north, 90 = east).
//
// Local solar time is derived from the clock hour plus 4 minutes per degree
// of longitude. When the sun is directly overhead or underfoot the azimuth
// is undefined; 0 is returned in that case.
func Position(t time.Time, latitude, longitude float64) (zenithDeg, azimuthDeg float64) {
	dayOfYear := t.YearDay()
	clockHour := float64(t.Hour()) + float64(t.Minute())/60.0 + float64(t.Second())/3600.0

	declRad := degToRad(Declination(dayOfYear))

	solarTime := clockHour + 4.0*longitude/60.0
	hourAngleRad := degToRad(15.0 * (solarTime - 12.0))

	latRad := degToRad(latitude)

	cosZenith := clamp(math.Sin(latRad)*math.Sin(declRad) +
		math.Cos(latRad)*math.Cos(declRad)*math.Cos(hourAngleRad))
	zenithRad := math.Acos(cosZenith)
	zenithDeg = radToDeg(zenithRad)

	sinZenith := math.Sin(zenithRad)
	if sinZenith < sinZenithEpsilon {
		// Sun at zenith or nadir: azimuth undefined, report north.
		return zenithDeg, 0.0
	}

	sinAzimuth := clamp(-math.Cos(declRad) * math.Sin(hourAngleRad) / sinZenith)
	cosAzimuth := clamp((math.Sin(declRad) - math.Sin(latRad)*cosZenith) /
		(math.Cos(latRad) * sinZenith))

	// Resolve the quadrant from the two signs into a 0-360 compass bearing.
	asinDeg := radToDeg(math.Asin(sinAzimuth))
	switch {
	case sinAzimuth >= 0 && cosAzimuth >= 0:
		azimuthDeg = asinDeg
	case sinAzimuth >= 0 && cosAzimuth < 0:
		azimuthDeg = 180.0 - asinDeg
	case sinAzimuth < 0 && cosAzimuth < 0:
		azimuthDeg = 180.0 - asinDeg
	default:
		azimuthDeg = 360.0 + asinDeg
	}

	return zenithDeg, azimuthDeg
}
