package solar

import "math"

// DaylightWindow returns sunrise and sunset as minutes from local midnight
// for the given day-of-year and coordinates, using the same declination and
// longitude-only clock correction as Position so the window is consistent
// with the position model. Returns (-1, -1) for polar day or polar night.
func DaylightWindow(dayOfYear int, latitude, longitude float64) (sunriseMinutes, sunsetMinutes int) {
	declRad := degToRad(Declination(dayOfYear))
	latRad := degToRad(latitude)

	// At sunrise/sunset the sun sits on the horizon: cos(H) = -tan(lat)*tan(decl).
	cosH := -math.Tan(latRad) * math.Tan(declRad)
	if cosH < -1.0 || cosH > 1.0 {
		// Sun never sets, or never rises.
		return -1, -1
	}

	// Half-day length in minutes: 4 minutes per degree of hour angle.
	halfDayMinutes := radToDeg(math.Acos(cosH)) * 4.0

	// Solar noon on the local clock, under the model's 4 min/degree
	// longitude correction.
	noonMinutes := 720.0 - longitude*4.0

	sunrise := math.Mod(noonMinutes-halfDayMinutes+1440.0, 1440.0)
	sunset := math.Mod(noonMinutes+halfDayMinutes+1440.0, 1440.0)

	return int(math.Round(sunrise)), int(math.Round(sunset))
}
