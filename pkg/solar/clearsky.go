package solar

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

const solarConstant = 1367.0 // W/m²

// DefaultTurbidity is the Bras atmospheric turbidity factor for reasonably
// clear conditions (2 = clear, 4-5 = hazy/smoggy).
const DefaultTurbidity = 2.0

func fixAngle(a float64) float64 { return a - 360.0*math.Floor(a/360.0) }

// ClearSkyGHI estimates the clear-sky global horizontal irradiance (W/m²)
// at an instant and location using the Bras atmospheric attenuation model
// over a full NOAA sun-position calculation. Unlike Position, this uses
// proper Julian-date astronomy: it serves as a reporting reference (e.g.
// clearness ratios), not as the forecast position model.
//
// Returns 0 when the sun is below the horizon.
func ClearSkyGHI(t time.Time, latitude, longitude, turbidity float64) float64 {
	jd := julian.TimeToJD(t.UTC())
	T := (jd - 2451545.0) / 36525.0

	// Geometric mean longitude and anomaly of the sun.
	L0 := fixAngle(280.46646 + T*(36000.76983+T*0.0003032))
	M := fixAngle(357.52911 + T*(35999.05029-T*0.0001537))
	e := 0.016708634 - T*(0.000042037+T*0.0000001267)

	// Equation of center and apparent longitude.
	C := math.Sin(degToRad(M))*(1.914602-T*(0.004817+T*0.000014)) +
		math.Sin(degToRad(2*M))*(0.019993-T*0.000101) +
		math.Sin(degToRad(3*M))*0.000289
	omega := 125.04 - 1934.136*T
	lambda := L0 + C - 0.00569 - 0.00478*math.Sin(degToRad(omega))

	// Obliquity and declination.
	eps0 := 23.0 + (26.0+(21.448-T*(46.815+T*(0.00059-T*0.001813)))/60.0)/60.0
	declRad := math.Asin(math.Sin(degToRad(eps0)) * math.Sin(degToRad(lambda)))

	// Equation of time in minutes.
	y := math.Tan(degToRad(eps0) / 2)
	y *= y
	eqTimeMin := radToDeg(y*math.Sin(degToRad(2*L0))-
		2*e*math.Sin(degToRad(M))+
		4*e*y*math.Sin(degToRad(M))*math.Cos(degToRad(2*L0))-
		0.5*y*y*math.Sin(degToRad(4*L0))-
		1.25*e*e*math.Sin(degToRad(2*M))) * 4

	utc := t.UTC()
	utcMin := float64(utc.Hour()*60+utc.Minute()) + float64(utc.Second())/60.0
	trueSolarMin := utcMin + 4*longitude + eqTimeMin
	hourAngleRad := degToRad(trueSolarMin/4 - 180)

	latRad := degToRad(latitude)
	cosZenith := math.Sin(latRad)*math.Sin(declRad) +
		math.Cos(latRad)*math.Cos(declRad)*math.Cos(hourAngleRad)
	elevationDeg := 90.0 - radToDeg(math.Acos(clamp(cosZenith))) + 0.5667

	if elevationDeg <= 0 {
		return 0
	}

	// Sun-earth distance factor from the orbital eccentric anomaly.
	mRad := degToRad(M)
	ecc := math.Atan(math.Sqrt((1+e)/(1-e)) * math.Tan((mRad+e*math.Sin(mRad)*(1+e*math.Cos(mRad)))/2))
	r := (1 - e*e) / (1 + e*math.Cos(2*ecc))

	extraterrestrial := cosZenith * solarConstant / (r * r)

	// Bras optical air mass and attenuation.
	airMass := 1.0 / (cosZenith + 0.15*math.Pow(elevationDeg+3.885, -1.253))
	a1 := 0.128 - 0.054*math.Log10(airMass)
	ghi := extraterrestrial * math.Exp(-turbidity*a1*airMass)
	if ghi < 0 {
		return 0
	}
	return ghi
}
