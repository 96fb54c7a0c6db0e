package solar

import "math"

const (
	// GroundAlbedo is the assumed constant ground reflectance.
	GroundAlbedo = 0.2

	// MobileCorrectionFactor models attitude instability of a panel mounted
	// on a moving vehicle. Empirical constant.
	MobileCorrectionFactor = 0.95
)

// TiltedIrradiance estimates the plane-of-array irradiance (GTI, W/m²) for a
// tilted panel using an isotropic-sky decomposition.
//
// ghi and dni are the horizontal and direct-normal irradiance, zenithDeg and
// azimuthDeg describe the sun position, tiltDeg is the panel tilt from
// horizontal and orientationDeg the compass bearing the panel faces.
func TiltedIrradiance(ghi, dni, zenithDeg, azimuthDeg, tiltDeg, orientationDeg float64) float64 {
	zenithRad := degToRad(zenithDeg)
	tiltRad := degToRad(tiltDeg)

	cosIncidence := math.Cos(tiltRad)*math.Cos(zenithRad) +
		math.Sin(tiltRad)*math.Sin(zenithRad)*math.Cos(degToRad(azimuthDeg-orientationDeg))

	// Beam: zero when the panel faces away from the sun.
	beam := dni * math.Max(0, cosIncidence)

	// Isotropic diffuse, floored at zero to absorb noisy GHI/DNI pairs.
	diffuse := (ghi - dni*math.Cos(zenithRad)) * (1 + math.Cos(tiltRad)) / 2
	if diffuse < 0 {
		diffuse = 0
	}

	reflected := ghi * GroundAlbedo * (1 - math.Cos(tiltRad)) / 2

	return beam + diffuse + reflected
}

// MobileTiltedIrradiance is TiltedIrradiance for a vehicle-mounted panel:
// orientationDeg is the vehicle heading and the motion-loss correction is
// applied to the total.
func MobileTiltedIrradiance(ghi, dni, zenithDeg, azimuthDeg, tiltDeg, headingDeg float64) float64 {
	return TiltedIrradiance(ghi, dni, zenithDeg, azimuthDeg, tiltDeg, headingDeg) * MobileCorrectionFactor
}
