package solar

import (
	"math"
	"testing"
)

func TestTiltedIrradianceFlatPanel(t *testing.T) {
	// With no tilt, a pure-beam sky (GHI = DNI·cos(zenith)) collapses to
	// the horizontal beam component.
	zenith := 30.0
	dni := 800.0
	ghi := dni * math.Cos(degToRad(zenith))

	gti := TiltedIrradiance(ghi, dni, zenith, 180, 0, 180)
	if diff := math.Abs(gti - ghi); diff > 1e-9 {
		t.Errorf("flat-panel GTI = %v, want %v", gti, ghi)
	}
}

func TestTiltedIrradianceFlatPanelWithDiffuse(t *testing.T) {
	// With no tilt the reflected term vanishes and beam + diffuse
	// reconstruct GHI exactly.
	gti := TiltedIrradiance(500, 300, 40, 170, 0, 180)
	if diff := math.Abs(gti - 500); diff > 1e-9 {
		t.Errorf("flat-panel GTI = %v, want 500", gti)
	}
}

func TestTiltedIrradianceFacingAway(t *testing.T) {
	// Sun due north, vertical panel facing due south: the beam term must
	// drop to zero, leaving diffuse and ground reflection only.
	ghi, dni := 400.0, 700.0
	zenith := 60.0
	gti := TiltedIrradiance(ghi, dni, zenith, 0, 90, 180)

	diffuse := (ghi - dni*math.Cos(degToRad(zenith))) * (1 + math.Cos(degToRad(90.0))) / 2
	if diffuse < 0 {
		diffuse = 0
	}
	reflected := ghi * GroundAlbedo * (1 - math.Cos(degToRad(90.0))) / 2

	want := diffuse + reflected
	if diff := math.Abs(gti - want); diff > 1e-9 {
		t.Errorf("facing-away GTI = %v, want %v (no beam)", gti, want)
	}
}

func TestTiltedIrradianceNegativeDiffuseFloored(t *testing.T) {
	// Noisy inputs can make GHI - DNI·cos(zenith) negative; the diffuse
	// term floors at zero rather than subtracting.
	ghi, dni := 100.0, 900.0
	zenith := 10.0
	tilt := 20.0
	gti := TiltedIrradiance(ghi, dni, zenith, 180, tilt, 180)

	cosInc := math.Cos(degToRad(tilt))*math.Cos(degToRad(zenith)) +
		math.Sin(degToRad(tilt))*math.Sin(degToRad(zenith))*math.Cos(degToRad(0.0))
	beam := dni * cosInc
	reflected := ghi * GroundAlbedo * (1 - math.Cos(degToRad(tilt))) / 2

	want := beam + reflected
	if diff := math.Abs(gti - want); diff > 1e-9 {
		t.Errorf("GTI = %v, want %v with diffuse floored at 0", gti, want)
	}
}

func TestMobileTiltedIrradiance(t *testing.T) {
	// The mobile variant applies the motion-loss factor to the whole sum,
	// tilt 0 included.
	ghi, dni := 600.0, 750.0
	zenith, azimuth := 35.0, 150.0

	base := TiltedIrradiance(ghi, dni, zenith, azimuth, 10, 180)
	mobile := MobileTiltedIrradiance(ghi, dni, zenith, azimuth, 10, 180)
	if diff := math.Abs(mobile - base*MobileCorrectionFactor); diff > 1e-9 {
		t.Errorf("mobile GTI = %v, want %v", mobile, base*MobileCorrectionFactor)
	}

	flatBase := TiltedIrradiance(ghi, dni, zenith, azimuth, 0, 180)
	flatMobile := MobileTiltedIrradiance(ghi, dni, zenith, azimuth, 0, 180)
	if diff := math.Abs(flatMobile - flatBase*MobileCorrectionFactor); diff > 1e-9 {
		t.Errorf("flat mobile GTI = %v, want %v", flatMobile, flatBase*MobileCorrectionFactor)
	}
}
