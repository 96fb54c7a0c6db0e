package solar

import "testing"

func TestDaylightWindow(t *testing.T) {
	tests := []struct {
		name        string
		dayOfYear   int
		latitude    float64
		longitude   float64
		wantPolar   bool
		wantSunrise int // minutes from local midnight, ±10
		wantSunset  int
	}{
		{
			name:      "equator at equinox",
			dayOfYear: 80,
			latitude:  0, longitude: 0,
			wantSunrise: 360, wantSunset: 1080,
		},
		{
			name:      "45N summer solstice",
			dayOfYear: 172,
			latitude:  45, longitude: 0,
			wantSunrise: 257, wantSunset: 1183,
		},
		{
			name:      "45N winter solstice",
			dayOfYear: 355,
			latitude:  45, longitude: 0,
			wantSunrise: 463, wantSunset: 977,
		},
		{
			name:      "arctic summer is polar day",
			dayOfYear: 172,
			latitude:  70, longitude: 25,
			wantPolar: true,
		},
		{
			name:      "arctic winter is polar night",
			dayOfYear: 355,
			latitude:  70, longitude: 25,
			wantPolar: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sunrise, sunset := DaylightWindow(tt.dayOfYear, tt.latitude, tt.longitude)

			if tt.wantPolar {
				if sunrise != -1 || sunset != -1 {
					t.Errorf("want polar sentinel (-1, -1), got (%d, %d)", sunrise, sunset)
				}
				return
			}

			if diff := sunrise - tt.wantSunrise; diff < -10 || diff > 10 {
				t.Errorf("sunrise = %d, want ~%d", sunrise, tt.wantSunrise)
			}
			if diff := sunset - tt.wantSunset; diff < -10 || diff > 10 {
				t.Errorf("sunset = %d, want ~%d", sunset, tt.wantSunset)
			}
		})
	}
}

func TestDaylightWindowLongitudeShift(t *testing.T) {
	// The window shares the position model's 4 min/degree clock
	// correction: moving 15 degrees west shifts both ends an hour later.
	sunriseAt0, sunsetAt0 := DaylightWindow(100, 40, 0)
	sunriseWest, sunsetWest := DaylightWindow(100, 40, -15)

	if sunriseWest != sunriseAt0+60 {
		t.Errorf("sunrise at 15W = %d, want %d", sunriseWest, sunriseAt0+60)
	}
	if sunsetWest != sunsetAt0+60 {
		t.Errorf("sunset at 15W = %d, want %d", sunsetWest, sunsetAt0+60)
	}
}
