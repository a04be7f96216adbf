package receiver

import (
	"math/rand"
	"testing"
	"time"

	"github.com/bramburn/nmeasim/internal/nmea"
	"github.com/bramburn/nmeasim/internal/targeting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReceiverDefaults(t *testing.T) {
	r := New("GP", 51.5, -0.1, rand.NewSource(1))
	assert.False(t, r.HasFix)
	for _, id := range DefaultSentenceOrder {
		assert.True(t, r.Enabled[id])
	}
}

func TestStepWithoutFixDoesNotAdvanceTime(t *testing.T) {
	r := New("GP", 0, 0, rand.NewSource(1))
	before := r.DateTime
	r.Step(time.Second)
	assert.Equal(t, before, r.DateTime)
}

func TestStepWithFixAdvancesTimeAndAppliesStrategy(t *testing.T) {
	r := New("GP", 0, 0, rand.NewSource(1))
	r.SetFix(true, nmea.FixMode3D, nmea.FixGPS)
	r.Strategy = targeting.NewLinear(0, 0.01, 500, true, 10)

	before := r.DateTime
	r.Step(time.Second)
	assert.True(t, r.DateTime.After(before))
	assert.Greater(t, r.Lon, 0.0)
}

func TestStepCoastsStraightWithoutStrategy(t *testing.T) {
	r := New("GP", 0, 0, rand.NewSource(1))
	r.SetFix(true, nmea.FixMode3D, nmea.FixGPS)
	r.SpeedKph = 360 // 0.1 km/s
	r.HeadingDeg = 90

	r.Step(time.Second)
	assert.Greater(t, r.Lon, 0.0)
}

func TestGetOutputRespectsEnabledSet(t *testing.T) {
	r := New("GP", 51.5, -0.1, rand.NewSource(1))
	r.Enabled = map[SentenceID]bool{GGA: true}

	out := r.GetOutput()
	require.Len(t, out, 1)
	assert.Contains(t, out[0], "$GPGGA,")
}

func TestGetOutputDoesNotAdvanceState(t *testing.T) {
	r := New("GP", 51.5, -0.1, rand.NewSource(1))
	r.SetFix(true, nmea.FixMode3D, nmea.FixGPS)

	before := r.Lat
	r.GetOutput()
	r.GetOutput()
	assert.Equal(t, before, r.Lat)
}

func TestSatellitePerturbationAppliesToAllSatellites(t *testing.T) {
	r := New("GP", 0, 0, rand.NewSource(1))
	r.HasRTC = true
	r.Satellites = []Satellite{{PRN: 1, SNR: 40, Elevation: 45, Azimuth: 90}}
	r.DateTime = time.Date(2026, 1, 1, 0, 0, 15, 0, time.UTC)

	r.Step(time.Second)
	assert.NotEqual(t, 40.0, r.Satellites[0].SNR)
}
