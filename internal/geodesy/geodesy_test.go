package geodesy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceKmZero(t *testing.T) {
	d := DistanceKm(51.5, -0.1, 51.5, -0.1)
	assert.InDelta(t, 0.0, d, 1e-9)
}

func TestDistanceKmKnownPair(t *testing.T) {
	// Silverstone start/finish line to Abbey corner, roughly 0.7km apart.
	d := DistanceKm(52.0786, -1.0169, 52.0733, -1.0119)
	assert.InDelta(t, 0.65, d, 0.2)
}

func TestBearingDegNorth(t *testing.T) {
	b := BearingDeg(0, 0, 1, 0)
	assert.InDelta(t, 0.0, b, 1e-6)
}

func TestBearingDegEast(t *testing.T) {
	b := BearingDeg(0, 0, 0, 1)
	assert.InDelta(t, 90.0, b, 1e-6)
}

func TestDestinationRoundTrip(t *testing.T) {
	lat, lon := Destination(51.5, -0.1, 45.0, 10.0)
	back := DistanceKm(51.5, -0.1, lat, lon)
	assert.InDelta(t, 10.0, back, 1e-6)
}

func TestNormalizeBearing(t *testing.T) {
	assert.InDelta(t, 10.0, NormalizeBearing(370.0), 1e-9)
	assert.InDelta(t, 350.0, NormalizeBearing(-10.0), 1e-9)
}
