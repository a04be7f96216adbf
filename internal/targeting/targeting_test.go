package targeting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticTargetingNeverMoves(t *testing.T) {
	s := NewStatic()
	lat, lon, heading, speed := s.NextPosition(10, 20, 90, 1.0, 30)
	assert.Equal(t, 10.0, lat)
	assert.Equal(t, 20.0, lon)
	assert.Equal(t, 90.0, heading)
	assert.Equal(t, 0.0, speed)
	assert.False(t, s.IsComplete())
	assert.Equal(t, -1.0, s.Progress())
}

func TestLinearTargetingArrivesAndStops(t *testing.T) {
	l := NewLinear(0.0, 0.01, 500.0, true, 10.0)
	var lat, lon float64
	for i := 0; i < 100 && !l.IsComplete(); i++ {
		lat, lon, _, _ = l.NextPosition(lat, lon, 0, 1.0, 0)
	}
	assert.True(t, l.IsComplete())
	d := l.DistanceTraveledKm()
	assert.Greater(t, d, 0.0)
}

func TestLinearTargetingContinuesPastTargetWhenNotStopping(t *testing.T) {
	l := NewLinear(0.0, 0.001, 1000.0, false, 1.0)
	var lat, lon, maxLon float64
	for i := 0; i < 10; i++ {
		lat, lon, _, _ = l.NextPosition(lat, lon, 0, 1.0, 0)
		if lon > maxLon {
			maxLon = lon
		}
	}
	assert.False(t, l.IsComplete())
	// Unclamped, the first tick carries the receiver ~278m east, past the
	// target ~111m away.
	assert.Greater(t, maxLon, 0.001)
	_ = lat
	_ = lon
}

func TestCircularTargetingCompletesLaps(t *testing.T) {
	c := NewCircular(51.5, -0.1, 100.0, 90.0, true, 0.0)
	for i := 0; i < 4; i++ {
		c.NextPosition(51.5, -0.1, 0, 1.0, 0)
	}
	assert.Equal(t, 1, c.LapsCompleted())
	assert.False(t, c.IsComplete())
}

func TestCircularTargetingCounterClockwiseHeading(t *testing.T) {
	c := NewCircular(0, 0, 50.0, 10.0, false, 0.0)
	_, _, heading, _ := c.NextPosition(0, 0, 0, 1.0, 0)
	assert.InDelta(t, 260.0, heading, 1.0)
}

func TestWaypointTargetingRequiresTwoWaypoints(t *testing.T) {
	_, err := NewWaypointManual([]Waypoint{{Lat: 0, Lon: 0}}, 50, true, 20)
	require.Error(t, err)
}

func TestWaypointTargetingManualLoops(t *testing.T) {
	wps := []Waypoint{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 0.01}, {Lat: 0.01, Lon: 0.01}}
	w, err := NewWaypointManual(wps, 200.0, true, 50.0)
	require.NoError(t, err)

	lat, lon := 0.0, 0.0
	for i := 0; i < 2000 && w.LapsCompleted() < 1; i++ {
		lat, lon, _, _ = w.NextPosition(lat, lon, 0, 1.0, 0)
	}
	assert.GreaterOrEqual(t, w.LapsCompleted(), 1)
}

func TestWaypointTargetingDynamicUnknownProfile(t *testing.T) {
	wps := []Waypoint{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 0.01}}
	_, err := NewWaypointDynamic(wps, "Spaceship", true, 20)
	require.Error(t, err)
}

func TestWaypointTargetingDynamicAccelerates(t *testing.T) {
	wps := []Waypoint{
		{Lat: 0, Lon: 0}, {Lat: 0, Lon: 0.05}, {Lat: 0, Lon: 0.1}, {Lat: 0, Lon: 0.15},
	}
	w, err := NewWaypointDynamic(wps, "Go-Kart", true, 10.0)
	require.NoError(t, err)

	lat, lon := 0.0, 0.0
	var speed float64
	for i := 0; i < 30; i++ {
		lat, lon, _, speed = w.NextPosition(lat, lon, 0, 1.0, speed)
	}
	assert.Greater(t, speed, 0.0)
}

func TestWaypointAddRemove(t *testing.T) {
	wps := []Waypoint{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 0.01}, {Lat: 0.01, Lon: 0.01}}
	w, err := NewWaypointManual(wps, 100, true, 20)
	require.NoError(t, err)

	w.AddWaypoint(0.02, 0.02, nil)
	assert.Len(t, w.Waypoints, 4)

	w.RemoveWaypoint(0)
	assert.Len(t, w.Waypoints, 3)

	// refuses to shrink below 2
	w.RemoveWaypoint(0)
	w.RemoveWaypoint(0)
	assert.Len(t, w.Waypoints, 2)
}

func TestRouteDistanceMemoized(t *testing.T) {
	wps := []Waypoint{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 0.01}, {Lat: 0.01, Lon: 0.01}}
	w, err := NewWaypointManual(wps, 100, true, 20)
	require.NoError(t, err)

	d1 := w.RouteDistanceKm()
	d2 := w.RouteDistanceKm()
	assert.Equal(t, d1, d2)
	assert.Greater(t, d1, 0.0)
}
