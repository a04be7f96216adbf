// Package targeting implements the pluggable motion strategies that drive
// a receiver's position each simulation tick: static, linear, circular and
// waypoint-following, the last with an optional vehicle-profile-based
// dynamic speed controller.
package targeting

import (
	"math"
	"strconv"

	"github.com/bramburn/nmeasim/internal/geodesy"
)

// Strategy is the contract every targeting mode implements. NextPosition
// is called once per simulation tick and returns the receiver's new
// position, heading and speed, advancing the strategy's own per-tick
// state (distance, angle, waypoint cursor, speed) as it goes.
type Strategy interface {
	NextPosition(lat, lon, headingDeg, durationSeconds, speedKph float64) (newLat, newLon, newHeadingDeg, newSpeedKph float64)
	IsComplete() bool
	Reset()
	Progress() float64
	Status() map[string]any
	SetActive(active bool)
	IsActive() bool
	DistanceTraveledKm() float64
}

// base carries the bookkeeping common to every strategy: whether it is
// currently applied, and how far it has moved the receiver so far.
type base struct {
	active           bool
	distanceTraveled float64
}

func newBase() base { return base{active: true} }

func (b *base) SetActive(active bool)          { b.active = active }
func (b *base) IsActive() bool                 { return b.active }
func (b *base) DistanceTraveledKm() float64    { return b.distanceTraveled }
func (b *base) addDistance(distanceKm float64) { b.distanceTraveled += distanceKm }

// Profile is a vehicle's performance envelope, used by a Waypoint
// strategy running in dynamic speed mode. The three built-ins below are
// carried verbatim from the original tool's VEHICLE_PROFILES table.
type Profile struct {
	TopSpeedKph        float64
	AccelerationKphS   float64
	BrakingKphS        float64
	MinCornerSpeedKph  float64
}

// Profiles holds the built-in vehicle profiles available to dynamic
// waypoint targeting, keyed by name.
var Profiles = map[string]Profile{
	"F1": {
		TopSpeedKph:       300.0,
		AccelerationKphS:  60.0,
		BrakingKphS:       80.0,
		MinCornerSpeedKph: 120.0,
	},
	"Go-Kart": {
		TopSpeedKph:       80.0,
		AccelerationKphS:  25.0,
		BrakingKphS:       35.0,
		MinCornerSpeedKph: 40.0,
	},
	"Bicycle": {
		TopSpeedKph:       35.0,
		AccelerationKphS:  6.0,
		BrakingKphS:       12.0,
		MinCornerSpeedKph: 15.0,
	},
}

// StaticTargeting holds the receiver's position fixed. It is the default
// strategy and is always complete-never: there is nothing to arrive at.
type StaticTargeting struct {
	base
}

// NewStatic returns a targeting strategy that never moves the receiver.
func NewStatic() *StaticTargeting {
	return &StaticTargeting{base: newBase()}
}

func (s *StaticTargeting) NextPosition(lat, lon, heading, _ float64, _ float64) (float64, float64, float64, float64) {
	return lat, lon, heading, 0.0
}

func (s *StaticTargeting) IsComplete() bool { return false }
func (s *StaticTargeting) Reset()           {}
func (s *StaticTargeting) Progress() float64 { return -1.0 }

func (s *StaticTargeting) Status() map[string]any {
	return map[string]any{
		"type":        "static",
		"active":      s.active,
		"description": "GPS position held static",
	}
}

// LinearTargeting moves the receiver in a straight great-circle line
// toward a single target point at a fixed speed.
type LinearTargeting struct {
	base

	TargetLat, TargetLon   float64
	SpeedKph                float64
	StopAtTarget            bool
	ArrivalThresholdMeters  float64

	initialDistanceKm *float64
	arrived           bool
}

// NewLinear constructs a LinearTargeting toward (targetLat, targetLon).
// arrivalThresholdMeters defaults to 10m and speedKph to 50kph when given
// as zero, matching the original tool's constructor defaults.
func NewLinear(targetLat, targetLon, speedKph float64, stopAtTarget bool, arrivalThresholdMeters float64) *LinearTargeting {
	if arrivalThresholdMeters == 0 {
		arrivalThresholdMeters = 10.0
	}
	if speedKph == 0 {
		speedKph = 50.0
	}
	return &LinearTargeting{
		base:                   newBase(),
		TargetLat:              targetLat,
		TargetLon:              targetLon,
		SpeedKph:               speedKph,
		StopAtTarget:           stopAtTarget,
		ArrivalThresholdMeters: arrivalThresholdMeters,
	}
}

func (l *LinearTargeting) NextPosition(lat, lon, heading, durationSeconds, _ float64) (float64, float64, float64, float64) {
	if !l.active {
		return lat, lon, heading, 0.0
	}

	distanceToTargetKm := geodesy.DistanceKm(lat, lon, l.TargetLat, l.TargetLon)
	if l.initialDistanceKm == nil {
		d := distanceToTargetKm
		l.initialDistanceKm = &d
	}

	if distanceToTargetKm*1000.0 <= l.ArrivalThresholdMeters {
		l.arrived = true
		if l.StopAtTarget {
			return lat, lon, heading, 0.0
		}
	}

	targetBearing := geodesy.BearingDeg(lat, lon, l.TargetLat, l.TargetLon)
	distanceThisStepKm := (l.SpeedKph / 3600.0) * durationSeconds
	if l.StopAtTarget && distanceThisStepKm > distanceToTargetKm {
		distanceThisStepKm = distanceToTargetKm
	}

	newLat, newLon := geodesy.Destination(lat, lon, targetBearing, distanceThisStepKm)
	l.addDistance(distanceThisStepKm)

	return newLat, newLon, targetBearing, l.SpeedKph
}

func (l *LinearTargeting) IsComplete() bool {
	return l.arrived && l.StopAtTarget
}

func (l *LinearTargeting) Reset() {
	l.initialDistanceKm = nil
	l.arrived = false
	l.distanceTraveled = 0.0
}

// Progress reports how far the receiver has closed on the target, as the
// original tool computes it: from a fixed (0, 0) reference rather than
// the receiver's actual current position. This is a known quirk of the
// source implementation, preserved rather than corrected.
func (l *LinearTargeting) Progress() float64 {
	if l.initialDistanceKm == nil || *l.initialDistanceKm == 0 {
		return 0.0
	}
	currentDistanceKm := geodesy.DistanceKm(0, 0, l.TargetLat, l.TargetLon)
	progress := 1.0 - (currentDistanceKm / *l.initialDistanceKm)
	return math.Max(0.0, math.Min(1.0, progress))
}

func (l *LinearTargeting) Status() map[string]any {
	var initial float64
	if l.initialDistanceKm != nil {
		initial = *l.initialDistanceKm
	}
	return map[string]any{
		"type":               "linear",
		"active":             l.active,
		"target_lat":         l.TargetLat,
		"target_lon":         l.TargetLon,
		"speed_kph":          l.SpeedKph,
		"stop_at_target":     l.StopAtTarget,
		"arrived":            l.arrived,
		"distance_traveled_km": l.distanceTraveled,
		"initial_distance_km": initial,
	}
}

// UpdateTarget redirects a live LinearTargeting at a new point, forcing
// progress tracking to recompute its baseline on the next tick.
func (l *LinearTargeting) UpdateTarget(lat, lon float64) {
	l.TargetLat, l.TargetLon = lat, lon
	l.initialDistanceKm = nil
	l.arrived = false
}

// CircularTargeting drives the receiver around a fixed circle at constant
// angular velocity, suitable for laps around a point.
type CircularTargeting struct {
	base

	CenterLat, CenterLon      float64
	RadiusMeters              float64
	AngularVelocityDegPerSec  float64
	Clockwise                 bool
	StartAngleDegrees         float64

	currentAngle       float64
	totalAngleTraveled float64
	lapsCompleted      int
}

// NewCircular constructs a CircularTargeting around (centerLat, centerLon).
func NewCircular(centerLat, centerLon, radiusMeters, angularVelocityDegPerSec float64, clockwise bool, startAngleDegrees float64) *CircularTargeting {
	return &CircularTargeting{
		base:                     newBase(),
		CenterLat:                centerLat,
		CenterLon:                centerLon,
		RadiusMeters:             radiusMeters,
		AngularVelocityDegPerSec: angularVelocityDegPerSec,
		Clockwise:                clockwise,
		StartAngleDegrees:        startAngleDegrees,
		currentAngle:             startAngleDegrees,
	}
}

func (c *CircularTargeting) NextPosition(lat, lon, heading, durationSeconds, _ float64) (float64, float64, float64, float64) {
	if !c.active {
		return lat, lon, heading, 0.0
	}

	angleDelta := c.AngularVelocityDegPerSec * durationSeconds
	if !c.Clockwise {
		angleDelta = -angleDelta
	}

	c.currentAngle = geodesy.NormalizeBearing(c.currentAngle + angleDelta)
	c.totalAngleTraveled += math.Abs(angleDelta)
	if c.totalAngleTraveled >= 360.0 {
		c.lapsCompleted = int(c.totalAngleTraveled / 360.0)
	}

	radiusKm := c.RadiusMeters / 1000.0
	positionLat, positionLon := geodesy.Destination(c.CenterLat, c.CenterLon, c.currentAngle, radiusKm)

	var newHeading float64
	if c.Clockwise {
		newHeading = geodesy.NormalizeBearing(c.currentAngle + 90)
	} else {
		newHeading = geodesy.NormalizeBearing(c.currentAngle - 90)
	}

	angularVelocityRadPerSec := c.AngularVelocityDegPerSec * math.Pi / 180.0
	speedMPerSec := angularVelocityRadPerSec * c.RadiusMeters
	speedKph := speedMPerSec * 3.6

	arcLengthKm := radiusKm * (math.Abs(angleDelta) * math.Pi / 180.0)
	c.addDistance(arcLengthKm)

	return positionLat, positionLon, newHeading, speedKph
}

func (c *CircularTargeting) IsComplete() bool { return false }

func (c *CircularTargeting) Reset() {
	c.currentAngle = c.StartAngleDegrees
	c.totalAngleTraveled = 0.0
	c.lapsCompleted = 0
	c.distanceTraveled = 0.0
}

func (c *CircularTargeting) Progress() float64 {
	return math.Mod(c.totalAngleTraveled, 360.0) / 360.0
}

func (c *CircularTargeting) Status() map[string]any {
	return map[string]any{
		"type":                  "circular",
		"active":                c.active,
		"center_lat":            c.CenterLat,
		"center_lon":            c.CenterLon,
		"radius_meters":         c.RadiusMeters,
		"angular_velocity":      c.AngularVelocityDegPerSec,
		"clockwise":             c.Clockwise,
		"current_angle":         c.currentAngle,
		"laps_completed":        c.lapsCompleted,
		"distance_traveled_km":  c.distanceTraveled,
		"current_lap_progress":  c.Progress(),
	}
}

// LapsCompleted returns the number of full revolutions driven so far.
func (c *CircularTargeting) LapsCompleted() int { return c.lapsCompleted }

// UpdateCenter relocates the circle without resetting lap progress.
func (c *CircularTargeting) UpdateCenter(lat, lon float64) {
	c.CenterLat, c.CenterLon = lat, lon
}

// Waypoint is a single (lat, lon) stop on a route.
type Waypoint struct {
	Lat, Lon float64
}

// SpeedMode selects how a WaypointTargeting picks its travel speed.
type SpeedMode int

const (
	// ModeManual drives the route at a fixed configured speed.
	ModeManual SpeedMode = iota
	// ModeDynamic drives the route using a Profile-based speed
	// controller that brakes for corners and accelerates on straights.
	ModeDynamic
)

type cornerAction struct {
	actionType string
	percentage float64
	reason     string
}

// WaypointTargeting drives the receiver through an ordered list of
// waypoints, looping back to the start when Loop is set.
type WaypointTargeting struct {
	base

	Waypoints              []Waypoint
	Loop                   bool
	ArrivalThresholdMeters float64
	Mode                   SpeedMode
	SpeedProfileName       string

	// manual-mode speed
	SpeedKph float64

	// dynamic-mode state
	profile        Profile
	currentSpeedKph float64

	currentWaypointIndex int
	lapsCompleted        int
	totalRouteDistanceKm *float64
	completed            bool
	currentAction        *cornerAction
}

// NewWaypointManual constructs a fixed-speed waypoint route.
func NewWaypointManual(waypoints []Waypoint, speedKph float64, loop bool, arrivalThresholdMeters float64) (*WaypointTargeting, error) {
	w, err := newWaypointBase(waypoints, loop, arrivalThresholdMeters)
	if err != nil {
		return nil, err
	}
	w.Mode = ModeManual
	w.SpeedKph = speedKph
	w.currentSpeedKph = speedKph
	return w, nil
}

// NewWaypointDynamic constructs a waypoint route that regulates its own
// speed from a named vehicle Profile, braking ahead of corners and
// accelerating on straights.
func NewWaypointDynamic(waypoints []Waypoint, profileName string, loop bool, arrivalThresholdMeters float64) (*WaypointTargeting, error) {
	w, err := newWaypointBase(waypoints, loop, arrivalThresholdMeters)
	if err != nil {
		return nil, err
	}
	profile, ok := Profiles[profileName]
	if !ok {
		return nil, &UnknownProfileError{Name: profileName}
	}
	w.Mode = ModeDynamic
	w.SpeedProfileName = profileName
	w.profile = profile
	w.currentSpeedKph = 0.0
	return w, nil
}

// UnknownProfileError reports a vehicle profile name with no entry in
// Profiles.
type UnknownProfileError struct{ Name string }

func (e *UnknownProfileError) Error() string {
	return "targeting: unknown speed profile " + e.Name
}

func newWaypointBase(waypoints []Waypoint, loop bool, arrivalThresholdMeters float64) (*WaypointTargeting, error) {
	if len(waypoints) < 2 {
		return nil, errAtLeastTwoWaypoints
	}
	if arrivalThresholdMeters == 0 {
		arrivalThresholdMeters = 20.0
	}
	cp := make([]Waypoint, len(waypoints))
	copy(cp, waypoints)
	return &WaypointTargeting{
		base:                   newBase(),
		Waypoints:              cp,
		Loop:                   loop,
		ArrivalThresholdMeters: arrivalThresholdMeters,
	}, nil
}

var errAtLeastTwoWaypoints = waypointCountError{}

type waypointCountError struct{}

func (waypointCountError) Error() string { return "targeting: at least 2 waypoints are required" }

func (w *WaypointTargeting) requiredBrakingDistanceM(initialSpeedKph, finalSpeedKph float64) float64 {
	if finalSpeedKph >= initialSpeedKph {
		return 0.0
	}
	initialMps := initialSpeedKph / 3.6
	finalMps := finalSpeedKph / 3.6
	brakingAccelMps2 := -(w.profile.BrakingKphS / 3.6)
	return (finalMps*finalMps - initialMps*initialMps) / (2 * brakingAccelMps2)
}

func turnAngle(p1, p2, p3 Waypoint) float64 {
	bearingIn := geodesy.BearingDeg(p1.Lat, p1.Lon, p2.Lat, p2.Lon)
	bearingOut := geodesy.BearingDeg(p2.Lat, p2.Lon, p3.Lat, p3.Lon)
	turn := math.Abs(bearingOut - bearingIn)
	if turn > 180 {
		turn = 360 - turn
	}
	return turn
}

func apexSpeedForTurn(turnDeg float64, profile Profile) float64 {
	switch {
	case turnDeg <= 15.0:
		return profile.TopSpeedKph
	case turnDeg >= 45.0:
		return profile.MinCornerSpeedKph
	default:
		turnRatio := (turnDeg - 15.0) / (45.0 - 15.0)
		speedRange := profile.TopSpeedKph - profile.MinCornerSpeedKph
		return profile.TopSpeedKph - (turnRatio * speedRange)
	}
}

type cornerInfo struct {
	distanceToCornerM float64
	apexSpeedKph      float64
}

// dynamicSpeed runs the three-phase controller: look ahead over the next
// corners, find the nearest one that already requires braking, then
// accelerate or brake this tick toward that corner's apex speed.
func (w *WaypointTargeting) dynamicSpeed(durationSeconds float64) float64 {
	const lookAheadWaypoints = 20
	n := len(w.Waypoints)

	var path []cornerInfo
	cumulativeM := 0.0
	for i := 0; i < lookAheadWaypoints; i++ {
		p1Idx := (w.currentWaypointIndex + i) % n
		p2Idx := (w.currentWaypointIndex + i + 1) % n
		p3Idx := (w.currentWaypointIndex + i + 2) % n

		if !w.Loop && (w.currentWaypointIndex+i+1 >= n || w.currentWaypointIndex+i+2 >= n) {
			break
		}

		p1, p2, p3 := w.Waypoints[p1Idx], w.Waypoints[p2Idx], w.Waypoints[p3Idx]
		turn := turnAngle(p1, p2, p3)
		apexSpeed := apexSpeedForTurn(turn, w.profile)

		distP1P2Km := geodesy.DistanceKm(p1.Lat, p1.Lon, p2.Lat, p2.Lon)
		cumulativeM += distP1P2Km * 1000.0

		path = append(path, cornerInfo{distanceToCornerM: cumulativeM, apexSpeedKph: apexSpeed})
	}

	immediateTargetSpeedKph := w.profile.TopSpeedKph
	var critical *cornerInfo
	var criticalIdx int
	for i, info := range path {
		requiredDistance := w.requiredBrakingDistanceM(w.currentSpeedKph, info.apexSpeedKph)
		if requiredDistance >= info.distanceToCornerM {
			immediateTargetSpeedKph = info.apexSpeedKph
			c := info
			critical = &c
			criticalIdx = w.currentWaypointIndex + i + 1
			break
		}
	}

	speedDifference := immediateTargetSpeedKph - w.currentSpeedKph
	switch {
	case speedDifference > 0:
		speedChange := w.profile.AccelerationKphS * durationSeconds
		actual := math.Min(speedChange, speedDifference)
		w.currentSpeedKph += actual
		pct := (actual / (w.profile.AccelerationKphS * durationSeconds)) * 100
		if pct > 5 {
			reason := "No corners detected ahead"
			if critical != nil {
				reason = waypointReason(criticalIdx)
			}
			w.currentAction = &cornerAction{actionType: "ACCEL", percentage: pct, reason: reason}
		} else {
			w.currentAction = nil
		}
	case speedDifference < 0:
		speedChange := w.profile.BrakingKphS * durationSeconds
		actual := math.Min(speedChange, math.Abs(speedDifference))
		w.currentSpeedKph -= actual
		pct := (actual / (w.profile.BrakingKphS * durationSeconds)) * 100
		if pct > 5 {
			reason := "Speed limit enforcement"
			if critical != nil {
				reason = waypointBrakeReason(criticalIdx, critical.distanceToCornerM)
			}
			w.currentAction = &cornerAction{actionType: "BRAKE", percentage: pct, reason: reason}
		} else {
			w.currentAction = nil
		}
	default:
		w.currentAction = nil
	}

	w.currentSpeedKph = math.Max(w.profile.MinCornerSpeedKph, math.Min(w.profile.TopSpeedKph, w.currentSpeedKph))
	return w.currentSpeedKph
}

func waypointReason(idx int) string {
	return "Target waypoint " + strconv.Itoa(idx)
}

func waypointBrakeReason(idx int, distanceM float64) string {
	return "Corner WP" + strconv.Itoa(idx) + " at " + strconv.Itoa(int(distanceM)) + "m"
}

func (w *WaypointTargeting) NextPosition(lat, lon, heading, durationSeconds, _ float64) (float64, float64, float64, float64) {
	if !w.active || w.completed {
		return lat, lon, heading, 0.0
	}

	n := len(w.Waypoints)
	if w.currentWaypointIndex >= n {
		if w.Loop {
			w.currentWaypointIndex = 0
			w.lapsCompleted++
		} else {
			w.completed = true
			return lat, lon, heading, 0.0
		}
	}

	target := w.Waypoints[w.currentWaypointIndex]
	distanceToWaypointKm := geodesy.DistanceKm(lat, lon, target.Lat, target.Lon)

	if distanceToWaypointKm*1000.0 <= w.ArrivalThresholdMeters {
		w.currentWaypointIndex++
		if w.currentWaypointIndex >= n {
			if w.Loop {
				w.currentWaypointIndex = 0
				w.lapsCompleted++
				target = w.Waypoints[0]
			} else {
				w.completed = true
				return lat, lon, heading, 0.0
			}
		} else {
			target = w.Waypoints[w.currentWaypointIndex]
		}
		distanceToWaypointKm = geodesy.DistanceKm(lat, lon, target.Lat, target.Lon)
	}

	targetBearing := geodesy.BearingDeg(lat, lon, target.Lat, target.Lon)

	var effectiveSpeedKph float64
	if w.Mode == ModeDynamic {
		effectiveSpeedKph = w.dynamicSpeed(durationSeconds)
	} else {
		effectiveSpeedKph = w.SpeedKph
	}

	distanceThisStepKm := (effectiveSpeedKph / 3600.0) * durationSeconds
	if distanceThisStepKm > distanceToWaypointKm {
		distanceThisStepKm = distanceToWaypointKm
	}

	newLat, newLon := geodesy.Destination(lat, lon, targetBearing, distanceThisStepKm)
	w.addDistance(distanceThisStepKm)

	return newLat, newLon, targetBearing, effectiveSpeedKph
}

func (w *WaypointTargeting) IsComplete() bool { return w.completed }

func (w *WaypointTargeting) Reset() {
	w.currentWaypointIndex = 0
	w.lapsCompleted = 0
	w.completed = false
	w.distanceTraveled = 0.0
	w.totalRouteDistanceKm = nil
	if w.Mode == ModeDynamic {
		w.currentSpeedKph = 0.0
	}
}

func (w *WaypointTargeting) Progress() float64 {
	if len(w.Waypoints) == 0 {
		return 0.0
	}
	return float64(w.currentWaypointIndex) / float64(len(w.Waypoints))
}

func (w *WaypointTargeting) Status() map[string]any {
	var currentTarget *Waypoint
	if w.currentWaypointIndex < len(w.Waypoints) && !w.completed {
		t := w.Waypoints[w.currentWaypointIndex]
		currentTarget = &t
	}

	status := map[string]any{
		"type":                  "waypoint",
		"active":                w.active,
		"total_waypoints":       len(w.Waypoints),
		"current_waypoint_index": w.currentWaypointIndex,
		"current_target":        currentTarget,
		"mode":                  w.Mode,
		"loop":                  w.Loop,
		"laps_completed":        w.lapsCompleted,
		"completed":             w.completed,
		"distance_traveled_km":  w.distanceTraveled,
		"current_lap_progress":  w.Progress(),
	}

	if w.Mode == ModeDynamic {
		status["speed_profile"] = w.SpeedProfileName
		status["current_speed_kph"] = w.currentSpeedKph
		status["top_speed_kph"] = w.profile.TopSpeedKph
		status["min_corner_speed_kph"] = w.profile.MinCornerSpeedKph
		status["acceleration_kph_s"] = w.profile.AccelerationKphS
		status["braking_kph_s"] = w.profile.BrakingKphS
	} else {
		status["speed_kph"] = w.SpeedKph
	}

	return status
}

// LapsCompleted returns the number of full route loops driven so far.
func (w *WaypointTargeting) LapsCompleted() int { return w.lapsCompleted }

// CurrentTargetWaypoint returns the waypoint currently being driven
// toward, or false if the route has completed.
func (w *WaypointTargeting) CurrentTargetWaypoint() (Waypoint, bool) {
	if w.currentWaypointIndex < len(w.Waypoints) && !w.completed {
		return w.Waypoints[w.currentWaypointIndex], true
	}
	return Waypoint{}, false
}

// AddWaypoint inserts a waypoint at index, or appends it when index is
// nil.
func (w *WaypointTargeting) AddWaypoint(lat, lon float64, index *int) {
	wp := Waypoint{Lat: lat, Lon: lon}
	if index == nil {
		w.Waypoints = append(w.Waypoints, wp)
		w.totalRouteDistanceKm = nil
		return
	}
	i := *index
	w.Waypoints = append(w.Waypoints[:i:i], append([]Waypoint{wp}, w.Waypoints[i:]...)...)
	w.totalRouteDistanceKm = nil
}

// RemoveWaypoint drops the waypoint at index, refusing to shrink the
// route below two waypoints, and steps the current-waypoint cursor back
// if the removal was at or before it.
func (w *WaypointTargeting) RemoveWaypoint(index int) {
	if index < 0 || index >= len(w.Waypoints) || len(w.Waypoints) <= 2 {
		return
	}
	w.Waypoints = append(w.Waypoints[:index], w.Waypoints[index+1:]...)
	w.totalRouteDistanceKm = nil
	if w.currentWaypointIndex >= index {
		if w.currentWaypointIndex > 0 {
			w.currentWaypointIndex--
		}
	}
}

// RouteDistanceKm returns the total length of the route, including the
// closing leg back to the first waypoint when Loop is set. The result is
// memoized until the waypoint list changes.
func (w *WaypointTargeting) RouteDistanceKm() float64 {
	if w.totalRouteDistanceKm != nil {
		return *w.totalRouteDistanceKm
	}
	total := 0.0
	for i := 0; i < len(w.Waypoints)-1; i++ {
		total += geodesy.DistanceKm(w.Waypoints[i].Lat, w.Waypoints[i].Lon, w.Waypoints[i+1].Lat, w.Waypoints[i+1].Lon)
	}
	if w.Loop {
		last := w.Waypoints[len(w.Waypoints)-1]
		first := w.Waypoints[0]
		total += geodesy.DistanceKm(last.Lat, last.Lon, first.Lat, first.Lon)
	}
	w.totalRouteDistanceKm = &total
	return total
}

// CurrentAction reports the in-progress acceleration or braking event,
// for status display, or nil when neither is significantly active.
func (w *WaypointTargeting) CurrentAction() (actionType string, percentage float64, reason string, ok bool) {
	if w.currentAction == nil {
		return "", 0, "", false
	}
	return w.currentAction.actionType, w.currentAction.percentage, w.currentAction.reason, true
}
