// Package receiver models a single simulated GNSS receiver: its fix
// state, satellite table, and kinematics, and turns that state into the
// NMEA-0183 sentence batch for the current instant.
package receiver

import (
	"math"
	"math/rand"
	"time"

	"github.com/bramburn/nmeasim/internal/geodesy"
	"github.com/bramburn/nmeasim/internal/nmea"
	"github.com/bramburn/nmeasim/internal/targeting"
)

// SentenceID names one of the seven sentence types this package emits.
type SentenceID string

const (
	GGA SentenceID = "GGA"
	GLL SentenceID = "GLL"
	GSA SentenceID = "GSA"
	GSV SentenceID = "GSV"
	RMC SentenceID = "RMC"
	VTG SentenceID = "VTG"
	ZDA SentenceID = "ZDA"
)

// DefaultSentenceOrder is the stable emission order required by the
// sentence generator: GGA, GLL, GSA, GSV, RMC, VTG, ZDA.
var DefaultSentenceOrder = []SentenceID{GGA, GLL, GSA, GSV, RMC, VTG, ZDA}

// Satellite is one entry in a receiver's satellites-in-view table.
type Satellite struct {
	PRN       int
	SNR       float64
	Elevation float64
	Azimuth   float64
}

// Receiver is a single simulated GNSS receiver: GPS, GLONASS, or any
// other constellation distinguished only by its talker ID prefix.
type Receiver struct {
	TalkerID string

	Lat, Lon   float64
	AltitudeM  float64
	HeadingDeg float64
	SpeedKph   float64

	DateTime time.Time
	HasFix   bool
	HasRTC   bool
	FixMode  nmea.FixMode
	Quality  nmea.FixQuality

	HDOP, VDOP, PDOP float64

	Satellites     []Satellite
	SatellitesUsed []int

	Enabled map[SentenceID]bool

	// HeadingVariationDeg is the amplitude, in degrees, of the uniform
	// heading jitter applied each tick (default 45, per the external
	// configuration knob of the same name).
	HeadingVariationDeg float64

	Strategy targeting.Strategy

	rng *rand.Rand
}

// New constructs a Receiver at (lat, lon) with the given talker ID
// ("GP" for GPS, "GL" for GLONASS, ...), all seven sentence types
// enabled, no fix, and the default heading-jitter amplitude of 45
// degrees. randSource seeds the heading-jitter generator; pass nil to
// use a time-seeded source.
func New(talkerID string, lat, lon float64, randSource rand.Source) *Receiver {
	if randSource == nil {
		randSource = rand.NewSource(time.Now().UnixNano())
	}
	enabled := make(map[SentenceID]bool, len(DefaultSentenceOrder))
	for _, id := range DefaultSentenceOrder {
		enabled[id] = true
	}
	return &Receiver{
		TalkerID:            talkerID,
		Lat:                 lat,
		Lon:                 lon,
		DateTime:            time.Now().UTC(),
		FixMode:             nmea.FixModeNone,
		Quality:             nmea.FixNone,
		Enabled:             enabled,
		HeadingVariationDeg: 45.0,
		rng:                 rand.New(randSource),
	}
}

// SetFix flips whether the receiver currently reports a fix, and its
// reported fix mode/quality.
func (r *Receiver) SetFix(hasFix bool, mode nmea.FixMode, quality nmea.FixQuality) {
	r.HasFix = hasFix
	r.FixMode = mode
	r.Quality = quality
}

// Step advances the receiver's state by dt, per the four-step state
// machine: conditional time advance, satellite perturbation, strategy
// application with heading jitter, or a bare jitter-and-coast move when
// no strategy is installed.
func (r *Receiver) Step(dt time.Duration) {
	dtSeconds := dt.Seconds()

	if r.HasFix || r.HasRTC {
		r.DateTime = r.DateTime.Add(dt)
	}

	r.perturbSatellites()

	switch {
	case r.HasFix && r.Strategy != nil && r.Strategy.IsActive():
		lat, lon, heading, speed := r.Strategy.NextPosition(r.Lat, r.Lon, r.HeadingDeg, dtSeconds, r.SpeedKph)
		r.Lat, r.Lon, r.HeadingDeg, r.SpeedKph = lat, lon, heading, speed
		r.applyHeadingJitter()
	case r.HasFix && r.HeadingVariationDeg > 0:
		r.applyHeadingJitter()
		r.coastStraight(dtSeconds)
	}
}

// StepMirrored advances time and satellite perturbation exactly like
// Step, but takes its position/heading/speed verbatim from a driving
// receiver instead of running its own strategy or jitter-and-coast
// motion. It is how the driver keeps secondary receivers (for example a
// GLONASS constellation riding alongside a primary GPS fix) in lockstep
// with the primary without advancing a shared Strategy a second time or
// layering independent heading jitter on top of the mirrored heading.
func (r *Receiver) StepMirrored(dt time.Duration, lat, lon, heading, speed float64) {
	if r.HasFix || r.HasRTC {
		r.DateTime = r.DateTime.Add(dt)
	}
	r.perturbSatellites()
	r.Lat, r.Lon, r.HeadingDeg, r.SpeedKph = lat, lon, heading, speed
}

// perturbSatellites applies the stylised, non-physical jitter the
// simulator imposes on every tracked satellite: a sinusoid of the
// receiver's seconds-of-minute, shared across SNR, elevation and
// azimuth.
func (r *Receiver) perturbSatellites() {
	p := math.Sin(float64(r.DateTime.Second())*math.Pi/30.0) / 2.0
	for i := range r.Satellites {
		r.Satellites[i].SNR += p
		r.Satellites[i].Elevation += p
		r.Satellites[i].Azimuth += p
	}
}

func (r *Receiver) applyHeadingJitter() {
	jitter := (r.rng.Float64() - 0.5) * r.HeadingVariationDeg
	r.HeadingDeg = math.Mod(r.HeadingDeg+jitter+360.0, 360.0)
}

// coastStraight moves the receiver dt seconds along its current heading
// at its current speed, used when no targeting strategy is installed
// but the receiver still reports a fix.
func (r *Receiver) coastStraight(dtSeconds float64) {
	distanceKm := (r.SpeedKph / 3600.0) * dtSeconds
	if distanceKm == 0 {
		return
	}
	r.Lat, r.Lon = geodesy.Destination(r.Lat, r.Lon, r.HeadingDeg, distanceKm)
}

// snapshot converts the receiver's current state into the plain value
// the nmea package's sentence builders consume.
func (r *Receiver) snapshot() nmea.FixSnapshot {
	views := make([]nmea.SatelliteView, len(r.Satellites))
	for i, s := range r.Satellites {
		views[i] = nmea.SatelliteView{PRN: s.PRN, Elevation: s.Elevation, Azimuth: s.Azimuth, SNR: s.SNR}
	}

	hundredths := r.DateTime.Nanosecond() / 10000000

	return nmea.FixSnapshot{
		TalkerID:       r.TalkerID,
		Hour:           r.DateTime.Hour(),
		Minute:         r.DateTime.Minute(),
		Second:         r.DateTime.Second(),
		Hundredths:     hundredths,
		Day:            r.DateTime.Day(),
		Month:          int(r.DateTime.Month()),
		Year:           r.DateTime.Year(),
		Lat:            r.Lat,
		Lon:            r.Lon,
		HasFix:         r.HasFix,
		FixMode:        r.FixMode,
		Quality:        r.Quality,
		SpeedKph:       r.SpeedKph,
		HeadingDeg:     r.HeadingDeg,
		AltitudeM:      r.AltitudeM,
		HDOP:           r.HDOP,
		VDOP:           r.VDOP,
		PDOP:           r.PDOP,
		SatellitesUsed: r.SatellitesUsed,
		SatellitesView: views,
	}
}

// GetOutput returns the enabled sentence batch for the current instant,
// in the stable GGA/GLL/GSA/GSV/RMC/VTG/ZDA order, without advancing any
// state.
func (r *Receiver) GetOutput() []string {
	snap := r.snapshot()
	var out []string

	for _, id := range DefaultSentenceOrder {
		if !r.Enabled[id] {
			continue
		}
		switch id {
		case GGA:
			out = append(out, nmea.BuildGGA(snap))
		case GLL:
			out = append(out, nmea.BuildGLL(snap))
		case GSA:
			out = append(out, nmea.BuildGSA(snap))
		case GSV:
			out = append(out, nmea.BuildGSV(snap)...)
		case RMC:
			out = append(out, nmea.BuildRMC(snap))
		case VTG:
			out = append(out, nmea.BuildVTG(snap))
		case ZDA:
			out = append(out, nmea.BuildZDA(snap))
		}
	}
	return out
}
