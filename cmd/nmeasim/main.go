package main

import (
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/bramburn/nmeasim/internal/driver"
	"github.com/bramburn/nmeasim/internal/nmea"
	"github.com/bramburn/nmeasim/internal/receiver"
	"github.com/bramburn/nmeasim/internal/relay"
	"github.com/bramburn/nmeasim/internal/sink"
	"github.com/bramburn/nmeasim/internal/targeting"
	"github.com/sirupsen/logrus"
)

func main() {
	lat := flag.Float64("lat", 51.5074, "starting latitude")
	lon := flag.Float64("lon", -0.1278, "starting longitude")
	talker := flag.String("talker", "GP", "NMEA talker ID for the primary receiver")

	strategyName := flag.String("strategy", "static", "targeting strategy: static, linear, circular, waypoint")
	targetLat := flag.Float64("target-lat", 0, "linear target latitude, or circular centre latitude")
	targetLon := flag.Float64("target-lon", 0, "linear target longitude, or circular centre longitude")
	speed := flag.Float64("speed", 50, "cruise speed in km/h for linear and manual waypoint strategies")
	radiusMeters := flag.Float64("radius-m", 1000.0, "circular strategy radius in meters")
	angularVelocity := flag.Float64("angular-velocity", 6.0, "circular strategy angular velocity in degrees per second")
	clockwise := flag.Bool("clockwise", true, "circular strategy direction")
	startAngle := flag.Float64("start-angle", 0, "circular strategy starting angle in degrees")
	arrivalThreshold := flag.Float64("arrival-threshold-m", 10.0, "linear/waypoint arrival threshold in meters")
	loop := flag.Bool("loop", true, "waypoint strategy loops back to the first waypoint")
	profile := flag.String("profile", "", "waypoint dynamic speed profile: F1, Go-Kart, Bicycle (empty selects manual speed)")
	waypoints := flag.String("waypoints", "", "comma-separated lat:lon pairs for the waypoint strategy, at least two required")

	interval := flag.Duration("interval", time.Second, "wall-clock delay between ticks")
	step := flag.Duration("step", time.Second, "simulated time advanced per tick")
	headingVariation := flag.Float64("heading-variation", 45.0, "degrees of heading jitter applied per tick")
	enable := flag.String("enable", "GGA,GLL,GSA,GSV,RMC,VTG,ZDA", "comma-separated sentence identifiers to emit")

	serialPath := flag.String("serial", "", "serial port path (port:baud:databits:parity:stopbits) to write to instead of stdout")
	logPath := flag.String("log", "", "start auto-logging to this file immediately (default logs/nmea_log_<timestamp>.nmea when set to \"auto\")")
	relayAddr := flag.String("relay-addr", "", "also serve the sentence stream over HTTP at this address, e.g. :8080")

	duration := flag.Duration("duration", 0, "run for this long then exit; 0 runs until interrupted")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	logger := logrus.New()
	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		logger.Fatalf("invalid log level: %v", err)
	}
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	r := receiver.New(*talker, *lat, *lon, rand.NewSource(time.Now().UnixNano()))
	r.HeadingVariationDeg = *headingVariation
	r.SetFix(true, nmea.FixMode3D, nmea.FixGPS)
	r.Enabled = parseEnabledSet(*enable)

	d := driver.New(r, nil, *interval, *step, logger)
	opts := strategyOptions{
		targetLat:        *targetLat,
		targetLon:        *targetLon,
		speedKph:         *speed,
		radiusMeters:     *radiusMeters,
		angularVelocity:  *angularVelocity,
		clockwise:        *clockwise,
		startAngle:       *startAngle,
		arrivalThreshold: *arrivalThreshold,
		loop:             *loop,
		profile:          *profile,
		waypointsCSV:     *waypoints,
	}
	if err := installStrategy(d, *strategyName, opts); err != nil {
		logger.Fatalf("configuring targeting strategy: %v", err)
	}

	var sinkWriter io.Writer = os.Stdout
	if *serialPath != "" {
		port, err := sink.OpenSerial(*serialPath)
		if err != nil {
			logger.Fatalf("opening serial sink: %v", err)
		}
		defer port.Close()
		sinkWriter = port
	}

	if *logPath != "" {
		path := *logPath
		if path == "auto" {
			path = ""
		}
		if err := d.StartAutoLogging(path); err != nil {
			logger.Fatalf("starting auto-logging: %v", err)
		}
		logger.WithField("file", d.GetLogFilename()).Info("auto-logging started")
		defer d.StopAutoLogging()
	}

	var rl *relay.Relay
	if *relayAddr != "" {
		rl = relay.New(*relayAddr, logger)
		go func() {
			if err := rl.ListenAndServe(); err != nil {
				logger.WithError(err).Warn("relay server stopped")
			}
		}()
		sinkWriter = io.MultiWriter(sinkWriter, relayWriter{rl})
		logger.WithField("addr", *relayAddr).Info("relay stream listening")
	}

	d.Serve(sinkWriter, false)
	logger.Info("simulator running, press Ctrl+C to stop")

	if *duration > 0 {
		timer := time.NewTimer(*duration)
		defer timer.Stop()
		<-timer.C
	} else {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
	}

	logger.Info("shutting down")
	d.Kill()
	if rl != nil {
		rl.Close()
	}
}

// relayWriter adapts Relay.Publish to io.Writer so it can be combined
// with the primary sink via io.MultiWriter.
type relayWriter struct {
	rl *relay.Relay
}

func (w relayWriter) Write(p []byte) (int, error) {
	data := make([]byte, len(p))
	copy(data, p)
	w.rl.Publish(data)
	return len(p), nil
}

func parseEnabledSet(csv string) map[receiver.SentenceID]bool {
	out := make(map[receiver.SentenceID]bool)
	for _, part := range strings.Split(csv, ",") {
		part = strings.ToUpper(strings.TrimSpace(part))
		if part != "" {
			out[receiver.SentenceID(part)] = true
		}
	}
	return out
}

// strategyOptions bundles the flags relevant to whichever strategy the
// user selected with -strategy; only the fields that strategy reads are
// meaningful.
type strategyOptions struct {
	targetLat, targetLon float64
	speedKph             float64
	radiusMeters         float64
	angularVelocity      float64
	clockwise            bool
	startAngle           float64
	arrivalThreshold     float64
	loop                 bool
	profile              string
	waypointsCSV         string
}

func installStrategy(d *driver.Driver, name string, o strategyOptions) error {
	switch strings.ToLower(name) {
	case "", "static":
		d.ClearTargeting()
		return nil
	case "linear":
		d.SetTargeting(targeting.NewLinear(o.targetLat, o.targetLon, o.speedKph, true, o.arrivalThreshold))
		return nil
	case "circular":
		d.SetTargeting(targeting.NewCircular(o.targetLat, o.targetLon, o.radiusMeters, o.angularVelocity, o.clockwise, o.startAngle))
		return nil
	case "waypoint":
		points, err := parseWaypoints(o.waypointsCSV)
		if err != nil {
			return err
		}
		if o.profile != "" {
			strat, err := targeting.NewWaypointDynamic(points, o.profile, o.loop, o.arrivalThreshold)
			if err != nil {
				return err
			}
			d.SetTargeting(strat)
			return nil
		}
		strat, err := targeting.NewWaypointManual(points, o.speedKph, o.loop, o.arrivalThreshold)
		if err != nil {
			return err
		}
		d.SetTargeting(strat)
		return nil
	default:
		return &configError{msg: "unknown targeting strategy: " + name}
	}
}

type configError struct{ msg string }

func (e *configError) Error() string { return e.msg }

func parseWaypoints(csv string) ([]targeting.Waypoint, error) {
	csv = strings.TrimSpace(csv)
	if csv == "" {
		return nil, &configError{msg: "waypoint strategy requires -waypoints=lat:lon,lat:lon,..."}
	}
	var points []targeting.Waypoint
	for _, pair := range strings.Split(csv, ",") {
		latLon := strings.SplitN(strings.TrimSpace(pair), ":", 2)
		if len(latLon) != 2 {
			return nil, &configError{msg: "malformed waypoint pair " + pair}
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(latLon[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("waypoint latitude %q: %w", latLon[0], err)
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(latLon[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("waypoint longitude %q: %w", latLon[1], err)
		}
		points = append(points, targeting.Waypoint{Lat: lat, Lon: lon})
	}
	return points, nil
}
