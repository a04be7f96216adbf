// Package driver implements the real-time worker loop that ticks one or
// more receivers at a fixed cadence, emits their sentence batches to a
// sink, and exposes a thread-safe pull-based stream of what was sent.
//
// Concurrency follows a strict two-lock discipline: a state lock guards
// receiver mutation, strategy installation and sentence generation; a
// separate stream lock guards the pull buffer and the optional log
// file. Both are acquired state-then-stream whenever both are needed,
// and neither is ever held across a sink write.
package driver

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bramburn/nmeasim/internal/receiver"
	"github.com/bramburn/nmeasim/internal/targeting"
	"github.com/sirupsen/logrus"
)

// BufferedSentence is one entry in the stream buffer: a wall-clock
// timestamp and the sentence text as emitted.
type BufferedSentence struct {
	Timestamp string
	Sentence  string
}

// state enumerates the driver's lifecycle, per the Idle/Running/Stopping
// variants of the worker contract.
type state int

const (
	stateIdle state = iota
	stateRunning
	stateStopping
)

// Driver owns a primary receiver and any number of secondary receivers
// (for example a GLONASS constellation alongside a primary GPS fix), the
// currently-installed targeting strategy, and the sink/log-file the
// worker writes to.
type Driver struct {
	stateMu sync.Mutex
	// primary is the receiver the installed strategy actually drives;
	// secondary receivers mirror its position/heading/speed each tick
	// without running the strategy a second time.
	primary    *receiver.Receiver
	secondary  []*receiver.Receiver
	strategy   targeting.Strategy
	interval   time.Duration
	step       time.Duration
	stepEqualsInterval bool
	delimiter  string

	runState state
	stopCh    chan struct{}
	doneCh    chan struct{}

	streamMu sync.Mutex
	stream   []BufferedSentence

	logFile     *os.File
	logFilePath string

	logger logrus.FieldLogger
}

// New constructs a Driver around a primary receiver and zero or more
// secondary receivers, all owned exclusively by the Driver from this
// point on. interval and step default to one second when zero;
// step == interval triggers the "advance by actual elapsed time" mode.
func New(primary *receiver.Receiver, secondary []*receiver.Receiver, interval, step time.Duration, logger logrus.FieldLogger) *Driver {
	if interval == 0 {
		interval = time.Second
	}
	if step == 0 {
		step = time.Second
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	staticStrategy := targeting.NewStatic()
	primary.Strategy = staticStrategy
	return &Driver{
		primary:            primary,
		secondary:          secondary,
		strategy:           staticStrategy,
		interval:           interval,
		step:               step,
		stepEqualsInterval: step == interval,
		delimiter:          "\r\n",
		runState:           stateIdle,
		logger:             logger,
	}
}

// SetTargeting atomically installs a new strategy, under the state lock.
func (d *Driver) SetTargeting(s targeting.Strategy) {
	d.stateMu.Lock()
	defer d.stateMu.Unlock()
	d.strategy = s
	d.primary.Strategy = s
}

// ClearTargeting installs the Static strategy, under the state lock.
func (d *Driver) ClearTargeting() {
	d.SetTargeting(targeting.NewStatic())
}

// SetTarget is a convenience wrapper over SetTargeting matching the
// original tool's simplest use case: point the primary receiver at a
// single (lat, lon), cruising at its current speed, or 50 km/h if it is
// currently stationary.
func (d *Driver) SetTarget(lat, lon float64) {
	speed := d.primary.SpeedKph
	if speed <= 0 {
		speed = 50.0
	}
	d.SetTargeting(targeting.NewLinear(lat, lon, speed, true, 10.0))
}

// GetTargetingStatus returns a snapshot of the installed strategy's
// status, at minimum {type, active}.
func (d *Driver) GetTargetingStatus() map[string]any {
	d.stateMu.Lock()
	defer d.stateMu.Unlock()
	return d.strategy.Status()
}

// IsRunning reports whether the worker loop is currently active.
func (d *Driver) IsRunning() bool {
	d.stateMu.Lock()
	defer d.stateMu.Unlock()
	return d.runState == stateRunning
}

// Serve starts the worker loop writing to sink. It first calls Kill to
// ensure at most one worker runs at a time. If blocking is true, Serve
// does not return until Kill is called from another goroutine.
func (d *Driver) Serve(sink io.Writer, blocking bool) {
	d.Kill()

	d.stateMu.Lock()
	d.runState = stateRunning
	d.stopCh = make(chan struct{})
	d.doneCh = make(chan struct{})
	d.stateMu.Unlock()

	go d.run(sink)

	if blocking {
		<-d.doneCh
	}
}

// Kill requests the worker stop and waits for it to exit. It is a no-op
// if no worker is running.
func (d *Driver) Kill() {
	d.stateMu.Lock()
	if d.runState != stateRunning {
		d.stateMu.Unlock()
		return
	}
	d.runState = stateStopping
	stopCh := d.stopCh
	doneCh := d.doneCh
	d.stateMu.Unlock()

	close(stopCh)
	<-doneCh
}

// run is the worker loop body: record start, gather+buffer+write a
// sentence batch, sleep in bounded chunks, then advance the receivers.
func (d *Driver) run(sink io.Writer) {
	defer func() {
		d.stateMu.Lock()
		d.runState = stateIdle
		d.stateMu.Unlock()
		close(d.doneCh)
	}()

	for {
		start := time.Now()

		sentences := d.gatherAndBuffer()
		if err := d.writeToSink(sink, sentences); err != nil {
			d.logger.WithError(err).Warn("sink write failed")
		}

		if d.sleepInChunks(start) {
			return
		}

		elapsed := time.Since(start)
		d.advance(elapsed)
	}
}

// gatherAndBuffer takes the state lock to collect the current sentence
// batch, then the stream lock to append it (and the log file, if open)
// before releasing both. The sink write itself happens after this
// returns, with neither lock held.
func (d *Driver) gatherAndBuffer() []string {
	d.stateMu.Lock()
	sentences := append([]string{}, d.primary.GetOutput()...)
	for _, r := range d.secondary {
		sentences = append(sentences, r.GetOutput()...)
	}
	d.stateMu.Unlock()

	d.streamMu.Lock()
	ts := time.Now().Format("15:04:05.000")
	for _, s := range sentences {
		d.stream = append(d.stream, BufferedSentence{Timestamp: ts, Sentence: s})
		if d.logFile != nil {
			line := strings.TrimRight(s, "\r\n") + "\n"
			if _, err := d.logFile.WriteString(line); err != nil {
				d.logger.WithError(err).Warn("log file write failed")
			}
		}
	}
	d.streamMu.Unlock()

	return sentences
}

// writeToSink writes each sentence terminated by the driver's configured
// delimiter (default "\r\n", matching the NMEA-0183 terminator already
// baked into each sentence by nmea.Build).
func (d *Driver) writeToSink(sink io.Writer, sentences []string) error {
	for _, s := range sentences {
		line := strings.TrimRight(s, "\r\n") + d.delimiter
		if _, err := io.WriteString(sink, line); err != nil {
			return fmt.Errorf("write sentence: %w", err)
		}
	}
	return nil
}

// SetDelimiter overrides the separator written between sentences on the
// sink; the NMEA-0183 default is "\r\n".
func (d *Driver) SetDelimiter(delimiter string) {
	d.stateMu.Lock()
	defer d.stateMu.Unlock()
	d.delimiter = delimiter
}

// sleepInChunks blocks until interval has elapsed since start, polling
// the stop signal every 100ms so Kill is bounded to roughly that
// granularity. It returns true if a stop was observed.
func (d *Driver) sleepInChunks(start time.Time) bool {
	const chunk = 100 * time.Millisecond
	for {
		elapsed := time.Since(start)
		if elapsed >= d.interval {
			return false
		}
		remaining := d.interval - elapsed
		wait := chunk
		if remaining < wait {
			wait = remaining
		}
		select {
		case <-d.stopCh:
			return true
		case <-time.After(wait):
		}
	}
}

// advance steps the primary receiver by either the configured step or
// the actual elapsed wall time (when step == interval), then mirrors its
// resulting position/heading/speed onto every secondary receiver before
// stepping them too, so the strategy's internal state is advanced
// exactly once per tick regardless of receiver count.
func (d *Driver) advance(elapsed time.Duration) {
	d.stateMu.Lock()
	defer d.stateMu.Unlock()

	dt := d.step
	if d.stepEqualsInterval {
		dt = elapsed
	}

	d.primary.Step(dt)
	for _, r := range d.secondary {
		r.StepMirrored(dt, d.primary.Lat, d.primary.Lon, d.primary.HeadingDeg, d.primary.SpeedKph)
	}
}

// DrainStream returns and clears the buffered (timestamp, sentence)
// pairs, under the stream lock.
func (d *Driver) DrainStream() []BufferedSentence {
	d.streamMu.Lock()
	defer d.streamMu.Unlock()
	out := d.stream
	d.stream = nil
	return out
}

// Generate runs synchronously, without a worker goroutine, advancing by
// step each iteration and writing sentences to sink, for duration of
// simulated time.
func (d *Driver) Generate(duration time.Duration, sink io.Writer) error {
	ticks := int(duration / d.step)
	for i := 0; i < ticks; i++ {
		sentences := d.gatherAndBuffer()
		if err := d.writeToSink(sink, sentences); err != nil {
			return err
		}
		d.advance(d.step)
	}
	return nil
}

// OutputLatest writes a single sentence batch for the current instant,
// without advancing any receiver.
func (d *Driver) OutputLatest(sink io.Writer) error {
	sentences := d.gatherAndBuffer()
	return d.writeToSink(sink, sentences)
}

// StartAutoLogging opens path (or the default
// logs/nmea_log_YYYYMMDD_HHMMSS.nmea path when empty) for line-buffered
// append, creating the logs/ directory if needed.
func (d *Driver) StartAutoLogging(path string) error {
	d.streamMu.Lock()
	defer d.streamMu.Unlock()

	if path == "" {
		path = filepath.Join("logs", fmt.Sprintf("nmea_log_%s.nmea", time.Now().Format("20060102_150405")))
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create log directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}

	d.logFile = f
	d.logFilePath = path
	return nil
}

// StopAutoLogging closes the log file, if one is open.
func (d *Driver) StopAutoLogging() error {
	d.streamMu.Lock()
	defer d.streamMu.Unlock()

	if d.logFile == nil {
		return nil
	}
	err := d.logFile.Close()
	d.logFile = nil
	d.logFilePath = ""
	return err
}

// GetLogFilename returns the path of the currently-open log file, or ""
// if auto-logging is not active.
func (d *Driver) GetLogFilename() string {
	d.streamMu.Lock()
	defer d.streamMu.Unlock()
	return d.logFilePath
}
