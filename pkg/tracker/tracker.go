// Package tracker locates a requested flight in OpenSky snapshots, derives
// route and progress information the feed does not carry, falls back to a
// simulated status when no live data exists, and runs the periodic tracking
// loop that publishes the result.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/unklstewy/skytrack/pkg/opensky"
)

// FlightSource produces a status for a flight. *Repository implements it.
type FlightSource interface {
	FlightInfo(ctx context.Context, flightID string) Result
}

// Recorder persists published results. Failures are logged, never fatal.
type Recorder interface {
	Record(ctx context.Context, flightID string, res Result) error
}

// Config controls the tracking cadence.
type Config struct {
	// UpdateInterval is the wait between successful cycles (default: 60s)
	UpdateInterval time.Duration

	// ErrorBackoff is the wait after a failed cycle (default: 5s)
	ErrorBackoff time.Duration
}

// DefaultConfig returns the standard cadence.
func DefaultConfig() Config {
	return Config{
		UpdateInterval: 60 * time.Second,
		ErrorBackoff:   5 * time.Second,
	}
}

// Tracker runs at most one tracking session at a time.
//
// States: idle until Start, running until Stop or Close. Start on a running
// tracker stops the current session first. Stop cancels the session and
// waits for its goroutine to exit, so nothing from that session is
// published after Stop returns.
type Tracker struct {
	source   FlightSource
	sink     *Latest
	recorder Recorder
	cfg      Config
	now      func() time.Time

	mu       sync.Mutex
	flightID string
	cancel   context.CancelFunc
	done     chan struct{}
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithRecorder stores every successful result.
func WithRecorder(r Recorder) Option {
	return func(t *Tracker) { t.recorder = r }
}

// WithNow sets the clock used to stamp published states.
func WithNow(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// New creates an idle tracker publishing to sink. Zero durations in cfg
// take the DefaultConfig values.
func New(source FlightSource, sink *Latest, cfg Config, opts ...Option) *Tracker {
	def := DefaultConfig()
	if cfg.UpdateInterval <= 0 {
		cfg.UpdateInterval = def.UpdateInterval
	}
	if cfg.ErrorBackoff <= 0 {
		cfg.ErrorBackoff = def.ErrorBackoff
	}

	t := &Tracker{
		source: source,
		sink:   sink,
		cfg:    cfg,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Start begins tracking flightID, replacing any current session.
func (t *Tracker) Start(flightID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopLocked()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	t.flightID = flightID
	t.cancel = cancel
	t.done = done

	go t.run(ctx, flightID, done)
}

// Stop ends the current session, if any, and waits for it to finish.
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
}

// Close stops tracking. It is the owner's teardown hook.
func (t *Tracker) Close() error {
	t.Stop()
	return nil
}

// Running reports the flight being tracked, if any.
func (t *Tracker) Running() (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.flightID, t.cancel != nil
}

func (t *Tracker) stopLocked() {
	if t.cancel == nil {
		return
	}
	t.cancel()
	<-t.done
	log.Printf("Stopped tracking %s", t.flightID)

	t.cancel = nil
	t.done = nil
	t.flightID = ""
}

func (t *Tracker) run(ctx context.Context, flightID string, done chan struct{}) {
	defer close(done)

	log.Printf("Tracking %s (update every %v)", flightID, t.cfg.UpdateInterval)

	first := true
	for {
		wait := t.cfg.UpdateInterval
		if err := t.cycle(ctx, flightID, first); err != nil {
			log.Printf("Tracking cycle for %s failed: %v (retry in %v)", flightID, err, t.cfg.ErrorBackoff)
			t.publish(ctx, State{
				Kind:     KindError,
				FlightID: flightID,
				Message:  fmt.Sprintf("Tracking error: %v. Will retry...", err),
				At:       t.now(),
			})
			wait = t.cfg.ErrorBackoff
		}
		first = false

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// cycle performs one fetch-and-publish. A panic anywhere below is turned
// into an error so the loop keeps going.
func (t *Tracker) cycle(ctx context.Context, flightID string, first bool) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	if first {
		t.publish(ctx, State{Kind: KindLoading, FlightID: flightID, At: t.now()})
	}

	res := t.source.FlightInfo(ctx, flightID)
	if ctx.Err() != nil {
		return nil
	}

	status := res.Status
	state := State{
		Kind:      KindSuccess,
		FlightID:  flightID,
		Flight:    &status,
		Simulated: res.Simulated,
		At:        t.now(),
	}
	if res.Simulated {
		state.Message = SimulatedMessage(res.Reason)
	}
	t.publish(ctx, state)

	if t.recorder != nil {
		if err := t.recorder.Record(ctx, flightID, res); err != nil {
			log.Printf("Failed to record status for %s: %v", flightID, err)
		}
	}
	return nil
}

// publish drops states from a cancelled session.
func (t *Tracker) publish(ctx context.Context, s State) {
	if ctx.Err() != nil {
		return
	}
	t.sink.Publish(s)
}

// SimulatedMessage explains to the user why a status is simulated.
func SimulatedMessage(reason error) string {
	const suffix = "showing simulated data"

	if reason == nil || errors.Is(reason, ErrNoMatch) {
		return "Flight not found in live feed; " + suffix
	}
	if _, ok := opensky.IsRateLimitError(reason); ok {
		return "Live feed rate limit reached; " + suffix
	}

	var fe *opensky.FetchError
	if errors.As(reason, &fe) {
		switch fe.Kind {
		case opensky.KindNetwork:
			return "Connection error, check your internet connection; " + suffix
		case opensky.KindStatus:
			return fmt.Sprintf("Network error (HTTP %d); %s", fe.StatusCode, suffix)
		case opensky.KindAuth:
			return "Feed authentication failed; " + suffix
		case opensky.KindDecode:
			return "Feed returned unreadable data; " + suffix
		}
	}
	return "Live feed unavailable; " + suffix
}
