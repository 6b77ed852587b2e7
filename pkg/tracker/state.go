package tracker

import (
	"sync"
	"time"

	"github.com/unklstewy/skytrack/pkg/flight"
)

// Kind is the variant of a published State.
type Kind int

const (
	KindInitial Kind = iota
	KindLoading
	KindSuccess
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindInitial:
		return "initial"
	case KindLoading:
		return "loading"
	case KindSuccess:
		return "success"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *Kind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "loading":
		*k = KindLoading
	case "success":
		*k = KindSuccess
	case "error":
		*k = KindError
	default:
		*k = KindInitial
	}
	return nil
}

// State is what the tracker publishes: Initial, Loading, a flight status
// (possibly simulated), or an error message.
type State struct {
	Kind      Kind           `json:"kind"`
	FlightID  string         `json:"flight_id,omitempty"`
	Flight    *flight.Status `json:"flight,omitempty"`
	Simulated bool           `json:"simulated"`
	Message   string         `json:"message,omitempty"`
	At        time.Time      `json:"at"`
}

// Latest is a single-slot, last-write-wins holder for the published State.
// Subscribers only ever see the most recent value; slow subscribers miss
// intermediate values instead of blocking the publisher.
type Latest struct {
	mu    sync.Mutex
	state State
	subs  map[chan State]struct{}
}

// NewLatest creates a holder whose current value is KindInitial.
func NewLatest() *Latest {
	return &Latest{
		state: State{Kind: KindInitial, At: time.Now()},
		subs:  make(map[chan State]struct{}),
	}
}

// Publish replaces the current state and notifies subscribers.
func (l *Latest) Publish(s State) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.state = s
	for ch := range l.subs {
		// drop the stale value, if any, so the send never blocks
		select {
		case <-ch:
		default:
		}
		ch <- s
	}
}

// Current returns the most recently published state.
func (l *Latest) Current() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Subscribe returns a channel that receives the current state immediately
// and every later state, plus a function that ends the subscription.
func (l *Latest) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)

	l.mu.Lock()
	l.subs[ch] = struct{}{}
	ch <- l.state
	l.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.subs, ch)
			l.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}
