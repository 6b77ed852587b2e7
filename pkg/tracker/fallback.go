package tracker

import (
	"math/rand/v2"
	"time"

	"github.com/unklstewy/skytrack/pkg/flight"
)

// Simulated route and base position (over New York, bound for Los Angeles).
const (
	simDepartureAirport = "JFK"
	simArrivalAirport   = "LAX"
	simAircraft         = "Boeing 737-800"
	simLatitude         = 40.712776
	simLongitude        = -74.005974
	simAltitudeFt       = 32000
	simSpeedKmh         = 550
	simElapsed          = time.Hour
	simRemaining        = 90 * time.Minute
)

// Synthesizer produces a plausible simulated status when no live data is
// available. Its output always succeeds; consumers must label it simulated.
type Synthesizer struct {
	// random returns values in [0,1); defaults to math/rand/v2
	random func() float64
}

// NewSynthesizer creates a synthesizer. A nil random source uses rand.Float64.
func NewSynthesizer(random func() float64) *Synthesizer {
	if random == nil {
		random = rand.Float64
	}
	return &Synthesizer{random: random}
}

// Synthesize returns a simulated in-air status for requestedID at now.
func (s *Synthesizer) Synthesize(requestedID string, now time.Time) flight.Status {
	departure := now.Add(-simElapsed)
	arrival := now.Add(simRemaining)

	return flight.Status{
		FlightNumber:       requestedID,
		DepartureAirport:   simDepartureAirport,
		ArrivalAirport:     simArrivalAirport,
		ScheduledDeparture: departure,
		EstimatedArrival:   arrival,
		Phase:              flight.PhaseInAir,
		Aircraft:           simAircraft,
		Latitude:           simLatitude + s.jitter(0.05),
		Longitude:          simLongitude + s.jitter(0.05),
		AltitudeFt:         simAltitudeFt + int(s.jitter(500)),
		SpeedKmh:           simSpeedKmh + int(s.jitter(10)),
		Progress:           flight.Progress(departure, arrival, now),
		TimeRemaining:      flight.FormatRemaining(flight.RemainingMinutes(arrival, now)),
		LastUpdated:        now,
	}
}

// jitter returns a value in [-spread, spread).
func (s *Synthesizer) jitter(spread float64) float64 {
	return (s.random()*2 - 1) * spread
}
