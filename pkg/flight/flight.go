// Package flight defines the display-ready flight status published by the
// tracker and the formulas shared by live and simulated results.
package flight

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// Phase is the coarse flight phase derived from a state vector.
type Phase int

const (
	PhaseUnknown Phase = iota
	PhaseParked
	PhaseTaxiing
	PhaseTakingOff
	PhaseClimbing
	PhaseDescending
	PhaseInAir
)

var phaseNames = map[Phase]string{
	PhaseUnknown:    "Unknown",
	PhaseParked:     "Parked",
	PhaseTaxiing:    "Taxiing",
	PhaseTakingOff:  "Taking Off",
	PhaseClimbing:   "Climbing",
	PhaseDescending: "Descending",
	PhaseInAir:      "In Air",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return phaseNames[PhaseUnknown]
}

// MarshalText encodes the phase as its display label.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText accepts the display label; unrecognized labels become PhaseUnknown.
func (p *Phase) UnmarshalText(text []byte) error {
	for phase, name := range phaseNames {
		if name == string(text) {
			*p = phase
			return nil
		}
	}
	*p = PhaseUnknown
	return nil
}

// Aircraft class labels. They are guesses from cruise altitude, nothing more.
const (
	ClassLongHaul = "Long-haul Jet (Boeing 777 / Airbus A330)"
	ClassMidSize  = "Mid-size Jet (Boeing 737 / Airbus A320)"
	ClassRegional = "Regional Aircraft"
)

// ClassForAltitude guesses the aircraft class from altitude in feet.
func ClassForAltitude(altitudeFt int) string {
	switch {
	case altitudeFt > 35000:
		return ClassLongHaul
	case altitudeFt > 30000:
		return ClassMidSize
	default:
		return ClassRegional
	}
}

// Facts are route and timing facts derived the first time an aircraft and
// callsign pair is seen. They never change afterwards.
type Facts struct {
	DepartureAirport string
	ArrivalAirport   string
	Departure        time.Time
	Arrival          time.Time
	FirstSeen        time.Time
}

// Status is the display-ready result for one flight.
type Status struct {
	FlightNumber       string
	DepartureAirport   string
	ArrivalAirport     string
	ScheduledDeparture time.Time
	EstimatedArrival   time.Time
	Phase              Phase
	Aircraft           string
	Latitude           float64
	Longitude          float64
	AltitudeFt         int
	SpeedKmh           int
	Progress           float64
	TimeRemaining      string
	LastUpdated        time.Time
}

// statusJSON is the wire form: times as Unix milliseconds.
type statusJSON struct {
	FlightNumber       string  `json:"flight_number"`
	DepartureAirport   string  `json:"departure_airport"`
	ArrivalAirport     string  `json:"arrival_airport"`
	ScheduledDeparture int64   `json:"scheduled_departure_ms"`
	EstimatedArrival   int64   `json:"estimated_arrival_ms"`
	Phase              Phase   `json:"status"`
	Aircraft           string  `json:"aircraft"`
	Latitude           float64 `json:"latitude"`
	Longitude          float64 `json:"longitude"`
	AltitudeFt         int     `json:"altitude_ft"`
	SpeedKmh           int     `json:"speed_kmh"`
	Progress           float64 `json:"progress"`
	TimeRemaining      string  `json:"time_remaining"`
	LastUpdated        int64   `json:"last_updated_ms"`
}

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(statusJSON{
		FlightNumber:       s.FlightNumber,
		DepartureAirport:   s.DepartureAirport,
		ArrivalAirport:     s.ArrivalAirport,
		ScheduledDeparture: s.ScheduledDeparture.UnixMilli(),
		EstimatedArrival:   s.EstimatedArrival.UnixMilli(),
		Phase:              s.Phase,
		Aircraft:           s.Aircraft,
		Latitude:           s.Latitude,
		Longitude:          s.Longitude,
		AltitudeFt:         s.AltitudeFt,
		SpeedKmh:           s.SpeedKmh,
		Progress:           s.Progress,
		TimeRemaining:      s.TimeRemaining,
		LastUpdated:        s.LastUpdated.UnixMilli(),
	})
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var w statusJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*s = Status{
		FlightNumber:       w.FlightNumber,
		DepartureAirport:   w.DepartureAirport,
		ArrivalAirport:     w.ArrivalAirport,
		ScheduledDeparture: time.UnixMilli(w.ScheduledDeparture),
		EstimatedArrival:   time.UnixMilli(w.EstimatedArrival),
		Phase:              w.Phase,
		Aircraft:           w.Aircraft,
		Latitude:           w.Latitude,
		Longitude:          w.Longitude,
		AltitudeFt:         w.AltitudeFt,
		SpeedKmh:           w.SpeedKmh,
		Progress:           w.Progress,
		TimeRemaining:      w.TimeRemaining,
		LastUpdated:        time.UnixMilli(w.LastUpdated),
	}
	return nil
}

// Progress returns the elapsed fraction of the departure..arrival window,
// clamped to [0,1]. A zero or negative window yields 0.
func Progress(departure, arrival, now time.Time) float64 {
	total := arrival.Sub(departure)
	if total <= 0 {
		return 0
	}
	p := float64(now.Sub(departure)) / float64(total)
	if math.IsNaN(p) {
		return 0
	}
	return math.Max(0, math.Min(1, p))
}

// RemainingMinutes returns whole minutes until arrival, never negative.
func RemainingMinutes(arrival, now time.Time) int64 {
	m := int64(arrival.Sub(now) / time.Minute)
	if m < 0 {
		return 0
	}
	return m
}

// FormatRemaining renders minutes as "{h}h {m}m".
func FormatRemaining(minutes int64) string {
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}
