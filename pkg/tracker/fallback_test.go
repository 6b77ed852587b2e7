package tracker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/unklstewy/skytrack/pkg/flight"
)

func TestSynthesize(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s := NewSynthesizer(constRandom(0.5))

	status := s.Synthesize("ZZ999", now)

	assert.Equal(t, "ZZ999", status.FlightNumber)
	assert.Equal(t, "JFK", status.DepartureAirport)
	assert.Equal(t, "LAX", status.ArrivalAirport)
	assert.Equal(t, "Boeing 737-800", status.Aircraft)
	assert.Equal(t, flight.PhaseInAir, status.Phase)
	assert.Equal(t, now.Add(-time.Hour), status.ScheduledDeparture)
	assert.Equal(t, now.Add(90*time.Minute), status.EstimatedArrival)
	assert.InDelta(t, 40.712776, status.Latitude, 1e-9)
	assert.InDelta(t, -74.005974, status.Longitude, 1e-9)
	assert.Equal(t, 32000, status.AltitudeFt)
	assert.Equal(t, 550, status.SpeedKmh)
	assert.InDelta(t, 0.4, status.Progress, 1e-9)
	assert.Equal(t, "1h 30m", status.TimeRemaining)
	assert.Equal(t, now, status.LastUpdated)
}

func TestSynthesizeJitterBounds(t *testing.T) {
	now := time.Now()

	for _, r := range []float64{0, 0.25, 0.75, 0.999999} {
		status := NewSynthesizer(constRandom(r)).Synthesize("AB1", now)

		assert.InDelta(t, 40.712776, status.Latitude, 0.05)
		assert.InDelta(t, -74.005974, status.Longitude, 0.05)
		assert.InDelta(t, 32000, status.AltitudeFt, 500)
		assert.InDelta(t, 550, status.SpeedKmh, 10)
		assert.GreaterOrEqual(t, status.Progress, 0.0)
		assert.LessOrEqual(t, status.Progress, 1.0)
	}
}

func TestSynthesizeDefaultRandom(t *testing.T) {
	s := NewSynthesizer(nil)
	status := s.Synthesize("AB1", time.Now())
	assert.InDelta(t, 32000, status.AltitudeFt, 500)
}
