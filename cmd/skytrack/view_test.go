package main

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	"github.com/unklstewy/skytrack/pkg/flight"
	"github.com/unklstewy/skytrack/pkg/tracker"
)

func sampleStatus() *flight.Status {
	now := time.Now()
	return &flight.Status{
		FlightNumber:       "BA123",
		DepartureAirport:   "JFK",
		ArrivalAirport:     "LAX",
		ScheduledDeparture: now.Add(-time.Hour),
		EstimatedArrival:   now.Add(90 * time.Minute),
		Phase:              flight.PhaseInAir,
		Aircraft:           "Boeing 737-800",
		Latitude:           40.71,
		Longitude:          -74.0,
		AltitudeFt:         32000,
		SpeedKmh:           550,
		Progress:           0.4,
		TimeRemaining:      "1h 30m",
		LastUpdated:        now,
	}
}

func TestRenderStateSimulatedBadge(t *testing.T) {
	out := renderState(tracker.State{
		Kind:      tracker.KindSuccess,
		Flight:    sampleStatus(),
		Simulated: true,
		Message:   "Flight not found in live feed; showing simulated data",
	}, 20)

	assert.Contains(t, out, "SIMULATED")
	assert.Contains(t, out, "showing simulated data")
	assert.Contains(t, out, "JFK")
	assert.Contains(t, out, "1h 30m")
	assert.Contains(t, out, "40%")
	assert.NotContains(t, out, "LIVE")
}

func TestRenderStateLive(t *testing.T) {
	out := renderState(tracker.State{Kind: tracker.KindSuccess, Flight: sampleStatus()}, 20)
	assert.Contains(t, out, "LIVE")
	assert.Contains(t, out, "In Air")
	assert.Contains(t, out, "74.0000°W")
}

func TestRenderStateOthers(t *testing.T) {
	assert.Contains(t, renderState(tracker.State{Kind: tracker.KindLoading, FlightID: "BA123"}, 20), "Looking up BA123")
	assert.Contains(t, renderState(tracker.State{Kind: tracker.KindError, Message: "Tracking error: boom. Will retry..."}, 20), "Will retry")
	assert.Contains(t, renderState(tracker.State{Kind: tracker.KindSuccess}, 20), "No flight data")
}

func TestProgressBarClamps(t *testing.T) {
	f := sampleStatus()
	f.Progress = 1.7
	assert.Contains(t, progressBar(f, 10), "100%")

	f.Progress = -1
	assert.Contains(t, progressBar(f, 10), "  0%")
}

func TestInputMode(t *testing.T) {
	m := model{flightID: "BA123"}

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")})
	m = next.(model)
	assert.True(t, m.inputMode)
	assert.True(t, strings.Contains(m.View(), "Flight number"))

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	m = next.(model)
	assert.Equal(t, "x", m.inputBuffer)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(model)
	assert.False(t, m.inputMode)
	assert.Empty(t, m.inputBuffer)
}
