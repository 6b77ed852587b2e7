package main

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/unklstewy/skytrack/pkg/flight"
	"github.com/unklstewy/skytrack/pkg/tracker"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")).
			Background(lipgloss.Color("235")).
			Padding(0, 1)
	labelStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Width(14)
	valueStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	routeStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	simulatedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("208")).
			Padding(0, 1)
	liveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("46")).
			Padding(0, 1)
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	inputStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	barFull     = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	barEmpty    = lipgloss.NewStyle().Foreground(lipgloss.Color("237"))
)

const defaultBarWidth = 40

func (m model) View() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("SKYTRACK  " + m.flightID))
	s.WriteString("\n\n")

	if m.inputMode {
		s.WriteString(promptStyle.Render("Flight number: "))
		s.WriteString(inputStyle.Render(m.inputBuffer + "█"))
		s.WriteString("\n\n")
		s.WriteString(helpStyle.Render("enter: track  esc: cancel"))
		return s.String()
	}

	s.WriteString(renderState(m.state, m.barWidth()))
	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render("/: other flight  r: refresh  s: stop  q: quit"))
	return s.String()
}

func (m model) barWidth() int {
	if m.width > 30 && m.width-20 < defaultBarWidth {
		return m.width - 20
	}
	return defaultBarWidth
}

// renderState draws the body for one published state.
func renderState(st tracker.State, barWidth int) string {
	switch st.Kind {
	case tracker.KindInitial:
		return helpStyle.Render("Waiting for the tracker...")
	case tracker.KindLoading:
		return helpStyle.Render(fmt.Sprintf("Looking up %s...", st.FlightID))
	case tracker.KindError:
		return errStyle.Render(st.Message)
	}
	if st.Flight == nil {
		return errStyle.Render("No flight data")
	}

	f := st.Flight
	var s strings.Builder

	badge := liveStyle.Render("LIVE")
	if st.Simulated {
		badge = simulatedStyle.Render("SIMULATED")
	}
	s.WriteString(routeStyle.Render(fmt.Sprintf("%s  →  %s", f.DepartureAirport, f.ArrivalAirport)))
	s.WriteString("  ")
	s.WriteString(badge)
	s.WriteString("\n")
	if st.Simulated && st.Message != "" {
		s.WriteString(helpStyle.Render(st.Message))
		s.WriteString("\n")
	}
	s.WriteString("\n")

	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label))
		s.WriteString(valueStyle.Render(value))
		s.WriteString("\n")
	}
	row("Status", f.Phase.String())
	row("Aircraft", f.Aircraft)
	row("Position", formatPosition(f.Latitude, f.Longitude))
	row("Altitude", fmt.Sprintf("%d ft", f.AltitudeFt))
	row("Speed", fmt.Sprintf("%d km/h", f.SpeedKmh))
	row("Departed", f.ScheduledDeparture.Local().Format("15:04"))
	row("Arrives", f.EstimatedArrival.Local().Format("15:04"))
	row("Remaining", f.TimeRemaining)
	row("Updated", f.LastUpdated.Local().Format(time.TimeOnly))

	s.WriteString("\n")
	s.WriteString(progressBar(f, barWidth))
	return s.String()
}

// progressBar renders the route progress with its percentage.
func progressBar(f *flight.Status, width int) string {
	p := math.Max(0, math.Min(1, f.Progress))
	filled := int(math.Round(p * float64(width)))

	return fmt.Sprintf("%s %s%s %3.0f%% %s",
		f.DepartureAirport,
		barFull.Render(strings.Repeat("━", filled)),
		barEmpty.Render(strings.Repeat("─", width-filled)),
		p*100,
		f.ArrivalAirport,
	)
}

func formatPosition(lat, lon float64) string {
	ns, ew := "N", "E"
	if lat < 0 {
		ns = "S"
	}
	if lon < 0 {
		ew = "W"
	}
	return fmt.Sprintf("%.4f°%s %.4f°%s", math.Abs(lat), ns, math.Abs(lon), ew)
}
