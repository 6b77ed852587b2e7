// SkyTrack terminal tracker
// Follows one flight and redraws whenever the tracker publishes
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/unklstewy/skytrack/internal/app"
	"github.com/unklstewy/skytrack/pkg/tracker"
)

var (
	configPath = flag.String("config", "configs/config.json", "Path to configuration file")
	logPath    = flag.String("log", "skytrack.log", "Log file (the terminal is taken by the UI)")
)

type stateMsg tracker.State

// subscription ends when its channel closes.
type subscriptionClosedMsg struct{}

func waitForState(ch <-chan tracker.State) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return subscriptionClosedMsg{}
		}
		return stateMsg(s)
	}
}

type model struct {
	trk    *tracker.Tracker
	states <-chan tracker.State

	flightID string
	state    tracker.State
	width    int

	inputMode   bool
	inputBuffer string
}

func (m model) Init() tea.Cmd {
	return waitForState(m.states)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stateMsg:
		m.state = tracker.State(msg)
		return m, waitForState(m.states)

	case subscriptionClosedMsg:
		return m, tea.Quit

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case tea.KeyMsg:
		if m.inputMode {
			switch msg.String() {
			case "enter":
				if id := strings.TrimSpace(m.inputBuffer); id != "" {
					m.flightID = strings.ToUpper(id)
					m.trk.Start(m.flightID)
				}
				m.inputMode = false
				m.inputBuffer = ""
			case "esc":
				m.inputMode = false
				m.inputBuffer = ""
			case "backspace":
				if len(m.inputBuffer) > 0 {
					m.inputBuffer = m.inputBuffer[:len(m.inputBuffer)-1]
				}
			default:
				if len(msg.String()) == 1 {
					m.inputBuffer += msg.String()
				}
			}
			return m, nil
		}

		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "/", "f":
			m.inputMode = true
		case "r":
			// restart the session; the next cycle runs immediately
			m.trk.Start(m.flightID)
		case "s":
			m.trk.Stop()
		}
	}
	return m, nil
}

func main() {
	flag.Parse()

	flightID := strings.ToUpper(strings.TrimSpace(flag.Arg(0)))
	if flightID == "" {
		fmt.Fprintln(os.Stderr, "usage: skytrack [-config path] FLIGHT")
		os.Exit(2)
	}

	logFile, err := tea.LogToFile(*logPath, "skytrack")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()

	cfg, err := app.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	repo := app.NewRepository(cfg, app.NewFeed(cfg.Feed))
	latest := tracker.NewLatest()
	trk := tracker.New(repo, latest, app.TrackerConfig(cfg))
	defer trk.Close()

	states, cancel := latest.Subscribe()
	defer cancel()

	trk.Start(flightID)

	m := model{
		trk:      trk,
		states:   states,
		flightID: flightID,
		state:    latest.Current(),
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
