package main

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/unklstewy/skytrack/pkg/flight"
	"github.com/unklstewy/skytrack/pkg/opensky"
)

// RegionSource answers region queries. *tracker.Repository satisfies it.
type RegionSource interface {
	FlightsInRegion(ctx context.Context, bbox opensky.BoundingBox) []flight.Status
}

var columns = []string{"FLIGHT", "ROUTE", "STATUS", "ALT (ft)", "SPEED (km/h)", "LAT", "LON", "AIRCRAFT"}

// Browser is a table of the flights inside one region.
type Browser struct {
	source   RegionSource
	region   opensky.BoundingBox
	interval time.Duration
	started  time.Time

	tviewApp *tview.Application
	table    *tview.Table
	details  *tview.TextView
	status   *tview.TextView

	mu       sync.Mutex
	flights  []flight.Status
	fetching bool
	stop     chan struct{}
}

// NewBrowser builds the UI without starting it.
func NewBrowser(source RegionSource, region opensky.BoundingBox, interval time.Duration) *Browser {
	b := &Browser{
		source:   source,
		region:   region,
		interval: interval,
		stop:     make(chan struct{}),
	}
	b.setupUI()
	return b
}

func (b *Browser) setupUI() {
	b.tviewApp = tview.NewApplication()

	b.table = tview.NewTable().
		SetBorders(false).
		SetSelectable(true, false).
		SetFixed(1, 0)
	b.table.SetBorder(true).SetTitle(fmt.Sprintf(" Flights in %.2f,%.2f → %.2f,%.2f ",
		b.region.LatMin, b.region.LonMin, b.region.LatMax, b.region.LonMax))
	b.table.SetSelectionChangedFunc(func(row, _ int) { b.showDetails(row - 1) })

	b.details = tview.NewTextView().SetDynamicColors(true)
	b.details.SetBorder(true).SetTitle(" Details ")

	b.status = tview.NewTextView().SetDynamicColors(true)

	body := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(b.table, 0, 7, true).
		AddItem(b.details, 0, 3, false)

	root := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(body, 0, 1, true).
		AddItem(b.status, 1, 0, false)

	b.renderTable(nil)
	b.tviewApp.SetRoot(root, true)
	b.tviewApp.SetInputCapture(b.handleKeyboard)
}

// Run blocks until the user quits.
func (b *Browser) Run() error {
	b.started = time.Now()
	go b.refreshLoop()
	defer close(b.stop)
	return b.tviewApp.Run()
}

func (b *Browser) handleKeyboard(event *tcell.EventKey) *tcell.EventKey {
	switch {
	case event.Key() == tcell.KeyEscape || event.Rune() == 'q':
		b.tviewApp.Stop()
		return nil
	case event.Rune() == 'r':
		go b.refresh()
		return nil
	}
	return event
}

func (b *Browser) refreshLoop() {
	b.refresh()

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()
	for {
		select {
		case <-b.stop:
			return
		case <-ticker.C:
			b.refresh()
		}
	}
}

// refresh queries the region once; overlapping requests are dropped.
func (b *Browser) refresh() {
	b.mu.Lock()
	if b.fetching {
		b.mu.Unlock()
		return
	}
	b.fetching = true
	b.mu.Unlock()

	b.tviewApp.QueueUpdateDraw(func() {
		b.status.SetText("[yellow]Refreshing...[-]")
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	flights := b.source.FlightsInRegion(ctx, b.region)
	cancel()
	sortFlights(flights)

	b.mu.Lock()
	b.flights = flights
	b.fetching = false
	b.mu.Unlock()

	log.Printf("Region refresh returned %d flights", len(flights))
	b.tviewApp.QueueUpdateDraw(func() {
		b.renderTable(flights)
		b.status.SetText(statusLine(len(flights), time.Now()))
	})
}

func (b *Browser) renderTable(flights []flight.Status) {
	b.table.Clear()
	for col, name := range columns {
		b.table.SetCell(0, col, tview.NewTableCell(name).
			SetTextColor(tcell.ColorYellow).
			SetSelectable(false).
			SetExpansion(1))
	}
	for i, f := range flights {
		for col, text := range tableRow(f) {
			cell := tview.NewTableCell(text).SetExpansion(1)
			if onGround(f) {
				cell.SetTextColor(tcell.ColorGray)
			}
			b.table.SetCell(i+1, col, cell)
		}
	}
	if len(flights) > 0 {
		b.table.Select(1, 0)
	}
	b.showDetails(0)
}

func (b *Browser) showDetails(i int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if i < 0 || i >= len(b.flights) {
		b.details.SetText("[gray]No flight selected[-]")
		return
	}
	b.details.SetText(detailText(b.flights[i]))
}

// tableRow formats one flight for the table, in column order.
func tableRow(f flight.Status) []string {
	return []string{
		f.FlightNumber,
		f.DepartureAirport + " → " + f.ArrivalAirport,
		f.Phase.String(),
		fmt.Sprintf("%d", f.AltitudeFt),
		fmt.Sprintf("%d", f.SpeedKmh),
		fmt.Sprintf("%.4f", f.Latitude),
		fmt.Sprintf("%.4f", f.Longitude),
		f.Aircraft,
	}
}

func detailText(f flight.Status) string {
	text := fmt.Sprintf("[yellow]FLIGHT:[-] [white]%s[-]\n", f.FlightNumber)
	text += fmt.Sprintf("[gray]Route:[-]    [white]%s → %s[-]\n", f.DepartureAirport, f.ArrivalAirport)
	text += fmt.Sprintf("[gray]Status:[-]   [white]%s[-]\n", f.Phase)
	text += fmt.Sprintf("[gray]Departed:[-] [white]%s[-]\n", f.ScheduledDeparture.Local().Format("15:04"))
	text += fmt.Sprintf("[gray]Arrives:[-]  [white]%s[-]\n", f.EstimatedArrival.Local().Format("15:04"))
	text += fmt.Sprintf("[gray]Progress:[-] [white]%.0f%%[-]\n", f.Progress*100)
	text += fmt.Sprintf("[gray]Left:[-]     [white]%s[-]\n", f.TimeRemaining)
	return text
}

func statusLine(n int, at time.Time) string {
	return fmt.Sprintf("[white]%d flights[-]  [gray]updated %s  r: refresh  ↑/↓: select  q: quit[-]",
		n, at.Format("15:04:05"))
}

// sortFlights orders airborne flights first, then by flight number.
func sortFlights(flights []flight.Status) {
	sort.SliceStable(flights, func(i, j int) bool {
		gi, gj := onGround(flights[i]), onGround(flights[j])
		if gi != gj {
			return !gi
		}
		return flights[i].FlightNumber < flights[j].FlightNumber
	})
}

func onGround(f flight.Status) bool {
	return f.Phase == flight.PhaseParked || f.Phase == flight.PhaseTaxiing
}
