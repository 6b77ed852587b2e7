// SkyTrack region browser
// Lists every flight currently inside a bounding box
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/unklstewy/skytrack/internal/app"
	"github.com/unklstewy/skytrack/pkg/opensky"
)

var (
	configPath = flag.String("config", "configs/config.json", "Path to configuration file")
	latMin     = flag.Float64("lamin", 0, "Southern latitude bound (defaults to the configured region)")
	lonMin     = flag.Float64("lomin", 0, "Western longitude bound")
	latMax     = flag.Float64("lamax", 0, "Northern latitude bound")
	lonMax     = flag.Float64("lomax", 0, "Eastern longitude bound")
	refresh    = flag.Duration("refresh", 0, "Auto refresh interval (0 uses the tracking interval)")
	logPath    = flag.String("log", "skytrack-region.log", "Log file (the terminal is taken by the UI)")
)

func main() {
	flag.Parse()

	cfg, err := app.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	region := app.DefaultRegion(cfg)
	if *latMin != 0 || *lonMin != 0 || *latMax != 0 || *lonMax != 0 {
		region = opensky.BoundingBox{LatMin: *latMin, LonMin: *lonMin, LatMax: *latMax, LonMax: *lonMax}
	}
	if !region.Valid() {
		fmt.Fprintf(os.Stderr, "Error: invalid region %+v\n", region)
		os.Exit(2)
	}

	logFile, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	log.SetOutput(logFile)

	interval := *refresh
	if interval <= 0 {
		interval = cfg.Tracking.UpdateInterval()
	}

	repo := app.NewRepository(cfg, app.NewFeed(cfg.Feed))
	browser := NewBrowser(repo, region, interval)
	if err := browser.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	log.Printf("Region browser closed after %s", time.Since(browser.started).Round(time.Second))
}
