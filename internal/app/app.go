// Package app wires configuration into the feed client and repository
// shared by the skytrack binaries.
package app

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/unklstewy/skytrack/pkg/config"
	"github.com/unklstewy/skytrack/pkg/opensky"
	"github.com/unklstewy/skytrack/pkg/tracker"
)

// LoadConfig reads an optional .env file, then the JSON config at path with
// environment overrides, and validates the result.
func LoadConfig(path string) (*config.Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// NewFeed creates the OpenSky client described by cfg.
func NewFeed(cfg config.FeedConfig) *opensky.Client {
	return opensky.NewClient(opensky.Config{
		BaseURL:           cfg.BaseURL,
		Timeout:           cfg.Timeout(),
		RequestsPerMinute: float64(cfg.RequestsPerMinute),
		ClientID:          cfg.ClientID,
		ClientSecret:      cfg.ClientSecret,
		TokenURL:          cfg.TokenURL,
		Username:          cfg.Username,
		Password:          cfg.Password,
	})
}

// NewRepository creates a repository over feed using cfg's feed options.
func NewRepository(cfg *config.Config, feed opensky.Feed) *tracker.Repository {
	return tracker.NewRepository(feed, tracker.WithRefinement(cfg.Feed.RefineByAircraft))
}

// DefaultRegion converts the configured region to a bounding box.
func DefaultRegion(cfg *config.Config) opensky.BoundingBox {
	r := cfg.Tracking.DefaultRegion
	return opensky.BoundingBox{LatMin: r.LatMin, LonMin: r.LonMin, LatMax: r.LatMax, LonMax: r.LonMax}
}

// TrackerConfig converts the configured cadence.
func TrackerConfig(cfg *config.Config) tracker.Config {
	return tracker.Config{
		UpdateInterval: cfg.Tracking.UpdateInterval(),
		ErrorBackoff:   cfg.Tracking.ErrorBackoff(),
	}
}
