package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config represents the complete application configuration.
// Values are read from a JSON file and then overridden from SKYTRACK_*
// environment variables.
type Config struct {
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	Feed     FeedConfig     `json:"feed"`
	Tracking TrackingConfig `json:"tracking"`
	Auth     AuthConfig     `json:"auth"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	// Port is the HTTP server port (default: 8080)
	Port string `json:"port" env:"SKYTRACK_PORT"`

	// Host is the server bind address (default: "0.0.0.0")
	Host string `json:"host" env:"SKYTRACK_HOST"`
}

// DatabaseConfig contains the optional status history database settings.
type DatabaseConfig struct {
	// Enabled turns on status history persistence
	Enabled bool `json:"enabled" env:"SKYTRACK_DB_ENABLED"`

	// Host is the database server hostname
	Host string `json:"host" env:"SKYTRACK_DB_HOST"`

	// Port is the database server port
	Port int `json:"port" env:"SKYTRACK_DB_PORT"`

	// Database is the database name
	Database string `json:"database" env:"SKYTRACK_DB_NAME"`

	// Username for database authentication
	Username string `json:"username" env:"SKYTRACK_DB_USER"`

	// Password for database authentication (should be loaded from environment)
	Password string `json:"password" env:"SKYTRACK_DB_PASSWORD"`

	// SSLMode for PostgreSQL connections (disable, require, verify-ca, verify-full)
	SSLMode string `json:"ssl_mode" env:"SKYTRACK_DB_SSLMODE"`

	MaxOpenConns int `json:"max_open_conns"`
	MaxIdleConns int `json:"max_idle_conns"`
}

// FeedConfig contains OpenSky Network settings.
type FeedConfig struct {
	// BaseURL is the REST API root (default: https://opensky-network.org/api)
	BaseURL string `json:"base_url" env:"SKYTRACK_FEED_URL"`

	// TokenURL is the OAuth2 token endpoint used with client credentials
	TokenURL string `json:"token_url" env:"SKYTRACK_FEED_TOKEN_URL"`

	// ClientID and ClientSecret enable OAuth2 client credentials.
	// Register an API client at https://opensky-network.org/my-opensky
	ClientID     string `json:"client_id" env:"SKYTRACK_FEED_CLIENT_ID"`
	ClientSecret string `json:"client_secret" env:"SKYTRACK_FEED_CLIENT_SECRET"`

	// Username and Password are legacy basic auth credentials
	Username string `json:"username" env:"SKYTRACK_FEED_USERNAME"`
	Password string `json:"password" env:"SKYTRACK_FEED_PASSWORD"`

	// RequestsPerMinute caps outgoing requests; 0 disables the limiter
	RequestsPerMinute int `json:"requests_per_minute" env:"SKYTRACK_FEED_RPM"`

	// TimeoutSeconds bounds a single request (default: 15)
	TimeoutSeconds int `json:"timeout_seconds"`

	// RefineByAircraft re-queries a matched aircraft by its address
	RefineByAircraft bool `json:"refine_by_aircraft"`
}

// Region is a latitude/longitude bounding box in decimal degrees.
type Region struct {
	LatMin float64 `json:"lat_min"`
	LonMin float64 `json:"lon_min"`
	LatMax float64 `json:"lat_max"`
	LonMax float64 `json:"lon_max"`
}

// TrackingConfig controls the tracking loop and region view.
type TrackingConfig struct {
	// UpdateIntervalSeconds is the wait between successful cycles (default: 60)
	UpdateIntervalSeconds int `json:"update_interval_seconds" env:"SKYTRACK_UPDATE_INTERVAL"`

	// ErrorBackoffSeconds is the wait after a failed cycle (default: 5)
	ErrorBackoffSeconds int `json:"error_backoff_seconds"`

	// DefaultRegion is shown by the region view when no box is given
	DefaultRegion Region `json:"default_region"`
}

// AuthConfig contains JWT settings for the control endpoints.
// An empty JWTSecret leaves the endpoints open.
type AuthConfig struct {
	JWTSecret  string `json:"jwt_secret" env:"SKYTRACK_JWT_SECRET"`
	TokenHours int    `json:"token_hours"`
}

// UpdateInterval returns the tracking interval as a duration.
func (t TrackingConfig) UpdateInterval() time.Duration {
	return time.Duration(t.UpdateIntervalSeconds) * time.Second
}

// ErrorBackoff returns the error backoff as a duration.
func (t TrackingConfig) ErrorBackoff() time.Duration {
	return time.Duration(t.ErrorBackoffSeconds) * time.Second
}

// Timeout returns the per-request timeout as a duration.
func (f FeedConfig) Timeout() time.Duration {
	return time.Duration(f.TimeoutSeconds) * time.Second
}

// Load reads configuration from a JSON file.
// If the file doesn't exist, the defaults are used. Environment overrides
// are applied in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// defaults only
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.applyEnvironmentOverrides(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to a JSON file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8080",
			Host: "0.0.0.0",
		},
		Database: DatabaseConfig{
			Enabled:      false,
			Host:         "localhost",
			Port:         5432,
			Database:     "skytrack",
			Username:     "skytrack",
			SSLMode:      "disable",
			MaxOpenConns: 10,
			MaxIdleConns: 2,
		},
		Feed: FeedConfig{
			BaseURL:           "https://opensky-network.org/api",
			TokenURL:          "https://auth.opensky-network.org/auth/realms/opensky-network/protocol/openid-connect/token",
			RequestsPerMinute: 10, // anonymous snapshots refresh every 10s
			TimeoutSeconds:    15,
			RefineByAircraft:  true,
		},
		Tracking: TrackingConfig{
			UpdateIntervalSeconds: 60,
			ErrorBackoffSeconds:   5,
			// Greater London
			DefaultRegion: Region{LatMin: 51.2, LonMin: -0.6, LatMax: 51.8, LonMax: 0.4},
		},
		Auth: AuthConfig{
			TokenHours: 24,
		},
	}
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	if c.Tracking.UpdateIntervalSeconds <= 0 {
		return fmt.Errorf("tracking.update_interval_seconds must be positive, got %d", c.Tracking.UpdateIntervalSeconds)
	}
	if c.Tracking.ErrorBackoffSeconds <= 0 {
		return fmt.Errorf("tracking.error_backoff_seconds must be positive, got %d", c.Tracking.ErrorBackoffSeconds)
	}
	if c.Feed.TimeoutSeconds <= 0 {
		return fmt.Errorf("feed.timeout_seconds must be positive, got %d", c.Feed.TimeoutSeconds)
	}
	if c.Feed.RequestsPerMinute < 0 {
		return fmt.Errorf("feed.requests_per_minute cannot be negative, got %d", c.Feed.RequestsPerMinute)
	}

	r := c.Tracking.DefaultRegion
	if r.LatMin >= r.LatMax || r.LonMin >= r.LonMax {
		return fmt.Errorf("tracking.default_region is inverted or empty: %+v", r)
	}
	if r.LatMin < -90 || r.LatMax > 90 || r.LonMin < -180 || r.LonMax > 180 {
		return fmt.Errorf("tracking.default_region is out of range: %+v", r)
	}

	if c.Database.Enabled && c.Database.Host == "" {
		return errors.New("database.host is required when the database is enabled")
	}
	return nil
}

// applyEnvironmentOverrides applies SKYTRACK_* environment variables.
// This allows secrets like passwords to be kept out of config files.
func (c *Config) applyEnvironmentOverrides() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("failed to apply environment overrides: %w", err)
	}
	return nil
}
