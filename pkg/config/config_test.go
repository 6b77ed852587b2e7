package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestDefaultConfig verifies that DefaultConfig returns valid defaults.
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	// Server defaults
	if cfg.Server.Port != "8080" {
		t.Errorf("Expected default port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Expected default host 0.0.0.0, got %s", cfg.Server.Host)
	}

	// Database defaults
	if cfg.Database.Enabled {
		t.Error("Expected status history disabled by default")
	}
	if cfg.Database.Port != 5432 {
		t.Errorf("Expected default postgres port 5432, got %d", cfg.Database.Port)
	}

	// Feed defaults
	if cfg.Feed.BaseURL != "https://opensky-network.org/api" {
		t.Errorf("Expected OpenSky base URL, got %s", cfg.Feed.BaseURL)
	}
	if cfg.Feed.Timeout() != 15*time.Second {
		t.Errorf("Expected 15s feed timeout, got %v", cfg.Feed.Timeout())
	}
	if !cfg.Feed.RefineByAircraft {
		t.Error("Expected refinement by aircraft enabled by default")
	}

	// Tracking defaults
	if cfg.Tracking.UpdateInterval() != 60*time.Second {
		t.Errorf("Expected 60s update interval, got %v", cfg.Tracking.UpdateInterval())
	}
	if cfg.Tracking.ErrorBackoff() != 5*time.Second {
		t.Errorf("Expected 5s error backoff, got %v", cfg.Tracking.ErrorBackoff())
	}

	// Auth defaults
	if cfg.Auth.JWTSecret != "" {
		t.Error("Expected no JWT secret by default")
	}
	if cfg.Auth.TokenHours != 24 {
		t.Errorf("Expected 24 token hours, got %d", cfg.Auth.TokenHours)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected defaults to validate, got: %v", err)
	}
}

// TestLoadNonExistentFile tests that Load returns default config when file doesn't exist.
func TestLoadNonExistentFile(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.json")
	if err != nil {
		t.Fatalf("Expected no error for non-existent file, got: %v", err)
	}
	if cfg == nil {
		t.Fatal("Expected default config, got nil")
	}
	if cfg.Server.Port != "8080" {
		t.Error("Did not get default config for non-existent file")
	}
}

// TestLoadValidConfig tests loading a valid configuration file.
func TestLoadValidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.json")

	data := `{
  "server": {"port": "9090", "host": "127.0.0.1"},
  "database": {"enabled": true, "host": "db.example.com", "port": 5433},
  "feed": {"client_id": "me-api-client", "requests_per_minute": 20},
  "tracking": {"update_interval_seconds": 30}
}`
	if err := os.WriteFile(configPath, []byte(data), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("Expected port 9090, got %s", cfg.Server.Port)
	}
	if !cfg.Database.Enabled || cfg.Database.Host != "db.example.com" {
		t.Errorf("Expected enabled database at db.example.com, got %+v", cfg.Database)
	}
	if cfg.Feed.ClientID != "me-api-client" {
		t.Errorf("Expected client id from file, got %s", cfg.Feed.ClientID)
	}
	if cfg.Feed.RequestsPerMinute != 20 {
		t.Errorf("Expected 20 requests per minute, got %d", cfg.Feed.RequestsPerMinute)
	}
	if cfg.Tracking.UpdateIntervalSeconds != 30 {
		t.Errorf("Expected 30s interval, got %d", cfg.Tracking.UpdateIntervalSeconds)
	}

	// fields absent from the file keep their defaults
	if cfg.Tracking.ErrorBackoffSeconds != 5 {
		t.Errorf("Expected default backoff 5, got %d", cfg.Tracking.ErrorBackoffSeconds)
	}
	if cfg.Database.Database != "skytrack" {
		t.Errorf("Expected default database name, got %s", cfg.Database.Database)
	}
}

// TestLoadInvalidJSON tests error handling for malformed JSON.
func TestLoadInvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.json")

	if err := os.WriteFile(configPath, []byte("{ invalid json }"), 0644); err != nil {
		t.Fatalf("Failed to write invalid config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Fatal("Expected error for invalid JSON, got nil")
	}
	if !strings.Contains(err.Error(), "failed to parse") {
		t.Errorf("Expected parse error, got: %v", err)
	}
}

// TestSaveConfig tests saving configuration to file.
func TestSaveConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "saved-config.json")

	cfg := DefaultConfig()
	cfg.Server.Port = "9999"
	cfg.Tracking.DefaultRegion = Region{LatMin: 40, LonMin: -75, LatMax: 41, LonMax: -73}

	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	loaded, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load saved config: %v", err)
	}

	if loaded.Server.Port != "9999" {
		t.Errorf("Expected port 9999, got %s", loaded.Server.Port)
	}
	if loaded.Tracking.DefaultRegion != cfg.Tracking.DefaultRegion {
		t.Errorf("Expected region %+v, got %+v", cfg.Tracking.DefaultRegion, loaded.Tracking.DefaultRegion)
	}
}

// TestSaveConfigCreatesDirectory tests that Save creates missing directories.
func TestSaveConfigCreatesDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "nested", "dir", "config.json")

	cfg := DefaultConfig()
	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("Failed to save config with nested directory: %v", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Error("Config file was not created")
	}
}

// TestEnvironmentOverrides tests environment variable overrides.
func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("SKYTRACK_PORT", "7777")
	t.Setenv("SKYTRACK_DB_HOST", "env-db-host")
	t.Setenv("SKYTRACK_DB_PASSWORD", "env-password")
	t.Setenv("SKYTRACK_FEED_CLIENT_ID", "env-client")
	t.Setenv("SKYTRACK_FEED_CLIENT_SECRET", "env-secret")
	t.Setenv("SKYTRACK_UPDATE_INTERVAL", "15")
	t.Setenv("SKYTRACK_JWT_SECRET", "env-jwt")

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")
	testCfg := DefaultConfig()
	testCfg.Database.Password = "original-password"
	testCfg.Feed.ClientID = "file-client"
	if err := testCfg.Save(configPath); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Server.Port != "7777" {
		t.Errorf("Expected port 7777 from env, got %s", cfg.Server.Port)
	}
	if cfg.Database.Host != "env-db-host" {
		t.Errorf("Expected env-db-host from env, got %s", cfg.Database.Host)
	}
	if cfg.Database.Password != "env-password" {
		t.Errorf("Expected env-password from env, got %s", cfg.Database.Password)
	}
	if cfg.Feed.ClientID != "env-client" || cfg.Feed.ClientSecret != "env-secret" {
		t.Errorf("Expected feed credentials from env, got %s/%s", cfg.Feed.ClientID, cfg.Feed.ClientSecret)
	}
	if cfg.Tracking.UpdateIntervalSeconds != 15 {
		t.Errorf("Expected interval 15 from env, got %d", cfg.Tracking.UpdateIntervalSeconds)
	}
	if cfg.Auth.JWTSecret != "env-jwt" {
		t.Errorf("Expected JWT secret from env, got %s", cfg.Auth.JWTSecret)
	}

	// unset variables leave file values alone
	if cfg.Feed.BaseURL != "https://opensky-network.org/api" {
		t.Errorf("Expected base URL untouched, got %s", cfg.Feed.BaseURL)
	}
}

// TestEnvironmentOverrideInvalid tests that a malformed variable is reported.
func TestEnvironmentOverrideInvalid(t *testing.T) {
	t.Setenv("SKYTRACK_UPDATE_INTERVAL", "often")

	_, err := Load("/nonexistent/path/config.json")
	if err == nil {
		t.Fatal("Expected error for non-numeric interval, got nil")
	}
	if !strings.Contains(err.Error(), "environment overrides") {
		t.Errorf("Expected environment override error, got: %v", err)
	}
}

// TestValidate tests rejection of unusable settings.
func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(c *Config) {}, ""},
		{"zero interval", func(c *Config) { c.Tracking.UpdateIntervalSeconds = 0 }, "update_interval_seconds"},
		{"negative backoff", func(c *Config) { c.Tracking.ErrorBackoffSeconds = -1 }, "error_backoff_seconds"},
		{"zero timeout", func(c *Config) { c.Feed.TimeoutSeconds = 0 }, "timeout_seconds"},
		{"negative rate", func(c *Config) { c.Feed.RequestsPerMinute = -5 }, "requests_per_minute"},
		{"unlimited rate", func(c *Config) { c.Feed.RequestsPerMinute = 0 }, ""},
		{"inverted region", func(c *Config) {
			c.Tracking.DefaultRegion = Region{LatMin: 52, LonMin: 0, LatMax: 51, LonMax: 1}
		}, "inverted"},
		{"region out of range", func(c *Config) {
			c.Tracking.DefaultRegion = Region{LatMin: -95, LonMin: 0, LatMax: 10, LonMax: 1}
		}, "out of range"},
		{"database without host", func(c *Config) {
			c.Database.Enabled = true
			c.Database.Host = ""
		}, "database.host"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()

			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Expected no error, got: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got: %v", tt.wantErr, err)
			}
		})
	}
}
