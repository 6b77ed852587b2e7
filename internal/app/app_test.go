package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unklstewy/skytrack/pkg/config"
)

func TestLoadConfigValidates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"tracking": {"update_interval_seconds": -1}}`), 0644))

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.Equal(t, 60*time.Second, TrackerConfig(cfg).UpdateInterval)
	assert.Equal(t, 5*time.Second, TrackerConfig(cfg).ErrorBackoff)
	assert.True(t, DefaultRegion(cfg).Valid())
}

func TestNewFeedUsesConfig(t *testing.T) {
	var gotUser, gotPass string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, gotPass, _ = r.BasicAuth()
		assert.Equal(t, "/states/all", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"time": 1700000000,
			"states": [][]any{
				{"abc123", "BA123 ", "UK", 1700000000, 1700000000, -0.5, 51.5, 10000.0, false, 250.0, 90.0, 0.0, nil, nil, nil, false, 0},
			},
		})
	}))
	defer srv.Close()

	cfg := config.DefaultConfig()
	cfg.Feed.BaseURL = srv.URL
	cfg.Feed.Username = "alice"
	cfg.Feed.Password = "secret"
	cfg.Feed.RequestsPerMinute = 0

	feed := NewFeed(cfg.Feed)
	resp, err := feed.FetchAll(context.Background(), nil, 0)
	require.NoError(t, err)
	require.Len(t, resp.States, 1)
	assert.Equal(t, "alice", gotUser)
	assert.Equal(t, "secret", gotPass)

	cfg.Feed.RefineByAircraft = false
	repo := NewRepository(cfg, feed)
	res := repo.FlightInfo(context.Background(), "BA123")
	assert.False(t, res.Simulated)
	assert.Equal(t, "BA123", res.Status.FlightNumber)
}
