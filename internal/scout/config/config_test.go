package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ftcpit/scoutsync/internal/common"
)

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	assert.Equal(t, ModeCloud, cfg.Mode)
	assert.Equal(t, "scoutqueue.db", cfg.DatabasePath)
	assert.Equal(t, "http://localhost:3000", cfg.HubURL)
	assert.Equal(t, 30*time.Second, cfg.DrainInterval)
	assert.Equal(t, 5*time.Second, cfg.OnlineCheckInterval)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"cloud with remote url", func(c *Config) {
			c.Mode = ModeCloud
			c.RemoteURL = "https://store.example.com"
		}, false},
		{"cloud without remote url", func(c *Config) {
			c.Mode = ModeCloud
		}, true},
		{"hub with hub url", func(c *Config) {
			c.Mode = ModeHub
		}, false},
		{"hub without hub url", func(c *Config) {
			c.Mode = ModeHub
			c.HubURL = ""
		}, true},
		{"unknown mode", func(c *Config) {
			c.Mode = "both"
			c.RemoteURL = "https://store.example.com"
		}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			cfg.LoadDefaults()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, common.ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := writeTempJSON(t, map[string]any{
		"mode":           "hub",
		"database_path":  "/data/queue.db",
		"event_code":     "CAOC",
		"submitter_id":   "scout-7",
		"hub_url":        "http://hub.local:3000",
		"drain_interval": 60,
	})

	t.Run("loads from flags", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", path}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, ModeHub, cfg.Mode)
		assert.Equal(t, "/data/queue.db", cfg.DatabasePath)
		assert.Equal(t, "CAOC", cfg.EventCode)
		assert.Equal(t, "scout-7", cfg.SubmitterID)
		assert.Equal(t, "http://hub.local:3000", cfg.HubURL)
		assert.Equal(t, time.Minute, cfg.DrainInterval)
		assert.Equal(t, 5*time.Second, cfg.OnlineCheckInterval)
	})

	t.Run("no config flag leaves values untouched", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{Mode: ModeCloud, DatabasePath: "x.db"}
		parseJson(cfg)

		assert.Equal(t, ModeCloud, cfg.Mode)
		assert.Equal(t, "x.db", cfg.DatabasePath)
	})

	t.Run("invalid JSON panics", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ not json`), 0o600))

		os.Args = []string{"testbin", "-config", bad}
		require.Panics(t, func() { parseJson(&Config{}) })
	})
}

func Test_parseEnv_Overrides(t *testing.T) {
	t.Setenv("REMOTE_STORE_URL", "https://store.example.com")
	t.Setenv("REMOTE_STORE_KEY", "secret-key")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	assert.Equal(t, "https://store.example.com", cfg.RemoteURL)
	assert.Equal(t, "secret-key", cfg.RemoteKey)
}

func Test_parseFlags_Overrides(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	os.Args = []string{"testbin", "-m", "hub", "-e", "TXHOU", "-u", "http://hub.local:3000"}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseFlags(cfg)

	assert.Equal(t, ModeHub, cfg.Mode)
	assert.Equal(t, "TXHOU", cfg.EventCode)
	assert.Equal(t, "http://hub.local:3000", cfg.HubURL)
}
