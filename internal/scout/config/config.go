// Package config holds runtime settings for the scouting device client.
package config

import (
	"fmt"
	"time"

	"github.com/ftcpit/scoutsync/internal/common"
)

// Operating modes. The client targets exactly one sync path at a time:
// cloud mode drains the offline queue straight to the remote store, hub mode
// submits to a local hub on the event network.
const (
	ModeCloud = "cloud"
	ModeHub   = "hub"
)

// Config holds runtime settings for the scout client.
//
// Fields:
//   - Mode: "cloud" or "hub".
//   - DatabasePath: path of the SQLite queue file.
//   - EventCode: event the device is scouting at.
//   - SubmitterID: identity recorded on hub submissions.
//   - RemoteURL / RemoteKey: remote store endpoint and API key (cloud mode).
//   - HubURL: base URL of the local hub (hub mode).
//   - DrainInterval: how often the periodic drain pass runs.
//   - OnlineCheckInterval: how often connectivity is probed.
type Config struct {
	Mode                string
	DatabasePath        string
	EventCode           string
	SubmitterID         string
	RemoteURL           string
	RemoteKey           string
	HubURL              string
	DrainInterval       time.Duration
	OnlineCheckInterval time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.Mode = ModeCloud
	c.DatabasePath = "scoutqueue.db"
	c.HubURL = "http://localhost:3000"
	c.DrainInterval = 30 * time.Second
	c.OnlineCheckInterval = 5 * time.Second
}

// Validate rejects configurations that would leave the client with no usable
// sync path. Mixing the paths is not supported: a device is either on the
// event network talking to a hub, or on the internet talking to the remote.
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeCloud:
		if c.RemoteURL == "" {
			return fmt.Errorf("%w: cloud mode requires a remote store URL", common.ErrValidation)
		}
	case ModeHub:
		if c.HubURL == "" {
			return fmt.Errorf("%w: hub mode requires a hub URL", common.ErrValidation)
		}
	default:
		return fmt.Errorf("%w: unknown mode %q (want %q or %q)", common.ErrValidation, c.Mode, ModeCloud, ModeHub)
	}
	return nil
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), environment variables and command-line flags. Later
// sources take precedence over earlier ones.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
