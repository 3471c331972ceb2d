package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/ftcpit/scoutsync/internal/flagx"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Intervals are
// given in seconds.
type JsonConfig struct {
	Mode                string `json:"mode"`
	DatabasePath        string `json:"database_path"`
	EventCode           string `json:"event_code"`
	SubmitterID         string `json:"submitter_id"`
	RemoteURL           string `json:"remote_url"`
	RemoteKey           string `json:"remote_key"`
	HubURL              string `json:"hub_url"`
	DrainInterval       int    `json:"drain_interval"`
	OnlineCheckInterval int    `json:"online_check_interval"`
}

// parseJson overlays Config with values loaded from a JSON file.
//
// Lookup order for the JSON file path:
//  1. Command-line flags (-c or -config) via flagx.JsonConfigFlags().
//  2. If empty, no JSON is loaded and the function returns.
//
// Panics on read or unmarshal errors (caller should recover if desired).
// Intended usage is: defaults -> parseJson -> parseEnv -> parseFlags, where
// later stages override earlier ones.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.Mode != "" {
		cfg.Mode = jc.Mode
	}
	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.EventCode != "" {
		cfg.EventCode = jc.EventCode
	}
	if jc.SubmitterID != "" {
		cfg.SubmitterID = jc.SubmitterID
	}
	if jc.RemoteURL != "" {
		cfg.RemoteURL = jc.RemoteURL
	}
	if jc.RemoteKey != "" {
		cfg.RemoteKey = jc.RemoteKey
	}
	if jc.HubURL != "" {
		cfg.HubURL = jc.HubURL
	}
	if jc.DrainInterval > 0 {
		cfg.DrainInterval = time.Duration(jc.DrainInterval) * time.Second
	}
	if jc.OnlineCheckInterval > 0 {
		cfg.OnlineCheckInterval = time.Duration(jc.OnlineCheckInterval) * time.Second
	}
}
