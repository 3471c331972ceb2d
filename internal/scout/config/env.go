package config

import "os"

// parseEnv overlays remote store credentials from the environment.
func parseEnv(cfg *Config) {
	if v := os.Getenv("REMOTE_STORE_URL"); v != "" {
		cfg.RemoteURL = v
	}
	if v := os.Getenv("REMOTE_STORE_KEY"); v != "" {
		cfg.RemoteKey = v
	}
}
