// Package config holds runtime settings for the scout hub process.
package config

// Config holds runtime settings for the hub.
//
// Fields:
//   - Address: listen address of the submission API (all interfaces).
//   - DatabasePath: path of the SQLite record store file.
type Config struct {
	Address      string
	DatabasePath string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.Address = ":3000"
	c.DatabasePath = "scouthub.db"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
