package config

import "time"

// Config holds runtime settings for the taskkeeper terminal client.
//
// Units: RequestTimeout and OnlineCheckInterval are time.Duration.
type Config struct {
	ServerURL           string
	SessionDB           string
	PageSize            int
	RequestTimeout      time.Duration
	PasswordMaxLength   int
	OnlineCheckInterval time.Duration
	LogLevel            string
}

// LoadDefaults populates c with defaults. PageSize matches the dashboard of
// the web client this replaces.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:5000"
	c.SessionDB = "taskkeeper.db"
	c.PageSize = 2
	c.RequestTimeout = 10 * time.Second
	c.PasswordMaxLength = 5
	c.OnlineCheckInterval = 3 * time.Second
	c.LogLevel = "warn"
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
