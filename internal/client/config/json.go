package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/taskkeeper/internal/flagx"
	"github.com/dmitrijs2005/taskkeeper/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Intervals
// are timex.Duration, so "3s" and integer nanoseconds both work.
type JsonConfig struct {
	ServerURL           string         `json:"server_url"`
	SessionDB           string         `json:"session_db"`
	PageSize            int            `json:"page_size"`
	RequestTimeout      timex.Duration `json:"request_timeout"`
	PasswordMaxLength   int            `json:"password_max_length"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	LogLevel            string         `json:"log_level"`
}

// parseJson overlays Config with values from the file named by -c/-config.
// Zero values in the file are ignored. Read or unmarshal errors panic.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.ConfigPath(os.Args[1:])
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

	if jc.ServerURL != "" {
		cfg.ServerURL = jc.ServerURL
	}
	if jc.SessionDB != "" {
		cfg.SessionDB = jc.SessionDB
	}
	if jc.PageSize > 0 {
		cfg.PageSize = jc.PageSize
	}
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.PasswordMaxLength > 0 {
		cfg.PasswordMaxLength = jc.PasswordMaxLength
	}
	if jc.OnlineCheckInterval.Duration > 0 {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
}
