package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/taskkeeper/internal/flagx"
	"github.com/dmitrijs2005/taskkeeper/internal/timex"
)

// JsonConfig is the on-disk shape of the server configuration. Durations use
// timex.Duration so both "90s" and integer nanoseconds are accepted.
type JsonConfig struct {
	HTTPAddr                    string         `json:"http_addr"`
	DatabaseDSN                 string         `json:"database_dsn"`
	SecretKey                   string         `json:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	RedisAddr                   string         `json:"redis_addr"`
	TaskCacheTTL                timex.Duration `json:"task_cache_ttl"`
	PasswordMaxLength           int            `json:"password_max_length"`
	CORSAllowedOrigin           string         `json:"cors_allowed_origin"`
	LogLevel                    string         `json:"log_level"`
}

// parseJson overlays values from the JSON file named by -c / -config.
// Keys absent from the file leave the current value untouched. An unreadable
// file or invalid JSON panics, as configuration errors are fatal at startup.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigPath(os.Args[1:])

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.RedisAddr, c.RedisAddr)
	setString(&config.CORSAllowedOrigin, c.CORSAllowedOrigin)
	setString(&config.LogLevel, c.LogLevel)

	if c.AccessTokenValidityDuration.Duration > 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.TaskCacheTTL.Duration > 0 {
		config.TaskCacheTTL = c.TaskCacheTTL.Duration
	}
	if c.PasswordMaxLength > 0 {
		config.PasswordMaxLength = c.PasswordMaxLength
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
