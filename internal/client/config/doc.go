// Package config loads runtime configuration for the taskkeeper client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// # JSON schema
//
//	{
//	  "server_url": "http://127.0.0.1:5000",
//	  "session_db": "taskkeeper.db",
//	  "page_size": 2,
//	  "request_timeout": "10s",
//	  "password_max_length": 5,
//	  "online_check_interval": "3s",
//	  "log_level": "warn"
//	}
package config
