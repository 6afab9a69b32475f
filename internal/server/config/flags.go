package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/flagx"
)

// parseFlags populates server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":5000")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-r string   Redis address for the task cache ("" disables it)
//	-T int      task cache TTL, seconds
//	-p int      maximum registration password length
//	-o string   CORS allowed origin
//	-l string   log level
//
// Duration flags are integers in the stated unit.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-t", "-r", "-T", "-p", "-o", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")

	fs.StringVar(&config.RedisAddr, "r", config.RedisAddr, "redis address for the task cache")
	taskCacheTTL := fs.Int("T", int(config.TaskCacheTTL.Seconds()), "task_cache_ttl (in seconds)")

	fs.IntVar(&config.PasswordMaxLength, "p", config.PasswordMaxLength, "maximum password length")
	fs.StringVar(&config.CORSAllowedOrigin, "o", config.CORSAllowedOrigin, "CORS allowed origin")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
	config.TaskCacheTTL = time.Duration(*taskCacheTTL) * time.Second
}
