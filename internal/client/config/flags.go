package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the taskkeeper server
//	-f string   path of the local session database
//	-n int      tasks per page
//	-w int      request timeout (seconds)
//	-p int      maximum password length accepted on registration
//	-i int      online check interval (seconds)
//	-l string   log level
//
// Only the flags above are passed to the FlagSet, see flagx.FilterArgs.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-f", "-n", "-w", "-p", "-i", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "server base URL")
	fs.StringVar(&cfg.SessionDB, "f", cfg.SessionDB, "session database file")
	fs.IntVar(&cfg.PageSize, "n", cfg.PageSize, "tasks per page")
	requestTimeout := fs.Int("w", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.IntVar(&cfg.PasswordMaxLength, "p", cfg.PasswordMaxLength, "maximum password length")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*requestTimeout) * time.Second
	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
}
