// Package flagx helps several independent flag sets share one command line:
// each config loader keeps only the arguments it understands.
package flagx

import (
	"flag"
	"strings"
)

// FilterArgs returns the subset of args that belong to allowedFlags, keeping
// values that follow a flag as a separate argument.
//
// Flags are compared by name, so "-c", "--c" and "-c=x" all match an allowed
// "-c", mirroring how the standard flag package treats one and two dashes.
// The result is never nil.
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[flagName(f)] = struct{}{}
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") {
			continue
		}

		name, _, hasValue := strings.Cut(arg, "=")
		if _, ok := allowed[flagName(name)]; !ok {
			continue
		}

		filtered = append(filtered, arg)
		if hasValue {
			continue
		}

		// value as the next argument, unless it looks like another flag
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			filtered = append(filtered, args[i+1])
			i++
		}
	}

	return filtered
}

func flagName(f string) string {
	return strings.TrimLeft(f, "-")
}

// ConfigPath extracts the JSON config file path given with -c or -config.
// Other arguments are ignored. Returns "" when neither flag is present.
func ConfigPath(args []string) string {
	var path string

	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.StringVar(&path, "config", "", "path to JSON config file")
	fs.StringVar(&path, "c", "", "path to JSON config file (short)")
	_ = fs.Parse(FilterArgs(args, []string{"-c", "-config"}))

	return path
}
