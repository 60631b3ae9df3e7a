// Package flagx helps several packages share one command line without
// tripping over each other's flags.
package flagx

import (
	"flag"
	"io"
	"os"
	"strings"
)

// FilterArgs keeps only the arguments that belong to the named flags, so a
// package can run its own flag.FlagSet over a command line shared with
// others. Both "-k value" and "-k=value" forms are recognized. A value is
// taken from the next argument unless that argument starts with a dash.
func FilterArgs(args []string, names []string) []string {
	known := make(map[string]bool, len(names))
	for _, n := range names {
		known[n] = true
	}

	out := []string{}
	for i := 0; i < len(args); i++ {
		if name, _, hasValue := strings.Cut(args[i], "="); hasValue && strings.HasPrefix(name, "-") {
			if known[name] {
				out = append(out, args[i])
			}
			continue
		}
		if !known[args[i]] {
			continue
		}
		out = append(out, args[i])
		if next := i + 1; next < len(args) && !strings.HasPrefix(args[next], "-") {
			out = append(out, args[next])
			i = next
		}
	}
	return out
}

// ConfigFileFlag returns the config file path given via -c or -config, or an
// empty string when neither is present. Other arguments are ignored so that
// each config package can parse its own flags independently.
func ConfigFileFlag() string {
	var path string

	args := FilterArgs(os.Args[1:], []string{"-c", "-config"})

	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&path, "config", "", "path to config file (JSON or YAML)")
	fs.StringVar(&path, "c", "", "path to config file (short)")
	_ = fs.Parse(args)

	return path
}
