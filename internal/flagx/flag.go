// Package flagx helps several configuration layers share os.Args without
// tripping over each other's flags.
package flagx

import (
	"flag"
	"os"
	"strings"
)

// FilterArgs returns the subset of args that belongs to allowedFlags,
// keeping each flag's value when it is passed as a separate argument.
//
// Both "-c conf.json" and "--config=conf.json" forms are recognised. A
// following argument that starts with "-" is never consumed as a value.
func FilterArgs(args []string, allowedFlags []string) []string {
	matched, _ := splitArgs(args, allowedFlags)
	return matched
}

// Positional is the complement of FilterArgs: args with every flag in
// knownFlags, and its value, removed.
func Positional(args []string, knownFlags []string) []string {
	_, rest := splitArgs(args, knownFlags)
	return rest
}

func splitArgs(args []string, flags []string) (matched, rest []string) {
	known := make(map[string]struct{}, len(flags))
	for _, f := range flags {
		known[f] = struct{}{}
	}

	matched = make([]string, 0, len(args))
	rest = make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		name := arg
		if strings.HasPrefix(arg, "-") {
			name, _, _ = strings.Cut(arg, "=")
		}
		if _, ok := known[name]; !ok {
			rest = append(rest, arg)
			continue
		}

		matched = append(matched, arg)
		if name == arg && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			matched = append(matched, args[i+1])
			i++
		}
	}

	return matched, rest
}

// ConfigFileFlag returns the path given with -c or -config, or "" when
// neither is present. Other arguments are ignored.
func ConfigFileFlag() string {
	var config string

	args := FilterArgs(os.Args[1:], []string{"-c", "-config"})

	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.StringVar(&config, "config", "", "Path to config file")
	fs.StringVar(&config, "c", "", "Path to config file (short)")
	_ = fs.Parse(args)

	return config
}
