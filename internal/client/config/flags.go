package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
)

var valueFlags = []string{"-a", "-f", "-t"}

// Args returns the command line with every config flag removed, leaving the
// subcommand and its arguments.
func Args() []string {
	return flagx.Positional(os.Args[1:], append([]string{"-c", "-config"}, valueFlags...))
}

// parseFlags populates selected Config fields from command-line flags.
//
//	-a string   address and port of the gRPC endpoint
//	-f string   path of the local sqlite database
//	-t int      request timeout in seconds
//
// Only these flags are read from os.Args, so the subcommand and its
// arguments pass through untouched.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], valueFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	fs.StringVar(&cfg.DBPath, "f", cfg.DBPath, "local database file")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
}
