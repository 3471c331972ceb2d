package config

import (
	"flag"
	"os"

	"github.com/ftcpit/scoutsync/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   listen address (default from Config)
//	-d string   SQLite database path (default from Config)
//
// Note: The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.Address, "a", cfg.Address, "address and port to listen on")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path to the record store database")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
