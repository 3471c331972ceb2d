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
//	-m string   operating mode: cloud or hub
//	-d string   SQLite queue database path
//	-e string   event code
//	-s string   submitter id
//	-r string   remote store base URL
//	-u string   hub base URL
//
// Note: The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-m", "-d", "-e", "-s", "-r", "-u"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.Mode, "m", cfg.Mode, "operating mode (cloud or hub)")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path to the queue database")
	fs.StringVar(&cfg.EventCode, "e", cfg.EventCode, "event code")
	fs.StringVar(&cfg.SubmitterID, "s", cfg.SubmitterID, "submitter id")
	fs.StringVar(&cfg.RemoteURL, "r", cfg.RemoteURL, "remote store base URL")
	fs.StringVar(&cfg.HubURL, "u", cfg.HubURL, "hub base URL")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
