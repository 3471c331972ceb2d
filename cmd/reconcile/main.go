// Command reconcile pushes a hub's unsynced records to the authoritative
// remote store. Run it from the hub machine once it is back on a network
// with internet access.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ftcpit/scoutsync/internal/hubclient"
	"github.com/ftcpit/scoutsync/internal/logging"
	"github.com/ftcpit/scoutsync/internal/reconcile"
	"github.com/ftcpit/scoutsync/internal/remote"
)

var (
	localURL string
	pgDSN    string
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Push a hub's unsynced scouting records to the remote store",
		Long: `Reconcile fetches every unsynced record from a hub's local submission API,
upserts each one into the remote store keyed on its natural conflict key,
and marks the successfully pushed records synced on the hub.

The remote store is selected by environment:

  REMOTE_STORE_URL and REMOTE_STORE_KEY   HTTP remote store
  --pg-dsn                                direct Postgres connection

Records that fail to push stay unsynced and are retried on the next run.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}

	cmd.Flags().StringVar(&localURL, "local-url", "", "hub base URL (default $LOCAL_SERVER_URL or http://localhost:3000)")
	cmd.Flags().StringVar(&pgDSN, "pg-dsn", "", "Postgres DSN for a direct remote store connection")

	return cmd
}

func resolveLocalURL() string {
	if localURL != "" {
		return localURL
	}
	if v := os.Getenv("LOCAL_SERVER_URL"); v != "" {
		return v
	}
	return "http://localhost:3000"
}

func openRemote() (remote.Store, error) {
	if pgDSN != "" {
		return remote.OpenPostgresStore(pgDSN)
	}

	url := os.Getenv("REMOTE_STORE_URL")
	key := os.Getenv("REMOTE_STORE_KEY")
	if url == "" || key == "" {
		return nil, fmt.Errorf("no remote store configured: set REMOTE_STORE_URL and REMOTE_STORE_KEY, or pass --pg-dsn")
	}
	return remote.NewHTTPStore(url, key), nil
}

func run(cmd *cobra.Command, args []string) error {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	store, err := openRemote()
	if err != nil {
		return err
	}
	defer store.Close()

	hub := hubclient.NewClient(resolveLocalURL())
	rec := reconcile.NewReconciler(hub, store, logger)

	sum, err := rec.Run(cmd.Context())
	if err != nil {
		return err
	}
	if sum.Failed > 0 {
		return fmt.Errorf("%d of %d records failed to push", sum.Failed, sum.Fetched)
	}
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
