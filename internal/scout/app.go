package scout

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/ftcpit/scoutsync/internal/hubclient"
	"github.com/ftcpit/scoutsync/internal/logging"
	"github.com/ftcpit/scoutsync/internal/remote"
	"github.com/ftcpit/scoutsync/internal/scout/config"
	"github.com/ftcpit/scoutsync/internal/scout/models"
	"github.com/ftcpit/scoutsync/internal/scout/services"
)

// App is one scouting device process. It reads submissions as JSON lines on
// stdin and delivers them over the configured sync path: buffered through the
// offline queue in cloud mode, or straight to a local hub in hub mode.
type App struct {
	config *config.Config
	logger logging.Logger
	queue  *Queue
	remote remote.Store
	hub    *hubclient.Client
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	slogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slogger)

	queue, err := OpenQueue(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("queue init error: %w", err)
	}

	app := &App{config: c, logger: logger, queue: queue}

	switch c.Mode {
	case config.ModeCloud:
		app.remote = remote.NewHTTPStore(c.RemoteURL, c.RemoteKey)
	case config.ModeHub:
		app.hub = hubclient.NewClient(c.HubURL)
	}

	return app, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting scout client...",
		"mode", app.config.Mode, "db", app.config.DatabasePath)

	app.initSignalHandler(cancelFunc)

	if removed, err := app.queue.Sweep(ctx); err != nil {
		app.logger.Warn(ctx, "queue sweep failed", "error", err)
	} else if removed > 0 {
		app.logger.Info(ctx, "pruned synced entries", "count", removed)
	}

	var wg sync.WaitGroup

	if app.config.Mode == config.ModeCloud {
		syncer := services.NewSyncService(app.queue, app.remote, app.logger)
		if app.config.EventCode != "" {
			syncer.TrackEvent(app.config.EventCode)
		}

		wg.Add(2)
		go func() {
			defer wg.Done()
			syncer.StartPeriodicDrain(ctx, app.config.DrainInterval)
		}()
		go func() {
			defer wg.Done()
			syncer.StartOnlineStatusWatcher(ctx, app.config.OnlineCheckInterval)
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.readSubmissions(ctx, os.Stdin)
		cancelFunc()
	}()

	wg.Wait()

	if app.remote != nil {
		_ = app.remote.Close()
	}
	if err := app.queue.Close(); err != nil {
		app.logger.Error(ctx, "error closing queue", "error", err)
	}
}

// readSubmissions consumes one JSON payload per line until EOF or cancel.
func (app *App) readSubmissions(ctx context.Context, r io.Reader) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if err := app.submit(ctx, line); err != nil {
			app.logger.Warn(ctx, "submission rejected", "error", err)
		}
	}
	if err := scanner.Err(); err != nil {
		app.logger.Error(ctx, "stdin read failed", "error", err)
	}
}

func (app *App) submit(ctx context.Context, payload []byte) error {
	if app.config.Mode == config.ModeHub {
		// validate the conflict key before handing the payload to the hub
		if _, err := remote.ParseRecord(payload); err != nil {
			return err
		}
		id := models.NewLocalID(time.Now())
		if err := app.hub.Submit(ctx, id, payload); err != nil {
			return err
		}
		app.logger.Info(ctx, "submitted to hub", "id", id)
		return nil
	}

	entry, err := app.queue.Enqueue(ctx, payload)
	if err != nil {
		return err
	}
	app.logger.Info(ctx, "queued submission", "local_id", entry.LocalID)
	return nil
}
