package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mrlokans/librarydesk/internal/app"
	"github.com/mrlokans/librarydesk/internal/config"
	http_controllers "github.com/mrlokans/librarydesk/internal/http"
	"github.com/mrlokans/librarydesk/internal/scheduler"
	"github.com/mrlokans/librarydesk/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until ctx is cancelled, then shuts it down
// within the configured timeout. onShutdown runs before the listener closes.
func Serve(ctx context.Context, handler http.Handler, cfg *config.Config, onShutdown ShutdownFunc) error {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", ln.Addr().String()).Msg("starting server")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	log.Info().Dur("timeout", timeout).Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Call shutdown callback first (e.g., to stop task queue)
	if onShutdown != nil {
		onShutdown(shutdownCtx)
	}

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	log.Info().Msg("server exiting")
	return nil
}

// Run wires the application with its background queue and scheduler and
// serves HTTP until SIGINT or SIGTERM.
func Run(cfg *config.Config, version string) error {
	log.Info().Str("version", version).Msg("starting library desk")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Error().Err(err).Msg("error closing database")
		}
	}()

	routerCfg := http_controllers.RouterConfig{
		Books:     a.Catalog,
		Members:   a.Memberships,
		Staff:     a.Staff,
		SignIns:   a.Ledger,
		Database:  a.DB,
		SignInLog: a.Ledger,
		Audit:     a.Audit,
		Version:   version,
	}

	var taskClient *tasks.Client
	var maintenance *scheduler.MaintenanceScheduler
	taskCtx, taskCancel := context.WithCancel(context.Background())
	defer taskCancel()

	if cfg.Tasks.Enabled {
		taskClient, err = startTasks(taskCtx, cfg, a)
		if err != nil {
			return err
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Error().Err(err).Msg("error closing task client")
			}
		}()
		routerCfg.Tasks = taskClient

		maintenance = scheduler.NewMaintenanceScheduler(taskClient, scheduler.JobsFromConfig(cfg)...)
		if err := maintenance.Start(taskCtx); err != nil {
			return err
		}
		routerCfg.Schedule = maintenance
	} else {
		log.Info().Msg("task queue disabled, maintenance jobs will not run")
	}

	router := http_controllers.NewRouter(routerCfg)

	// Shutdown callback for graceful cleanup
	onShutdown := func(ctx context.Context) {
		if maintenance != nil {
			maintenance.Stop()
		}
		if taskClient != nil {
			taskClient.Stop(ctx)
		}
		taskCancel()
	}

	return Serve(ctx, router, cfg, onShutdown)
}

func startTasks(ctx context.Context, cfg *config.Config, a *app.App) (*tasks.Client, error) {
	path := cfg.Tasks.DatabasePath
	if path == "" {
		path = tasks.DatabasePathFor(cfg.Database.Path)
	}

	client, err := tasks.NewClient(path, tasks.FromConfig(cfg.Tasks))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize task queue: %w", err)
	}

	client.Register(
		tasks.NewExportSignInReportQueue(a.Exporter),
		tasks.NewCleanupAuditEventsQueue(a.Audit),
	)
	client.Start(ctx)
	return client, nil
}
