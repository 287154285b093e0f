package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/coreos/go-systemd/v22/daemon"

	"github.com/amir-mohammad-HP/ws-cron/internal/crontab"
	"github.com/amir-mohammad-HP/ws-cron/internal/metrics"
	"github.com/amir-mohammad-HP/ws-cron/internal/reconcile"
	"github.com/amir-mohammad-HP/ws-cron/internal/signals"
	"github.com/amir-mohammad-HP/ws-cron/internal/store"
	"github.com/amir-mohammad-HP/ws-cron/internal/systemcron"
	"github.com/amir-mohammad-HP/ws-cron/internal/types"
	"github.com/amir-mohammad-HP/ws-cron/internal/worker"
	"github.com/amir-mohammad-HP/ws-cron/pkg/docker"
	"github.com/amir-mohammad-HP/ws-cron/pkg/logger"
	"github.com/amir-mohammad-HP/ws-cron/pkg/shutdown"
)

// ContainerRuntime is the part of the container engine the commands use
type ContainerRuntime interface {
	RunningContainers(ctx context.Context) ([]string, error)
	Subscribe(ctx context.Context) (<-chan docker.ContainerEvent, <-chan error)
	Exec(ctx context.Context, name string, args []string, onLine func(string)) error
	Close() error
}

// App wires configuration, storage, the system crontab and the container
// runtime into the commands of the CLI.
type App struct {
	config    *types.Config
	logger    logger.Logger
	marker    *crontab.Marker
	store     *store.Store
	scheduler reconcile.Scheduler
	jobLog    *logger.JobLog
	runtime   ContainerRuntime
	notify    func(state string)

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	wg sync.WaitGroup
}

type Option func(*App)

// WithRuntime replaces the docker connection
func WithRuntime(rt ContainerRuntime) Option {
	return func(a *App) {
		a.runtime = rt
	}
}

// WithScheduler replaces the system crontab
func WithScheduler(s reconcile.Scheduler) Option {
	return func(a *App) {
		a.scheduler = s
	}
}

func WithIO(stdin io.Reader, stdout, stderr io.Writer) Option {
	return func(a *App) {
		a.stdin = stdin
		a.stdout = stdout
		a.stderr = stderr
	}
}

func New(cfg *types.Config, log logger.Logger, opts ...Option) *App {
	a := &App{
		config: cfg,
		logger: log,
		marker: crontab.NewMarker(cfg.Tool),
		store:  store.NewInDir(cfg.DataDir),
		scheduler: systemcron.New(cfg.Crontab.Binary,
			systemcron.WithTempDir(cfg.Crontab.TmpDir)),
		jobLog: logger.NewJobLog(cfg.JobLog.Path),
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	a.notify = a.sdNotify
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Close releases the docker connection and the job log
func (a *App) Close() error {
	var errs []error
	if a.runtime != nil {
		errs = append(errs, a.runtime.Close())
	}
	errs = append(errs, a.jobLog.Close())
	return errors.Join(errs...)
}

func (a *App) containerRuntime(ctx context.Context) (ContainerRuntime, error) {
	if a.runtime != nil {
		return a.runtime, nil
	}
	m, err := docker.NewMonitor(ctx, &a.config.Docker, a.logger)
	if err != nil {
		return nil, err
	}
	a.runtime = m
	return m, nil
}

func (a *App) reconciler(ctx context.Context, opts ...reconcile.Option) (*reconcile.Reconciler, ContainerRuntime, error) {
	rt, err := a.containerRuntime(ctx)
	if err != nil {
		return nil, nil, err
	}
	return reconcile.New(a.marker, a.scheduler, a.store, rt, a.logger, opts...), rt, nil
}

// Process runs the bootstrap pass and then follows container events until
// a termination signal or ctx cancellation. The installed crontab is left
// in place on exit.
func (a *App) Process(ctx context.Context) error {
	a.logger.Info("Starting %s process", a.config.AppName)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := metrics.New()
	rec, rt, err := a.reconciler(ctx, reconcile.WithObserver(m))
	if err != nil {
		return err
	}

	w := worker.New(a.config, a.logger, rec, rt,
		worker.WithObserver(m),
		worker.WithReady(func() { a.notify(daemon.SdNotifyReady) }),
	)

	manager := shutdown.NewManager(a.logger, a.config.Shutdown.Timeout)
	handler := signals.NewHandler(a.logger)

	go handler.Handle(ctx, func() {
		a.logger.Info("Received shutdown signal")
		manager.Initiate()
	})
	go func() {
		select {
		case <-ctx.Done():
			manager.Initiate()
		case <-manager.Done():
		}
	}()

	manager.RegisterTask("systemd", func() error {
		a.notify(daemon.SdNotifyStopping)
		return nil
	})
	manager.RegisterTask("worker", w.Stop)

	if addr := a.config.Metrics.Listen; addr != "" {
		srv := metrics.NewServer(addr, m, a.logger)
		if err := srv.Start(); err != nil {
			return err
		}
		manager.RegisterTask("metrics", func() error {
			stopCtx, stop := context.WithTimeout(context.Background(), a.config.Shutdown.Timeout)
			defer stop()
			return srv.Stop(stopCtx)
		})
	}

	if err := w.Start(ctx, &a.wg); err != nil {
		return err
	}

	err = manager.Wait(context.Background())
	cancel()
	a.wg.Wait()

	a.logger.Info("Process shutdown complete")
	return err
}

// Update runs one full reconciliation pass
func (a *App) Update(ctx context.Context) error {
	rec, _, err := a.reconciler(ctx)
	if err != nil {
		return err
	}
	return rec.Update(ctx)
}

// Set validates and stores the cron block of a container, then updates
// the system crontab.
func (a *App) Set(ctx context.Context, container, text string) error {
	if container == "" {
		return errors.New("container name is required")
	}
	if _, err := crontab.Parse(text); err != nil {
		return fmt.Errorf("invalid crontab for %s: %w", container, err)
	}
	if err := a.store.Set(container, text); err != nil {
		return err
	}
	a.logger.Debug("app | saved crontab for %s", container)
	return a.Update(ctx)
}

func (a *App) sdNotify(state string) {
	sent, err := daemon.SdNotify(false, state)
	if err != nil {
		a.logger.Warn("app | sd_notify %s failed: %s", state, err)
		return
	}
	if sent {
		a.logger.Debug("app | sd_notify %s", state)
	}
}
