// internal/reconcile/reconciler.go
package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/amir-mohammad-HP/ws-cron/internal/crontab"
	"github.com/amir-mohammad-HP/ws-cron/internal/store"
	"github.com/amir-mohammad-HP/ws-cron/pkg/logger"
)

// Pass kinds reported to the Observer
const (
	KindUpdate = "update"
	KindStart  = "start"
	KindStop   = "stop"
)

// Scheduler reads and replaces the system crontab
type Scheduler interface {
	List(ctx context.Context) (string, error)
	Install(ctx context.Context, text string) error
}

// Registry is the source of per-container cron blocks
type Registry interface {
	Entries() ([]store.Entry, error)
	Get(container string) (string, error)
}

// Runtime reports which containers are running
type Runtime interface {
	RunningContainers(ctx context.Context) ([]string, error)
}

// Observer is notified after every reconciliation pass
type Observer interface {
	ObservePass(kind string, duration time.Duration, managedJobs int, err error)
}

type nopObserver struct{}

func (nopObserver) ObservePass(string, time.Duration, int, error) {}

// Reconciler merges container cron blocks into the system crontab.
//
// Every pass re-reads the installed crontab, the registry and the runtime;
// nothing is cached between passes. A Reconciler is not safe for concurrent
// use: callers run passes one at a time (see worker.Worker).
type Reconciler struct {
	marker    *crontab.Marker
	scheduler Scheduler
	registry  Registry
	runtime   Runtime
	logger    logger.Logger
	observer  Observer
}

// Option configures a Reconciler
type Option func(*Reconciler)

// WithObserver reports every pass to o
func WithObserver(o Observer) Option {
	return func(r *Reconciler) {
		if o != nil {
			r.observer = o
		}
	}
}

// New creates a Reconciler
func New(marker *crontab.Marker, scheduler Scheduler, registry Registry, runtime Runtime, log logger.Logger, opts ...Option) *Reconciler {
	r := &Reconciler{
		marker:    marker,
		scheduler: scheduler,
		registry:  registry,
		runtime:   runtime,
		logger:    log,
		observer:  nopObserver{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Update recomputes every managed job: all previously installed managed
// jobs are dropped and the blocks of running containers are appended in
// declaration order.
func (r *Reconciler) Update(ctx context.Context) (err error) {
	started := time.Now()
	managed := 0
	defer func() { r.observer.ObservePass(KindUpdate, time.Since(started), managed, err) }()

	current, tab := r.installed(ctx)
	tab.Filter(func(job crontab.Job) bool {
		return !job.Managed() && !job.Sentinel
	})

	entries, err := r.registry.Entries()
	if err != nil {
		return fmt.Errorf("failed to read container crontabs: %w", err)
	}

	names, err := r.runtime.RunningContainers(ctx)
	if err != nil {
		return fmt.Errorf("failed to list running containers: %w", err)
	}
	running := make(map[string]bool, len(names))
	for _, name := range names {
		running[name] = true
	}

	for _, entry := range entries {
		if !running[entry.Container] {
			r.logger.Debug("reconcile | skipping %s: not running", entry.Container)
			continue
		}

		jobs, err := r.containerJobs(entry.Container, entry.Crontab)
		if err != nil {
			return err
		}
		tab.Push(jobs...)
		managed += len(jobs)
	}

	return r.install(ctx, KindUpdate, current, tab)
}

// OnContainerStart replaces the managed jobs of name with its configured
// block. Running it twice installs the jobs once.
func (r *Reconciler) OnContainerStart(ctx context.Context, name string) (err error) {
	started := time.Now()
	managed := 0
	defer func() { r.observer.ObservePass(KindStart, time.Since(started), managed, err) }()

	current, tab := r.installed(ctx)
	tab.Filter(func(job crontab.Job) bool {
		return !job.Sentinel && job.Owner != name
	})

	block, err := r.registry.Get(name)
	if err != nil {
		return fmt.Errorf("failed to read crontab of %s: %w", name, err)
	}

	jobs, err := r.containerJobs(name, block)
	if err != nil {
		return err
	}
	tab.Push(jobs...)
	managed = countManaged(tab)

	return r.install(ctx, KindStart, current, tab)
}

// OnContainerStop removes every managed job of name
func (r *Reconciler) OnContainerStop(ctx context.Context, name string) (err error) {
	started := time.Now()
	managed := 0
	defer func() { r.observer.ObservePass(KindStop, time.Since(started), managed, err) }()

	current, tab := r.installed(ctx)
	tab.Filter(func(job crontab.Job) bool {
		return job.Owner != name
	})
	managed = countManaged(tab)

	return r.install(ctx, KindStop, current, tab)
}

// Installed returns the tagged system crontab. A missing crontab is empty.
func (r *Reconciler) Installed(ctx context.Context) *crontab.Crontab {
	_, tab := r.installed(ctx)
	return tab
}

func (r *Reconciler) installed(ctx context.Context) (string, *crontab.Crontab) {
	text, err := r.scheduler.List(ctx)
	if err != nil {
		// No crontab installed yet
		r.logger.Debug("reconcile | treating crontab as empty: %s", err)
		text = ""
	}
	return text, r.marker.ParseInstalled(text)
}

func (r *Reconciler) containerJobs(name, block string) ([]crontab.Job, error) {
	parsed, err := crontab.Parse(block)
	if err != nil {
		return nil, fmt.Errorf("crontab of container %s: %w", name, err)
	}
	return r.marker.ManageAll(name, parsed), nil
}

// install writes tab unless it is already what is installed. An empty
// crontab gets the sentinel job first.
func (r *Reconciler) install(ctx context.Context, kind, current string, tab *crontab.Crontab) error {
	if tab.JobCount() == 0 {
		tab.Push(r.marker.Sentinel())
	}

	text := tab.String()
	if text == current {
		r.logger.Debug("reconcile | %s: crontab unchanged", kind)
		return nil
	}

	if err := r.scheduler.Install(ctx, text); err != nil {
		return fmt.Errorf("failed to install crontab: %w", err)
	}

	r.logger.Info("reconcile | %s: installed crontab with %d jobs (%d managed)", kind, tab.JobCount(), countManaged(tab))
	return nil
}

func countManaged(tab *crontab.Crontab) int {
	n := 0
	for _, job := range tab.Jobs() {
		if job.Managed() {
			n++
		}
	}
	return n
}
