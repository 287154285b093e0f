package worker

import (
	"context"
	"sync"
	"time"

	"github.com/amir-mohammad-HP/ws-cron/internal/types"
	"github.com/amir-mohammad-HP/ws-cron/pkg/docker"
	"github.com/amir-mohammad-HP/ws-cron/pkg/logger"
)

// Reconciler applies reconciliation passes
type Reconciler interface {
	Update(ctx context.Context) error
	OnContainerStart(ctx context.Context, name string) error
	OnContainerStop(ctx context.Context, name string) error
}

// EventSource streams container lifecycle events
type EventSource interface {
	Subscribe(ctx context.Context) (<-chan docker.ContainerEvent, <-chan error)
}

// EventObserver is told about every handled event
type EventObserver interface {
	ObserveEvent(action string)
}

// Worker is the single writer of the system crontab in process mode. It
// runs a full pass on start, then handles container events one at a time
// in arrival order, each to completion before the next.
type Worker struct {
	config     *types.Config
	logger     logger.Logger
	reconciler Reconciler
	events     EventSource
	observer   EventObserver
	ready      func()
	shutdown   chan struct{}
	stopOnce   sync.Once
}

// Option configures a Worker
type Option func(*Worker)

// WithObserver reports handled events to o
func WithObserver(o EventObserver) Option {
	return func(w *Worker) {
		w.observer = o
	}
}

// WithReady calls fn once the bootstrap pass has run
func WithReady(fn func()) Option {
	return func(w *Worker) {
		w.ready = fn
	}
}

func New(cfg *types.Config, logger logger.Logger, reconciler Reconciler, events EventSource, opts ...Option) *Worker {
	w := &Worker{
		config:     cfg,
		logger:     logger,
		reconciler: reconciler,
		events:     events,
		shutdown:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start runs the bootstrap pass and starts the event loop. The loop
// subscribes before the bootstrap pass so no event is lost in between.
func (w *Worker) Start(ctx context.Context, wg *sync.WaitGroup) error {
	w.logger.Info("Starting worker")

	subCtx, cancel := context.WithCancel(ctx)
	events, errs := w.events.Subscribe(subCtx)

	w.pass(ctx, "bootstrap", w.reconciler.Update)
	if w.ready != nil {
		w.ready()
	}

	wg.Add(1)
	go w.run(ctx, wg, subscription{events: events, errs: errs, cancel: cancel})

	return nil
}

// Stop ends the event loop. The installed crontab stays in effect.
func (w *Worker) Stop() error {
	w.stopOnce.Do(func() {
		w.logger.Info("Stopping worker")
		close(w.shutdown)
	})
	return nil
}

type subscription struct {
	events <-chan docker.ContainerEvent
	errs   <-chan error
	cancel context.CancelFunc
}

func (w *Worker) run(ctx context.Context, wg *sync.WaitGroup, sub subscription) {
	defer wg.Done()
	defer w.logger.Debug("worker | stopped")
	defer func() { sub.cancel() }()

	w.logger.Info("Worker main loop started")

	var resync <-chan time.Time
	if interval := w.config.Worker.ResyncInterval; interval > 0 {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		resync = ticker.C
	}

	var reconnect <-chan time.Time
	scheduleReconnect := func() {
		if reconnect == nil {
			reconnect = time.After(w.config.Docker.ReconnectDelay)
		}
	}

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Worker received context cancellation")
			return
		case <-w.shutdown:
			w.logger.Info("Worker received shutdown signal")
			return
		case event, ok := <-sub.events:
			if !ok {
				sub.events = nil
				scheduleReconnect()
				continue
			}
			w.handleEvent(ctx, event)
		case err := <-sub.errs:
			sub.errs = nil
			if err != nil {
				w.logger.Error("worker | event stream failed, resubscribing in %s: %s", w.config.Docker.ReconnectDelay, err)
			}
			scheduleReconnect()
		case <-reconnect:
			reconnect = nil
			sub.cancel()
			subCtx, cancel := context.WithCancel(ctx)
			events, errs := w.events.Subscribe(subCtx)
			sub = subscription{events: events, errs: errs, cancel: cancel}
			// Events may have been missed while disconnected
			w.pass(ctx, "resubscribe", w.reconciler.Update)
		case <-resync:
			w.pass(ctx, "resync", w.reconciler.Update)
		}
	}
}

func (w *Worker) handleEvent(ctx context.Context, event docker.ContainerEvent) {
	log := w.logger.WithFields(map[string]any{
		"action":    event.Action,
		"container": event.Name,
	})
	log.Debug("worker | container event")

	if w.observer != nil {
		w.observer.ObserveEvent(event.Action)
	}

	var err error
	switch event.Action {
	case docker.ActionStart:
		err = w.reconciler.OnContainerStart(ctx, event.Name)
	case docker.ActionStop:
		err = w.reconciler.OnContainerStop(ctx, event.Name)
	default:
		return
	}
	if err != nil {
		log.Error("worker | reconcile failed: %s", err)
	}
}

func (w *Worker) pass(ctx context.Context, reason string, fn func(context.Context) error) {
	w.logger.Debug("worker | full pass (%s)", reason)
	if err := fn(ctx); err != nil {
		w.logger.Error("worker | %s pass failed: %s", reason, err)
	}
}
