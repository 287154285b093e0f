// Package metrics exposes reconciliation metrics of the process daemon
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ws_cron"

// Metrics records reconciliation passes and container events. It
// implements reconcile.Observer.
type Metrics struct {
	registry         *prometheus.Registry
	reconcileTotal   *prometheus.CounterVec
	reconcileSeconds *prometheus.HistogramVec
	managedJobs      prometheus.Gauge
	eventsTotal      *prometheus.CounterVec

	mu       sync.RWMutex
	lastErr  error
	lastPass time.Time
}

// New creates the collectors on a dedicated registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		reconcileTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reconcile_total",
				Help:      "Reconciliation passes by kind and result",
			},
			[]string{"kind", "result"},
		),
		reconcileSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "reconcile_duration_seconds",
				Help:      "Duration of reconciliation passes",
				Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"kind"},
		),
		managedJobs: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "managed_jobs",
				Help:      "Managed jobs in the installed crontab after the last successful pass",
			},
		),
		eventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_total",
				Help:      "Container lifecycle events handled",
			},
			[]string{"action"},
		),
	}

	m.registry.MustRegister(
		m.reconcileTotal,
		m.reconcileSeconds,
		m.managedJobs,
		m.eventsTotal,
	)
	return m
}

// Registry returns the registry holding the collectors
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObservePass records one reconciliation pass
func (m *Metrics) ObservePass(kind string, duration time.Duration, managedJobs int, err error) {
	result := "success"
	if err != nil {
		result = "error"
	} else {
		m.managedJobs.Set(float64(managedJobs))
	}
	m.reconcileTotal.WithLabelValues(kind, result).Inc()
	m.reconcileSeconds.WithLabelValues(kind).Observe(duration.Seconds())

	m.mu.Lock()
	m.lastErr = err
	m.lastPass = time.Now()
	m.mu.Unlock()
}

// ObserveEvent counts a container lifecycle event
func (m *Metrics) ObserveEvent(action string) {
	m.eventsTotal.WithLabelValues(action).Inc()
}

// LastPass returns the time and error of the most recent pass
func (m *Metrics) LastPass() (time.Time, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastPass, m.lastErr
}
