package shutdown

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/amir-mohammad-HP/ws-cron/pkg/logger"
)

const DefaultTimeout = 30 * time.Second

type Task func() error

type namedTask struct {
	name string
	task Task
}

// Manager runs registered cleanup tasks once shutdown is initiated.
// Tasks run in registration order.
type Manager struct {
	logger   logger.Logger
	mu       sync.Mutex
	tasks    []namedTask
	shutdown chan struct{}
	once     sync.Once
	timeout  time.Duration
}

func NewManager(logger logger.Logger, timeout time.Duration) *Manager {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Manager{
		logger:   logger,
		shutdown: make(chan struct{}),
		timeout:  timeout,
	}
}

func (m *Manager) RegisterTask(name string, task Task) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = append(m.tasks, namedTask{name: name, task: task})
}

// Initiate may be called any number of times.
func (m *Manager) Initiate() {
	m.once.Do(func() {
		close(m.shutdown)
	})
}

func (m *Manager) Done() <-chan struct{} {
	return m.shutdown
}

// Wait blocks until shutdown is initiated and then runs the tasks.
func (m *Manager) Wait(ctx context.Context) error {
	select {
	case <-m.shutdown:
		m.logger.Info("shutdown | Starting shutdown sequence")
		return m.executeTasks()
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Manager) executeTasks() error {
	m.mu.Lock()
	tasks := append([]namedTask(nil), m.tasks...)
	m.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	m.logger.Debug("shutdown | executing %d tasks before shutdown", len(tasks))

	done := make(chan error, 1)
	go func() {
		var errs []error
		for i, t := range tasks {
			m.logger.Info("shutdown | Executing shutdown task %d: %s", i+1, t.name)
			if err := t.task(); err != nil {
				m.logger.Error("shutdown | Task failed, task: %s, error: %s", t.name, err)
				errs = append(errs, fmt.Errorf("%s: %w", t.name, err))
			}
		}
		done <- errors.Join(errs...)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		m.logger.Error("shutdown | tasks did not finish within %s", m.timeout)
		return fmt.Errorf("shutdown: timed out after %s", m.timeout)
	}
}
