package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	"github.com/amir-mohammad-HP/ws-cron/pkg/logger"
)

const (
	DefaultDebounce = 500 * time.Millisecond
	// DefaultStopTimeout bounds how long a child gets to exit after SIGTERM.
	DefaultStopTimeout = 30 * time.Second
)

// Supervisor keeps one child process running and restarts it when a
// watched file changes or when the child exits on its own.
type Supervisor struct {
	command     []string
	dir         string
	target      string
	debounce    time.Duration
	stopTimeout time.Duration
	limiter     *rate.Limiter
	stdout      io.Writer
	stderr      io.Writer
	logger      logger.Logger
}

type Option func(*Supervisor)

// WithDir watches dir. A non-empty target limits restarts to changes of
// that file name.
func WithDir(dir, target string) Option {
	return func(s *Supervisor) {
		s.dir = dir
		s.target = target
	}
}

func WithDebounce(d time.Duration) Option {
	return func(s *Supervisor) {
		if d > 0 {
			s.debounce = d
		}
	}
}

func WithStopTimeout(d time.Duration) Option {
	return func(s *Supervisor) {
		if d > 0 {
			s.stopTimeout = d
		}
	}
}

func WithOutput(stdout, stderr io.Writer) Option {
	return func(s *Supervisor) {
		s.stdout = stdout
		s.stderr = stderr
	}
}

// New returns a supervisor for command. Without WithDir it watches the
// directory holding command[0] and reacts to changes of that file only.
func New(command []string, log logger.Logger, opts ...Option) (*Supervisor, error) {
	if len(command) == 0 {
		return nil, errors.New("watch: empty command")
	}

	s := &Supervisor{
		command:     command,
		debounce:    DefaultDebounce,
		stopTimeout: DefaultStopTimeout,
		limiter:     rate.NewLimiter(rate.Every(time.Second), 1),
		stdout:      os.Stdout,
		stderr:      os.Stderr,
		logger:      log,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.dir == "" {
		path, err := filepath.Abs(command[0])
		if err != nil {
			return nil, fmt.Errorf("watch: resolve %s: %w", command[0], err)
		}
		s.dir = filepath.Dir(path)
		s.target = filepath.Base(path)
	}

	return s, nil
}

// Run blocks until ctx is cancelled, then stops the child.
func (s *Supervisor) Run(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: create watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(s.dir); err != nil {
		return fmt.Errorf("watch: add %s: %w", s.dir, err)
	}
	s.logger.Info("watch | watching %s", s.dir)

	restart := make(chan struct{}, 1)
	var (
		timerMu sync.Mutex
		timer   *time.Timer
	)
	debounce := func() {
		timerMu.Lock()
		defer timerMu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(s.debounce, func() {
			select {
			case restart <- struct{}{}:
			default:
			}
		})
	}
	defer func() {
		timerMu.Lock()
		if timer != nil {
			timer.Stop()
		}
		timerMu.Unlock()
	}()

	current, err := s.spawn(ctx)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("watch | stopping")
			current.stop()
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				current.stop()
				return errors.New("watch: watcher closed")
			}
			if s.relevant(ev) {
				s.logger.Debug("watch | %s %s", ev.Op, ev.Name)
				debounce()
			}

		case err, ok := <-w.Errors:
			if !ok {
				current.stop()
				return errors.New("watch: watcher closed")
			}
			s.logger.Warn("watch | watcher error: %s", err)

		case <-restart:
			s.logger.Info("watch | change detected, restarting")
			current.stop()
			if current, err = s.spawn(ctx); err != nil {
				return err
			}

		case err := <-current.done:
			if ctx.Err() != nil {
				return nil
			}
			if err != nil {
				s.logger.Warn("watch | child exited: %s", err)
			} else {
				s.logger.Warn("watch | child exited")
			}
			current.stopped = true
			if current, err = s.spawn(ctx); err != nil {
				return err
			}
		}
	}
}

func (s *Supervisor) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Base(ev.Name)
	if s.target != "" {
		return name == s.target
	}
	return !strings.HasPrefix(name, ".") && !strings.HasSuffix(name, "~") && !strings.HasSuffix(name, ".swp")
}

type child struct {
	cancel  context.CancelFunc
	done    chan error
	stopped bool
}

func (c *child) stop() {
	if c.stopped {
		return
	}
	c.stopped = true
	c.cancel()
	<-c.done
}

// spawn starts a new child, throttled to one start per second.
func (s *Supervisor) spawn(ctx context.Context) (*child, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		// Cancelled while throttled; hand back a child that is already gone.
		c := &child{cancel: func() {}, done: make(chan error, 1), stopped: true}
		return c, nil
	}

	childCtx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(childCtx, s.command[0], s.command[1:]...)
	cmd.Stdout = s.stdout
	cmd.Stderr = s.stderr
	cmd.Cancel = func() error {
		return cmd.Process.Signal(syscall.SIGTERM)
	}
	cmd.WaitDelay = s.stopTimeout

	s.logger.Info("watch | starting %s", strings.Join(s.command, " "))
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("watch: start %s: %w", s.command[0], err)
	}

	c := &child{cancel: cancel, done: make(chan error, 1)}
	go func() {
		c.done <- cmd.Wait()
		close(c.done)
	}()
	return c, nil
}
