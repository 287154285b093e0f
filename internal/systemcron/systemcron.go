// Package systemcron reads and replaces the crontab of the current user
// through the system crontab binary.
package systemcron

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// DefaultBinary is used when no binary is configured
const DefaultBinary = "crontab"

// CommandError is returned when the crontab binary exits unsuccessfully
type CommandError struct {
	Args     []string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("%s exited with code %d", strings.Join(e.Args, " "), e.ExitCode)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// Crontab runs the system crontab binary
type Crontab struct {
	binary string
	tmpDir string
}

// Option configures a Crontab
type Option func(*Crontab)

// WithTempDir sets the directory holding the file handed to the install command
func WithTempDir(dir string) Option {
	return func(c *Crontab) {
		c.tmpDir = dir
	}
}

// New creates a Crontab using binary, DefaultBinary when empty
func New(binary string, opts ...Option) *Crontab {
	if binary == "" {
		binary = DefaultBinary
	}
	c := &Crontab{binary: binary}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// List returns the installed crontab text
func (c *Crontab) List(ctx context.Context) (string, error) {
	return c.run(ctx, "-l")
}

// Install replaces the installed crontab with text. The text is written to
// a temporary file which is removed on every exit path.
func (c *Crontab) Install(ctx context.Context, text string) (err error) {
	file, err := os.CreateTemp(c.tmpDir, "ws-crontab-*.txt")
	if err != nil {
		return fmt.Errorf("failed to create crontab file: %w", err)
	}
	path := file.Name()
	defer func() {
		if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) && err == nil {
			err = fmt.Errorf("failed to remove crontab file: %w", rmErr)
		}
	}()

	if _, err := file.WriteString(text); err != nil {
		file.Close()
		return fmt.Errorf("failed to write crontab file: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close crontab file: %w", err)
	}

	_, err = c.run(ctx, path)
	return err
}

func (c *Crontab) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, c.binary, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		cmdErr := &CommandError{
			Args:     append([]string{c.binary}, args...),
			ExitCode: -1,
			Stderr:   strings.TrimSpace(stderr.String()),
			Err:      err,
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			cmdErr.ExitCode = exitErr.ExitCode()
		}
		return "", cmdErr
	}

	return stdout.String(), nil
}
