// Package shell runs host commands through /bin/sh and streams their output
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
)

// DefaultShell interprets commands
const DefaultShell = "/bin/sh"

// ExitError reports a command that exited non-zero
type ExitError struct {
	Command string
	Code    int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%q exited with code %d", e.Command, e.Code)
}

// Run executes command with `sh -c` and calls onLine for every line of the
// combined stdout and stderr
func Run(ctx context.Context, command string, onLine func(string)) error {
	cmd := exec.CommandContext(ctx, DefaultShell, "-c", command)

	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %q: %w", command, err)
	}

	waitErr := make(chan error, 1)
	go func() {
		err := cmd.Wait()
		pw.Close()
		waitErr <- err
	}()

	scanner := bufio.NewScanner(pr)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		onLine(scanner.Text())
	}
	scanErr := scanner.Err()
	// Keep draining so the command never blocks on a full pipe
	if scanErr != nil {
		_, _ = io.Copy(io.Discard, pr)
	}

	if err := <-waitErr; err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &ExitError{Command: command, Code: exitErr.ExitCode()}
		}
		return fmt.Errorf("failed to run %q: %w", command, err)
	}
	if scanErr != nil {
		return fmt.Errorf("failed to read output of %q: %w", command, scanErr)
	}
	return nil
}
