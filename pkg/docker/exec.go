package docker

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/amir-mohammad-HP/ws-cron/pkg/logger"
	dockerTypes "github.com/docker/docker/api/types"
	"github.com/docker/docker/errdefs"
	"github.com/docker/docker/pkg/stdcopy"
)

// ErrContainerNotFound is returned by Exec when the target does not exist
var ErrContainerNotFound = errors.New("container not found")

// ExitError reports a command that exited non-zero inside a container
type ExitError struct {
	Container string
	Code      int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("command in container %s exited with code %d", e.Container, e.Code)
}

// Exec runs args inside the named container and calls onLine for every line
// of combined stdout and stderr, in order
func (dm *Monitor) Exec(ctx context.Context, name string, args []string, onLine func(string)) error {
	log := logger.FromContext(ctx)

	// Create exec instance
	execConfig := dockerTypes.ExecConfig{
		Cmd:          args,
		AttachStdout: true,
		AttachStderr: true,
	}

	execID, err := dm.client.ContainerExecCreate(ctx, name, execConfig)
	if err != nil {
		if errdefs.IsNotFound(err) {
			return &Error{Op: "exec", Container: name, Err: ErrContainerNotFound}
		}
		return &Error{Op: "exec", Container: name, Err: fmt.Errorf("failed to create exec: %w", err)}
	}
	log.Debug("docker exec | created %s in %s", shortID(execID.ID), name)

	// Attach to exec to get output
	resp, err := dm.client.ContainerExecAttach(ctx, execID.ID, dockerTypes.ExecStartCheck{})
	if err != nil {
		return &Error{Op: "exec", Container: name, Err: fmt.Errorf("failed to attach to exec: %w", err)}
	}
	defer resp.Close()

	if err := streamLines(resp.Reader, onLine); err != nil {
		return &Error{Op: "exec", Container: name, Err: fmt.Errorf("failed to read output: %w", err)}
	}

	// Check exec status
	inspect, err := dm.client.ContainerExecInspect(ctx, execID.ID)
	if err != nil {
		return &Error{Op: "exec", Container: name, Err: fmt.Errorf("failed to inspect exec: %w", err)}
	}

	if inspect.ExitCode != 0 {
		return &ExitError{Container: name, Code: inspect.ExitCode}
	}

	log.Debug("docker exec | %s finished in %s", shortID(execID.ID), name)
	return nil
}

// streamLines demultiplexes a docker exec stream and splits it into lines
func streamLines(r io.Reader, onLine func(string)) error {
	pr, pw := io.Pipe()
	go func() {
		_, err := stdcopy.StdCopy(pw, pw, r)
		pw.CloseWithError(err)
	}()

	scanner := bufio.NewScanner(pr)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		onLine(scanner.Text())
	}
	err := scanner.Err()
	// Unblock the copier if the scanner gave up early
	pr.CloseWithError(io.ErrClosedPipe)
	return err
}
