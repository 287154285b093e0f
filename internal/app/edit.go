package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/moby/term"
)

const fallbackEditor = "sensible-editor"

// Edit replaces the cron block of a container. The new block is read from
// filename when given, from an editor when stdin is a terminal, and from
// stdin otherwise.
func (a *App) Edit(ctx context.Context, container, filename string) error {
	if container == "" {
		return errors.New("container name is required (-c=<container>)")
	}

	var (
		text string
		err  error
	)
	switch {
	case filename != "":
		var data []byte
		data, err = os.ReadFile(filename)
		text = string(data)
	case a.interactive():
		var changed bool
		text, changed, err = a.editInteractive(ctx, container)
		if err == nil && !changed {
			a.logger.Debug("app | crontab for %s unchanged", container)
			return nil
		}
	default:
		var data []byte
		data, err = io.ReadAll(a.stdin)
		text = string(data)
	}
	if err != nil {
		return err
	}

	return a.Set(ctx, container, text)
}

func (a *App) interactive() bool {
	f, ok := a.stdin.(*os.File)
	return ok && term.IsTerminal(f.Fd())
}

func (a *App) editInteractive(ctx context.Context, container string) (string, bool, error) {
	current, err := a.store.Get(container)
	if err != nil {
		return "", false, err
	}

	tmp, err := os.CreateTemp("", "ws-crontab-*.txt")
	if err != nil {
		return "", false, fmt.Errorf("failed to create temp file: %w", err)
	}
	path := tmp.Name()
	defer os.Remove(path)

	if _, err := tmp.WriteString(current); err != nil {
		tmp.Close()
		return "", false, fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", false, err
	}

	cmd := exec.CommandContext(ctx, "/bin/sh", "-c", editorCommand()+` "$1"`, "sh", path)
	cmd.Stdin = a.stdin
	cmd.Stdout = a.stdout
	cmd.Stderr = a.stderr
	if err := cmd.Run(); err != nil {
		return "", false, fmt.Errorf("editor failed: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", false, err
	}
	return string(data), string(data) != current, nil
}

func editorCommand() string {
	for _, env := range []string{"VISUAL", "EDITOR"} {
		if editor := os.Getenv(env); editor != "" {
			return editor
		}
	}
	return fallbackEditor
}
