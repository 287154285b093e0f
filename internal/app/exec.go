package app

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/amir-mohammad-HP/ws-cron/internal/crontab"
	"github.com/amir-mohammad-HP/ws-cron/internal/shell"
	"github.com/amir-mohammad-HP/ws-cron/pkg/docker"
	"github.com/amir-mohammad-HP/ws-cron/pkg/logger"
)

// Job log sources
const (
	hostSource      = "cron"
	containerSource = "cron:"
)

// Exec is what the installed crontab calls. With a container it runs args
// inside it; otherwise it runs the joined args on the host. Output lines
// go to the job log.
func (a *App) Exec(ctx context.Context, args []string, container string) error {
	if len(args) == 0 {
		return errors.New("nothing to execute")
	}

	log := a.logger.WithFields(map[string]any{
		"run":       uuid.NewString(),
		"container": container,
	})
	ctx = logger.WithLogger(ctx, log)

	if container == "" {
		command := strings.Join(args, " ")
		log.Debug("app | exec on host: %s", command)
		return shell.Run(ctx, command, a.jobLog.Writer(hostSource))
	}

	unescaped := make([]string, len(args))
	for i, arg := range args {
		unescaped[i] = crontab.Unescape(arg)
	}

	rt, err := a.containerRuntime(ctx)
	if err != nil {
		return err
	}

	err = rt.Exec(ctx, container, unescaped, a.jobLog.Writer(containerSource+container))
	if errors.Is(err, docker.ErrContainerNotFound) {
		log.Debug("app | container %s not found, skipping", container)
		return nil
	}
	return err
}
