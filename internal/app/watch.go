package app

import (
	"context"
	"fmt"
	"os"

	"github.com/amir-mohammad-HP/ws-cron/internal/signals"
	"github.com/amir-mohammad-HP/ws-cron/internal/watch"
)

// Watch keeps "process" running and restarts it whenever the executable
// (or the configured watch path) changes.
func (a *App) Watch(ctx context.Context) error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to locate executable: %w", err)
	}

	command := []string{exe, "process"}
	if a.config.ConfigFile != "" {
		command = append(command, "--config", a.config.ConfigFile)
	}

	opts := []watch.Option{
		watch.WithDebounce(a.config.Watch.Debounce),
		watch.WithStopTimeout(a.config.Shutdown.Timeout),
		watch.WithOutput(a.stdout, a.stderr),
	}
	if a.config.Watch.Path != "" {
		opts = append(opts, watch.WithDir(a.config.Watch.Path, ""))
	}

	supervisor, err := watch.New(command, a.logger, opts...)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go signals.NewHandler(a.logger).Handle(ctx, cancel)

	return supervisor.Run(ctx)
}
