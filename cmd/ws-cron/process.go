package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/amir-mohammad-HP/ws-cron/internal/app"
)

func newProcessCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "process",
		Short: "Sync the crontab, then follow container start and stop events",
		Args:  cobra.NoArgs,
		RunE: opts.run(func(ctx context.Context, a *app.App, _ []string) (string, error) {
			return "", a.Process(ctx)
		}),
	}
}

func newUpdateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Recompute every managed job of the crontab once",
		Args:  cobra.NoArgs,
		RunE: opts.run(func(ctx context.Context, a *app.App, _ []string) (string, error) {
			return "", a.Update(ctx)
		}),
	}
}

func newWatchCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Run process and restart it when the executable changes",
		Args:  cobra.NoArgs,
		RunE: opts.run(func(ctx context.Context, a *app.App, _ []string) (string, error) {
			return "", a.Watch(ctx)
		}),
	}
}
