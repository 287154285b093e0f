package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/amir-mohammad-HP/ws-cron/internal/app"
)

func newSetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set <container> <crontab>",
		Short: "Store the cron block of a container and update the crontab",
		Args:  cobra.ExactArgs(2),
		RunE: opts.run(func(ctx context.Context, a *app.App, args []string) (string, error) {
			return "", a.Set(ctx, args[0], args[1])
		}),
	}
}

func newEditCmd(opts *rootOptions) *cobra.Command {
	var container string

	cmd := &cobra.Command{
		Use:   "edit [filename]",
		Short: "Edit the cron block of a container",
		Long: `Edit the cron block of a container. With a terminal the block is opened in
$VISUAL, $EDITOR or sensible-editor. Otherwise it is read from filename or
from standard input.`,
		Args: cobra.MaximumNArgs(1),
		RunE: opts.run(func(ctx context.Context, a *app.App, args []string) (string, error) {
			var filename string
			if len(args) > 0 {
				filename = args[0]
			}
			return "", a.Edit(ctx, container, filename)
		}),
	}
	cmd.Flags().StringVarP(&container, "container", "c", "", "container name")

	return cmd
}

func newExecCmd(opts *rootOptions) *cobra.Command {
	var container string

	cmd := &cobra.Command{
		Use:   "exec [-c=<container>] <args...>",
		Short: "Run a command in a container, or on the host without -c",
		Args:  cobra.MinimumNArgs(1),
		RunE: opts.run(func(ctx context.Context, a *app.App, args []string) (string, error) {
			return "", a.Exec(ctx, args, container)
		}),
	}
	cmd.Flags().StringVarP(&container, "container", "c", "", "container name")
	// Everything after the first argument belongs to the command
	cmd.Flags().SetInterspersed(false)

	return cmd
}

func newListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the installed managed jobs",
		Args:  cobra.NoArgs,
		RunE: opts.run(func(ctx context.Context, a *app.App, _ []string) (string, error) {
			return a.List(ctx)
		}),
	}
}
