package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/amir-mohammad-HP/ws-cron/internal/app"
	"github.com/amir-mohammad-HP/ws-cron/internal/config"
	"github.com/amir-mohammad-HP/ws-cron/pkg/logger"
)

type rootOptions struct {
	configFile string
}

// action runs against a fully wired App. A non-empty result is printed.
type action func(ctx context.Context, a *app.App, args []string) (string, error)

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "ws-cron",
		Short: "Keep the host crontab in sync with per-container cron blocks",
		Long: `ws-cron merges the cron blocks declared for docker containers into the
host crontab. Jobs of running containers are installed and dispatched back
through "ws-cron exec" into their container; jobs of stopped containers are
removed. Other crontab entries are left untouched.`,
		Version:       Version,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (default ws-cron.yaml in ., ~/.config/ws-cron or /etc/ws-cron)")

	cmd.AddCommand(
		newProcessCmd(opts),
		newUpdateCmd(opts),
		newSetCmd(opts),
		newEditCmd(opts),
		newExecCmd(opts),
		newListCmd(opts),
		newWatchCmd(opts),
		newConfigCmd(),
	)

	return cmd
}

func (o *rootOptions) run(fn action) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(o.configFile)
		if err != nil {
			return err
		}

		log := logger.NewWithConfig(&cfg.Logger)
		defer log.Close()

		a := app.New(cfg, log, app.WithIO(cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr()))
		defer a.Close()

		out, err := fn(cmd.Context(), a, args)
		if err != nil {
			return err
		}
		if out != "" {
			fmt.Fprintln(cmd.OutOrStdout(), out)
		}
		return nil
	}
}
