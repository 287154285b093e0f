package app

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/amir-mohammad-HP/ws-cron/internal/job"
	"github.com/amir-mohammad-HP/ws-cron/internal/reconcile"
)

const NoManagedJobs = "No managed jobs installed"

// List renders the installed managed jobs grouped per container
func (a *App) List(ctx context.Context) (string, error) {
	rec := reconcile.New(a.marker, a.scheduler, a.store, nil, a.logger)
	registry := job.FromCrontab(rec.Installed(ctx), a.marker, time.Now())
	if registry.Count() == 0 {
		return NoManagedJobs, nil
	}

	var b strings.Builder
	tw := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CONTAINER\tSCHEDULE\tNEXT RUN\tCOMMAND")
	for _, container := range registry.Containers() {
		for _, j := range registry.JobsFor(container) {
			next := "-"
			if j.NextRun != nil {
				next = j.NextRun.Format(time.DateTime)
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", j.Container, j.Schedule, next, j.Command)
		}
	}
	if err := tw.Flush(); err != nil {
		return "", err
	}
	return strings.TrimRight(b.String(), "\n"), nil
}
