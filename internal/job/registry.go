// internal/job/registry.go
package job

import (
	"sync"
	"time"

	"github.com/amir-mohammad-HP/ws-cron/internal/crontab"
	"github.com/amir-mohammad-HP/ws-cron/internal/types"
	"github.com/robfig/cron/v3"
)

// Registry groups installed managed jobs by container, in crontab order
type Registry struct {
	jobs  map[string][]types.ManagedJob
	order []string
	mu    sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		jobs: make(map[string][]types.ManagedJob),
	}
}

// FromCrontab collects the managed jobs of a tagged crontab. Next runs are
// computed relative to now.
func FromCrontab(tab *crontab.Crontab, marker *crontab.Marker, now time.Time) *Registry {
	jr := NewRegistry()
	for _, j := range tab.Jobs() {
		if !j.Managed() {
			continue
		}
		jr.AddJob(types.ManagedJob{
			Container: j.Owner,
			Schedule:  j.Schedule(),
			Command:   marker.Original(j),
			Line:      j.String(),
			NextRun:   NextRun(j.Schedule(), now),
		})
	}
	return jr
}

// NextRun returns the next activation of a standard five field schedule
// after now, nil when the schedule cannot be evaluated
func NextRun(schedule string, now time.Time) *time.Time {
	sched, err := cron.ParseStandard(schedule)
	if err != nil {
		return nil
	}
	next := sched.Next(now)
	if next.IsZero() {
		return nil
	}
	return &next
}

func (jr *Registry) AddJob(job types.ManagedJob) {
	jr.mu.Lock()
	defer jr.mu.Unlock()

	if _, exists := jr.jobs[job.Container]; !exists {
		jr.order = append(jr.order, job.Container)
	}
	jr.jobs[job.Container] = append(jr.jobs[job.Container], job)
}

func (jr *Registry) RemoveJobsByContainer(container string) int {
	jr.mu.Lock()
	defer jr.mu.Unlock()

	removed := len(jr.jobs[container])
	if removed == 0 {
		return 0
	}
	delete(jr.jobs, container)
	for i, name := range jr.order {
		if name == container {
			jr.order = append(jr.order[:i], jr.order[i+1:]...)
			break
		}
	}
	return removed
}

func (jr *Registry) JobsFor(container string) []types.ManagedJob {
	jr.mu.RLock()
	defer jr.mu.RUnlock()

	return append([]types.ManagedJob(nil), jr.jobs[container]...)
}

// Containers returns container names in the order their first job appears
func (jr *Registry) Containers() []string {
	jr.mu.RLock()
	defer jr.mu.RUnlock()

	return append([]string(nil), jr.order...)
}

func (jr *Registry) GetAllJobs() []types.ManagedJob {
	jr.mu.RLock()
	defer jr.mu.RUnlock()

	var jobs []types.ManagedJob
	for _, name := range jr.order {
		jobs = append(jobs, jr.jobs[name]...)
	}
	return jobs
}

func (jr *Registry) Count() int {
	jr.mu.RLock()
	defer jr.mu.RUnlock()

	n := 0
	for _, jobs := range jr.jobs {
		n += len(jobs)
	}
	return n
}
