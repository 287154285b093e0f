package types

import "time"

// ManagedJob is an installed crontab job dispatching into a container
type ManagedJob struct {
	Container string     `json:"container"`
	Schedule  string     `json:"schedule"`
	Command   string     `json:"command"`
	Line      string     `json:"line"`
	NextRun   *time.Time `json:"next_run,omitempty"`
}
