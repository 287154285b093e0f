// internal/crontab/marker.go
package crontab

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/wasilibs/go-re2"
)

// SentinelMessage is echoed by the placeholder job
const SentinelMessage = "No jobs"

// Marker owns the convention used to recognise jobs installed by the tool:
// a managed job runs `<tool> exec -c=<container> <command>`, the sentinel
// runs `<tool> exec echo "No jobs"`.
type Marker struct {
	tool     string
	managed  *re2.Regexp
	sentinel string
}

// NewMarker creates a marker for the given tool command name
func NewMarker(tool string) *Marker {
	quoted := regexp.QuoteMeta(tool)
	return &Marker{
		tool:     tool,
		managed:  re2.MustCompile(`^` + quoted + `\s+exec\s+(?:-c|--container)=(\S+)(?:\s|$)`),
		sentinel: fmt.Sprintf("%s exec echo %q", tool, SentinelMessage),
	}
}

// Tool returns the command name the marker matches
func (m *Marker) Tool() string {
	return m.tool
}

// Tag derives Owner and Sentinel for one job from its command
func (m *Marker) Tag(job Job) Job {
	if job.verbatim {
		return job
	}
	job.Owner = ""
	job.Sentinel = strings.TrimSpace(job.Command) == m.sentinel
	if match := m.managed.FindStringSubmatch(job.Command); match != nil {
		job.Owner = match[1]
	}
	return job
}

// Original returns the command a managed job dispatches, unescaped. Jobs
// that are not managed return their command unchanged.
func (m *Marker) Original(job Job) string {
	match := m.managed.FindStringSubmatch(job.Command)
	if match == nil {
		return job.Command
	}
	return Unescape(strings.TrimLeft(job.Command[len(match[0]):], " \t"))
}

// ParseInstalled parses installed crontab text and tags every job
func (m *Marker) ParseInstalled(text string) *Crontab {
	c := ParseInstalled(text)
	for i := range c.jobs {
		c.jobs[i] = m.Tag(c.jobs[i])
	}
	return c
}

// Manage rewrites a container job so cron dispatches it through the tool
func (m *Marker) Manage(container string, job Job) Job {
	command := fmt.Sprintf("%s exec -c=%s %s", m.tool, container, Escape(job.Command))
	managed := job.WithCommand(command)
	managed.Owner = container
	return managed
}

// ManageAll rewrites every job of a container block in order
func (m *Marker) ManageAll(container string, block *Crontab) []Job {
	jobs := make([]Job, 0, block.JobCount())
	for _, job := range block.jobs {
		if job.verbatim {
			continue
		}
		jobs = append(jobs, m.Manage(container, job))
	}
	return jobs
}

// Sentinel returns the placeholder job
func (m *Marker) Sentinel() Job {
	job := NewJob(Wildcard, Wildcard, Wildcard, Wildcard, Wildcard, m.sentinel)
	job.Sentinel = true
	return job
}

// Escape protects every `$` of a command from expansion by cron's shell
func Escape(command string) string {
	return strings.ReplaceAll(command, "$", `\$`)
}

// Unescape reverses Escape on a single exec argument
func Unescape(arg string) string {
	return strings.ReplaceAll(arg, `\$`, "$")
}
