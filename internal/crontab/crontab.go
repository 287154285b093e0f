// internal/crontab/crontab.go
package crontab

import (
	"strings"
)

// LineSeparator terminates every serialized entry
const LineSeparator = "\n"

// Crontab is an ordered list of crontab entries
type Crontab struct {
	jobs []Job
}

// New creates a crontab holding the given jobs in order
func New(jobs ...Job) *Crontab {
	c := &Crontab{}
	return c.Push(jobs...)
}

// Parse parses a per-container cron block. Blank lines and comments are
// skipped, every other line must be a complete job.
func Parse(text string) (*Crontab, error) {
	c := New()
	for i, line := range splitLines(text) {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		job, err := ParseJob(trimmed)
		if err != nil {
			if pe, ok := err.(*ParseError); ok {
				pe.Line = i + 1
			}
			return nil, err
		}
		c.jobs = append(c.jobs, job)
	}
	return c, nil
}

// ParseInstalled parses the text of an installed crontab. Blank lines are
// dropped; lines that are not jobs are kept verbatim so manual entries
// survive a rewrite untouched.
func ParseInstalled(text string) *Crontab {
	c := New()
	for _, line := range splitLines(text) {
		if strings.TrimSpace(line) == "" {
			continue
		}

		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "@") || isEnvAssignment(trimmed) {
			c.jobs = append(c.jobs, verbatimEntry(line))
			continue
		}

		job, err := ParseJob(line)
		if err != nil {
			c.jobs = append(c.jobs, verbatimEntry(line))
			continue
		}
		c.jobs = append(c.jobs, job)
	}
	return c
}

// Filter keeps the entries for which keep returns true, preserving order
func (c *Crontab) Filter(keep func(Job) bool) *Crontab {
	kept := c.jobs[:0]
	for _, job := range c.jobs {
		if keep(job) {
			kept = append(kept, job)
		}
	}
	clear(c.jobs[len(kept):])
	c.jobs = kept
	return c
}

// Push appends jobs in order
func (c *Crontab) Push(jobs ...Job) *Crontab {
	c.jobs = append(c.jobs, jobs...)
	return c
}

// Jobs returns a copy of all entries, verbatim ones included
func (c *Crontab) Jobs() []Job {
	out := make([]Job, len(c.jobs))
	copy(out, c.jobs)
	return out
}

// Len returns the number of entries, verbatim ones included
func (c *Crontab) Len() int {
	return len(c.jobs)
}

// JobCount returns the number of schedulable jobs
func (c *Crontab) JobCount() int {
	n := 0
	for _, job := range c.jobs {
		if !job.verbatim {
			n++
		}
	}
	return n
}

// String serializes the crontab, every entry terminated by LineSeparator.
// An empty crontab serializes to a lone separator.
func (c *Crontab) String() string {
	var sb strings.Builder
	for i, job := range c.jobs {
		if i > 0 {
			sb.WriteString(LineSeparator)
		}
		sb.WriteString(job.String())
	}
	sb.WriteString(LineSeparator)
	return sb.String()
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(text, "\n")
}

// isEnvAssignment matches NAME=value lines such as MAILTO= or SHELL=/bin/bash
func isEnvAssignment(line string) bool {
	eq := strings.IndexByte(line, '=')
	if eq <= 0 {
		return false
	}
	name := strings.TrimSpace(line[:eq])
	for _, r := range name {
		if !(r == '_' || r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}
