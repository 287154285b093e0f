// internal/crontab/job.go
package crontab

import (
	"strings"
)

// Wildcard is the default value of every schedule field
const Wildcard = "*"

// fieldCount is the number of whitespace separated tokens a job line must
// carry: five schedule fields followed by at least one command token.
const fieldCount = 6

// Job represents a single crontab line
type Job struct {
	Minute     string
	Hour       string
	DayOfMonth string
	Month      string
	DayOfWeek  string
	Command    string

	// Owner is the container a managed job dispatches into. Empty for
	// foreign jobs. Set by Marker at parse time.
	Owner string
	// Sentinel marks the placeholder job installed when nothing else is.
	Sentinel bool

	// raw is the original line text. Foreign lines are written back
	// byte-for-byte; verbatim entries are not jobs at all.
	raw      string
	verbatim bool
}

// NewJob creates a job with the given schedule and command. Empty schedule
// fields default to "*".
func NewJob(minute, hour, dayOfMonth, month, dayOfWeek, command string) Job {
	return Job{
		Minute:     orWildcard(minute),
		Hour:       orWildcard(hour),
		DayOfMonth: orWildcard(dayOfMonth),
		Month:      orWildcard(month),
		DayOfWeek:  orWildcard(dayOfWeek),
		Command:    command,
	}
}

// ParseJob parses one crontab line. The first five whitespace separated
// tokens are the schedule, the remainder of the line (whitespace included)
// is the command.
func ParseJob(line string) (Job, error) {
	rest := strings.TrimLeft(line, " \t")
	var fields [5]string
	for i := range fields {
		end := strings.IndexAny(rest, " \t")
		if end <= 0 {
			return Job{}, &ParseError{Text: line, Fields: countFields(line)}
		}
		fields[i] = rest[:end]
		rest = strings.TrimLeft(rest[end:], " \t")
	}

	command := strings.TrimRight(rest, "\r")
	if command == "" {
		return Job{}, &ParseError{Text: line, Fields: countFields(line)}
	}

	job := NewJob(fields[0], fields[1], fields[2], fields[3], fields[4], command)
	job.raw = line
	return job, nil
}

// verbatimEntry wraps a line that is kept as-is and never treated as a job
func verbatimEntry(line string) Job {
	return Job{raw: line, verbatim: true}
}

// Verbatim reports whether the entry is a preserved non-job line
// (comment, environment assignment, @special schedule, malformed text).
func (j Job) Verbatim() bool {
	return j.verbatim
}

// Managed reports whether the job dispatches into a container
func (j Job) Managed() bool {
	return j.Owner != ""
}

// Schedule returns the five schedule fields joined by single spaces
func (j Job) Schedule() string {
	return strings.Join([]string{j.Minute, j.Hour, j.DayOfMonth, j.Month, j.DayOfWeek}, " ")
}

// WithCommand returns a copy of the job running a different command.
// The copy loses its original text and ownership tags.
func (j Job) WithCommand(command string) Job {
	return NewJob(j.Minute, j.Hour, j.DayOfMonth, j.Month, j.DayOfWeek, command)
}

// String serializes the job back to a crontab line
func (j Job) String() string {
	if j.raw != "" {
		return j.raw
	}
	return j.Schedule() + " " + j.Command
}

// Equal compares the schedule and command of two jobs
func (j Job) Equal(other Job) bool {
	if j.verbatim || other.verbatim {
		return j.verbatim == other.verbatim && j.raw == other.raw
	}
	return j.Minute == other.Minute &&
		j.Hour == other.Hour &&
		j.DayOfMonth == other.DayOfMonth &&
		j.Month == other.Month &&
		j.DayOfWeek == other.DayOfWeek &&
		j.Command == other.Command
}

func orWildcard(field string) string {
	if field == "" {
		return Wildcard
	}
	return field
}

func countFields(line string) int {
	return len(strings.Fields(line))
}
