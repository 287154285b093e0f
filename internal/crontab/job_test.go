package crontab

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJob(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Job
	}{
		{
			name: "simple",
			line: "0 * * * * foo",
			want: NewJob("0", "*", "*", "*", "*", "foo"),
		},
		{
			name: "command keeps inner whitespace",
			line: "*/5 1-3 1,15 * mon-fri echo  'a   b'\tc",
			want: NewJob("*/5", "1-3", "1,15", "*", "mon-fri", "echo  'a   b'\tc"),
		},
		{
			name: "tabs between fields",
			line: "1\t2\t3\t4\t5\tcmd --flag",
			want: NewJob("1", "2", "3", "4", "5", "cmd --flag"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job, err := ParseJob(tt.line)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(job), "got %#v", job)
			assert.Equal(t, tt.line, job.String())
		})
	}
}

func TestParseJob_Malformed(t *testing.T) {
	for _, line := range []string{"", "* * * * *", "* * * * *   ", "foo", "1 2 3"} {
		t.Run(line, func(t *testing.T) {
			_, err := ParseJob(line)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedLine))

			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, line, pe.Text)
		})
	}
}

func TestJob_RoundTrip(t *testing.T) {
	schedules := [][5]string{
		{"*", "*", "*", "*", "*"},
		{"0", "12", "1", "jan", "sun"},
		{"*/15", "0-23/2", "L", "1,6,12", "1-5"},
	}
	commands := []string{
		"foo",
		"echo \"No jobs\"",
		"sh -c 'cd /srv && ./run.sh >> /var/log/run.log 2>&1'",
		"printf '%s' \\$HOME",
	}

	for _, s := range schedules {
		for _, command := range commands {
			job := NewJob(s[0], s[1], s[2], s[3], s[4], command)
			line := job.String()

			parsed, err := ParseJob(line)
			require.NoError(t, err)
			assert.True(t, job.Equal(parsed), "line %q", line)
			assert.Equal(t, line, parsed.String())
		}
	}
}

func TestNewJob_Defaults(t *testing.T) {
	job := NewJob("", "", "", "", "", "true")
	assert.Equal(t, "* * * * *", job.Schedule())
	assert.Equal(t, "* * * * * true", job.String())
}

func TestJob_WithCommand(t *testing.T) {
	job, err := ParseJob("5  4 * * *  old")
	require.NoError(t, err)

	rewritten := job.WithCommand("new")
	assert.Equal(t, "5 4 * * * new", rewritten.String())
	assert.Equal(t, "5  4 * * *  old", job.String())
}
