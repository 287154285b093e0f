package crontab

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarker_Tag(t *testing.T) {
	m := NewMarker("ws-cron")

	tests := []struct {
		command  string
		owner    string
		sentinel bool
	}{
		{"ws-cron exec -c=web php artisan schedule:run", "web", false},
		{"ws-cron  exec\t--container=db pg_dump", "db", false},
		{"ws-cron exec -c=solo", "solo", false},
		{`ws-cron exec echo "No jobs"`, "", true},
		{"ws-cron update", "", false},
		{"/usr/bin/ws-cron exec -c=web true", "", false},
		{"echo ws-cron exec -c=web", "", false},
		{"ws-cronx exec -c=web true", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			job := m.Tag(NewJob("", "", "", "", "", tt.command))
			assert.Equal(t, tt.owner, job.Owner)
			assert.Equal(t, tt.sentinel, job.Sentinel)
		})
	}
}

func TestMarker_ToolIsQuoted(t *testing.T) {
	m := NewMarker("/opt/bin/ws.cron")

	job := m.Tag(NewJob("", "", "", "", "", "/opt/bin/wsxcron exec -c=a true"))
	assert.False(t, job.Managed())

	job = m.Tag(NewJob("", "", "", "", "", "/opt/bin/ws.cron exec -c=a true"))
	assert.Equal(t, "a", job.Owner)
}

func TestMarker_Manage(t *testing.T) {
	m := NewMarker("ws-cron")
	job, err := ParseJob("0 * * * * echo $HOME $PATH")
	require.NoError(t, err)

	managed := m.Manage("app", job)
	assert.Equal(t, `0 * * * * ws-cron exec -c=app echo \$HOME \$PATH`, managed.String())
	assert.Equal(t, "app", managed.Owner)

	tagged := m.Tag(managed.WithCommand(managed.Command))
	assert.Equal(t, "app", tagged.Owner)
}

func TestMarker_ParseInstalled(t *testing.T) {
	m := NewMarker("ws-cron")
	text := "0 * * * * ws-cron exec -c=a foo\n* * * * * ws-cron exec echo \"No jobs\"\n1 2 3 4 5 manual\n# note\n"

	jobs := m.ParseInstalled(text).Jobs()
	require.Len(t, jobs, 4)
	assert.Equal(t, "a", jobs[0].Owner)
	assert.True(t, jobs[1].Sentinel)
	assert.False(t, jobs[2].Managed())
	assert.False(t, jobs[2].Sentinel)
	assert.True(t, jobs[3].Verbatim())
}

func TestMarker_Sentinel(t *testing.T) {
	m := NewMarker("ws-cron")
	sentinel := m.Sentinel()
	assert.Equal(t, `* * * * * ws-cron exec echo "No jobs"`, sentinel.String())
	assert.True(t, m.Tag(sentinel).Sentinel)
}

func TestEscapeUnescape(t *testing.T) {
	tests := []struct {
		in      string
		escaped string
	}{
		{"echo $HOME", `echo \$HOME`},
		{"a$b$c", `a\$b\$c`},
		{"no dollars", "no dollars"},
		{`already \$x`, `already \\$x`},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.escaped, Escape(tt.in))
			assert.Equal(t, tt.in, Unescape(Escape(tt.in)))
		})
	}
}

func TestMarker_Original(t *testing.T) {
	m := NewMarker("ws-cron")

	managed := m.Manage("web", NewJob("", "", "", "", "", "echo $HOME  done"))
	assert.Equal(t, "echo $HOME  done", m.Original(managed))

	assert.Equal(t, "", m.Original(NewJob("", "", "", "", "", "ws-cron exec -c=web")))
	assert.Equal(t, "plain", m.Original(NewJob("", "", "", "", "", "plain")))
}
