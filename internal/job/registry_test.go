package job

import (
	"testing"
	"time"

	"github.com/amir-mohammad-HP/ws-cron/internal/crontab"
	"github.com/amir-mohammad-HP/ws-cron/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromCrontab(t *testing.T) {
	marker := crontab.NewMarker("ws-cron")
	tab := marker.ParseInstalled(
		"0 * * * * ws-cron exec -c=web php artisan schedule:run\n" +
			"1 1 1 1 1 manual\n" +
			"30 2 * * * ws-cron exec -c=db pg_dump \\$DB\n" +
			"*/5 * * * * ws-cron exec -c=web echo hi\n" +
			`* * * * * ws-cron exec echo "No jobs"` + "\n")
	now := time.Date(2026, 10, 19, 10, 15, 0, 0, time.Local)

	jr := FromCrontab(tab, marker, now)

	assert.Equal(t, 3, jr.Count())
	assert.Equal(t, []string{"web", "db"}, jr.Containers())

	web := jr.JobsFor("web")
	require.Len(t, web, 2)
	assert.Equal(t, "php artisan schedule:run", web[0].Command)
	assert.Equal(t, "0 * * * *", web[0].Schedule)
	require.NotNil(t, web[0].NextRun)
	assert.Equal(t, time.Date(2026, 10, 19, 11, 0, 0, 0, time.Local), *web[0].NextRun)
	assert.Equal(t, time.Date(2026, 10, 19, 10, 20, 0, 0, time.Local), *web[1].NextRun)

	db := jr.JobsFor("db")
	require.Len(t, db, 1)
	assert.Equal(t, "pg_dump $DB", db[0].Command)
	assert.Equal(t, `30 2 * * * ws-cron exec -c=db pg_dump \$DB`, db[0].Line)

	all := jr.GetAllJobs()
	require.Len(t, all, 3)
	assert.Equal(t, "web", all[1].Container)
	assert.Equal(t, "db", all[2].Container)
}

func TestNextRun_Unparseable(t *testing.T) {
	assert.Nil(t, NextRun("L * * * *", time.Now()))
	assert.Nil(t, NextRun("61 * * * *", time.Now()))
	assert.NotNil(t, NextRun("0 0 1 jan *", time.Now()))
}

func TestRegistry_RemoveJobsByContainer(t *testing.T) {
	jr := NewRegistry()
	jr.AddJob(types.ManagedJob{Container: "a", Command: "1"})
	jr.AddJob(types.ManagedJob{Container: "b", Command: "2"})
	jr.AddJob(types.ManagedJob{Container: "a", Command: "3"})

	assert.Equal(t, 2, jr.RemoveJobsByContainer("a"))
	assert.Equal(t, 0, jr.RemoveJobsByContainer("a"))
	assert.Equal(t, []string{"b"}, jr.Containers())
	assert.Equal(t, 1, jr.Count())
	assert.Empty(t, jr.JobsFor("a"))
}
