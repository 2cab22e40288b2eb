package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-circulation/internal/config"
	"library-circulation/internal/jobs"
)

func runner(schedule string) *jobs.JobRunner {
	cfg := &config.Config{}
	cfg.Scheduler.SendOverdueReminders = schedule
	return jobs.NewJobRunner(&jobs.Services{}, cfg)
}

func TestNewScheduler_RegistersJobs(t *testing.T) {
	s, err := NewScheduler(runner("0 0 8 * * *"))
	require.NoError(t, err)
	assert.Equal(t, 1, s.Entries())

	s.Start()
	s.Stop()
}

func TestNewScheduler_InvalidSchedule(t *testing.T) {
	_, err := NewScheduler(runner("every morning"))
	assert.Error(t, err)

	// Five-field specs lack the seconds field this scheduler expects.
	_, err = NewScheduler(runner("0 8 * * *"))
	assert.Error(t, err)
}
