package scheduler

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingJob struct {
	runs int
	err  error
}

func (j *recordingJob) Run() error   { j.runs++; return j.err }
func (j *recordingJob) Name() string { return "recording" }

func TestAddJob_InvalidSchedule(t *testing.T) {
	s := New(zerolog.Nop())

	err := s.AddJob("not a schedule", &recordingJob{})
	assert.Error(t, err)
}

func TestAddJob_ValidSchedules(t *testing.T) {
	s := New(zerolog.Nop())

	for _, schedule := range []string{"@daily", "@every 1h", "0 6 * * *"} {
		assert.NoError(t, s.AddJob(schedule, &recordingJob{}), "schedule %q", schedule)
	}
}

func TestRunNow(t *testing.T) {
	s := New(zerolog.Nop())

	job := &recordingJob{}
	require.NoError(t, s.RunNow(job))
	assert.Equal(t, 1, job.runs)

	failing := &recordingJob{err: errors.New("boom")}
	assert.Error(t, s.RunNow(failing))
	assert.Equal(t, 1, failing.runs)
}

func TestStartStop(t *testing.T) {
	s := New(zerolog.Nop())
	require.NoError(t, s.AddJob("@daily", &recordingJob{}))

	s.Start()
	s.Stop()
}
