package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubJob struct {
	name      string
	schedule  string
	failTimes int
	runs      int
}

func (j *stubJob) Name() string     { return j.name }
func (j *stubJob) Schedule() string { return j.schedule }

func (j *stubJob) Run(_ context.Context) error {
	j.runs++
	if j.runs <= j.failTimes {
		return errors.New("transient failure")
	}
	return nil
}

func newTestScheduler() *Scheduler {
	s := New(zerolog.Nop())
	s.sleep = func(time.Duration) {}
	return s
}

func TestAddJob_RejectsDuplicateName(t *testing.T) {
	s := newTestScheduler()

	require.NoError(t, s.AddJob(&stubJob{name: "training", schedule: "@weekly"}))
	err := s.AddJob(&stubJob{name: "training", schedule: "@daily"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestAddJob_RejectsBadSchedule(t *testing.T) {
	s := newTestScheduler()
	err := s.AddJob(&stubJob{name: "broken", schedule: "not a cron expression"})
	require.Error(t, err)
}

func TestRunJobAndWait_RetriesThenSucceeds(t *testing.T) {
	s := newTestScheduler()
	job := &stubJob{name: "flaky", schedule: "@weekly", failTimes: 2}
	require.NoError(t, s.AddJob(job))

	require.NoError(t, s.RunJobAndWait("flaky"))
	assert.Equal(t, 3, job.runs)

	history, err := s.JobHistory("flaky")
	require.NoError(t, err)
	require.Len(t, history.Results, 1)
	assert.True(t, history.Results[0].Success)
}

func TestRunJobAndWait_FailsAfterAllRetries(t *testing.T) {
	s := newTestScheduler()
	job := &stubJob{name: "doomed", schedule: "@weekly", failTimes: 100}
	require.NoError(t, s.AddJob(job))

	err := s.RunJobAndWait("doomed")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transient failure")
	assert.Equal(t, 4, job.runs) // initial attempt plus three retries

	history, err := s.JobHistory("doomed")
	require.NoError(t, err)
	require.Len(t, history.Results, 1)
	assert.False(t, history.Results[0].Success)
}

type panickingJob struct {
	panics int
	runs   int
}

func (j *panickingJob) Name() string     { return "panicky" }
func (j *panickingJob) Schedule() string { return "@weekly" }

func (j *panickingJob) Run(_ context.Context) error {
	j.runs++
	if j.runs <= j.panics {
		panic("index out of range in job body")
	}
	return nil
}

func TestRunJobAndWait_PanicBecomesFailedAttempt(t *testing.T) {
	s := newTestScheduler()
	job := &panickingJob{panics: 100}
	require.NoError(t, s.AddJob(job))

	err := s.RunJobAndWait("panicky")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "job panicked")
	assert.Equal(t, 4, job.runs)

	history, histErr := s.JobHistory("panicky")
	require.NoError(t, histErr)
	require.Len(t, history.Results, 1)
	assert.False(t, history.Results[0].Success)
	assert.Contains(t, history.Results[0].Error, "job panicked")

	// The scheduler keeps working after a panicking job.
	other := &stubJob{name: "healthy", schedule: "@weekly"}
	require.NoError(t, s.AddJob(other))
	require.NoError(t, s.RunJobAndWait("healthy"))
}

func TestRunJobAndWait_PanicIsRetriedLikeAnError(t *testing.T) {
	s := newTestScheduler()
	job := &panickingJob{panics: 2}
	require.NoError(t, s.AddJob(job))

	require.NoError(t, s.RunJobAndWait("panicky"))
	assert.Equal(t, 3, job.runs)
}

func TestRunJob_UnknownJob(t *testing.T) {
	s := newTestScheduler()
	require.Error(t, s.RunJob("nope"))
	require.Error(t, s.RunJobAndWait("nope"))
}

func TestJobStats(t *testing.T) {
	s := newTestScheduler()
	job := &stubJob{name: "training", schedule: "@weekly", failTimes: 100}
	require.NoError(t, s.AddJob(job))

	_ = s.RunJobAndWait("training")
	job.runs = 100 // exhaust failures so the next run succeeds
	require.NoError(t, s.RunJobAndWait("training"))

	stats := s.JobStats()
	require.Contains(t, stats, "training")
	assert.Equal(t, 2, stats["training"].TotalRuns)
	assert.Equal(t, 1, stats["training"].SuccessCount)
	assert.Equal(t, 1, stats["training"].FailureCount)
	assert.InDelta(t, 0.5, stats["training"].SuccessRate, 1e-12)
	require.NotNil(t, stats["training"].LastRun)
}

func TestHistory_RetentionAndQueries(t *testing.T) {
	h := &History{}
	for i := 0; i < historyLimit+20; i++ {
		h.add(Result{JobName: "x", Success: i%2 == 0})
	}

	assert.Len(t, h.Results, historyLimit)
	assert.Len(t, h.Latest(5), 5)
	assert.Len(t, h.Latest(0), 0)
	assert.InDelta(t, 0.5, h.SuccessRate(), 1e-12)
	assert.Len(t, h.Failed(), historyLimit/2)
}
