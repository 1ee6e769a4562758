package scheduler

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alphapulse/pulse/pkg/config"
	"github.com/alphapulse/pulse/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(&config.Config{Env: "test", LogLevel: "error", LogFormat: "json"})
}

type stubJob struct {
	name     string
	schedule string
	runs     atomic.Int64
	failures int64
}

func (j *stubJob) Name() string     { return j.name }
func (j *stubJob) Schedule() string { return j.schedule }

func (j *stubJob) Run(context.Context) error {
	n := j.runs.Add(1)
	if n <= j.failures {
		return fmt.Errorf("transient failure %d", n)
	}
	return nil
}

func waitForHistory(t *testing.T, s *Scheduler, name string) *JobResult {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		history, err := s.History(name)
		require.NoError(t, err)
		if last := history.LastResult(); last != nil {
			return last
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("job never recorded a result")
	return nil
}

func TestAddJobRejectsDuplicates(t *testing.T) {
	s := New(testLogger())

	require.NoError(t, s.AddJob(&stubJob{name: "cycle", schedule: "@every 1h"}))
	assert.Error(t, s.AddJob(&stubJob{name: "cycle", schedule: "@every 1h"}))
	assert.Equal(t, []string{"cycle"}, s.Jobs())
}

func TestAddJobRejectsBadSchedule(t *testing.T) {
	s := New(testLogger())
	assert.Error(t, s.AddJob(&stubJob{name: "broken", schedule: "not a schedule"}))
}

func TestRunJobRecordsHistory(t *testing.T) {
	s := New(testLogger())
	job := &stubJob{name: "cycle", schedule: "@every 1h"}
	require.NoError(t, s.AddJob(job))

	require.NoError(t, s.RunJob("cycle"))

	last := waitForHistory(t, s, "cycle")
	assert.True(t, last.Success)
	assert.Equal(t, "cycle", last.JobName)
	assert.EqualValues(t, 1, job.runs.Load())
}

func TestRunJobRetriesOnFailure(t *testing.T) {
	s := New(testLogger())
	s.retryDelay = time.Millisecond

	job := &stubJob{name: "cycle", schedule: "@every 1h", failures: 1}
	require.NoError(t, s.AddJob(job))
	require.NoError(t, s.RunJob("cycle"))

	last := waitForHistory(t, s, "cycle")
	assert.True(t, last.Success)
	assert.EqualValues(t, 2, job.runs.Load())
}

func TestRunJobExhaustsRetries(t *testing.T) {
	s := New(testLogger())
	s.retryDelay = time.Millisecond

	job := &stubJob{name: "cycle", schedule: "@every 1h", failures: 100}
	require.NoError(t, s.AddJob(job))
	require.NoError(t, s.RunJob("cycle"))

	last := waitForHistory(t, s, "cycle")
	assert.False(t, last.Success)
	assert.Contains(t, last.Error, "transient failure")

	history, err := s.History("cycle")
	require.NoError(t, err)
	assert.Equal(t, 0.0, history.SuccessRate())
}

func TestRunJobUnknown(t *testing.T) {
	s := New(testLogger())
	assert.Error(t, s.RunJob("missing"))
	_, err := s.History("missing")
	assert.Error(t, err)
}

func TestJobHistoryTrims(t *testing.T) {
	h := &JobHistory{}
	for i := 0; i < historyLimit+20; i++ {
		h.AddResult(JobResult{JobName: "cycle", Success: i%2 == 0})
	}
	assert.Len(t, h.Results, historyLimit)
}
