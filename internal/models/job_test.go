package models_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vigil-dev/vigil/internal/models"
)

func runningJob(startedAgo, deadlineIn time.Duration) models.Job {
	now := time.Now().UTC()

	return models.Job{
		ID:         "job-1",
		StartedAt:  now.Add(-startedAgo),
		MaxEndTime: now.Add(deadlineIn),
	}
}

func TestJobFinish(t *testing.T) {
	t.Parallel()

	t.Run("records end state atomically", func(t *testing.T) {
		t.Parallel()

		job := runningJob(time.Minute, time.Minute)
		require.True(t, job.InProgress())

		require.NoError(t, job.Finish(true, "done"))

		require.False(t, job.InProgress())
		require.NotNil(t, job.EndTime)
		require.NotNil(t, job.Succeeded)
		require.True(t, *job.Succeeded)
		require.Equal(t, "done", job.Output)
	})

	t.Run("finishing twice is rejected and keeps the first outcome", func(t *testing.T) {
		t.Parallel()

		job := runningJob(time.Minute, time.Minute)
		require.NoError(t, job.Finish(false, "first"))

		firstEnd := *job.EndTime

		err := job.Finish(true, "second")

		var finished *models.JobAlreadyFinishedError
		require.ErrorAs(t, err, &finished)
		require.Equal(t, job.ID, finished.JobID)

		require.Equal(t, firstEnd, *job.EndTime)
		require.False(t, *job.Succeeded)
		require.Equal(t, "first", job.Output)
	})
}

func TestJobDuration(t *testing.T) {
	t.Parallel()

	t.Run("undefined while in progress", func(t *testing.T) {
		t.Parallel()

		job := runningJob(time.Minute, time.Minute)

		_, ok := job.Duration()
		require.False(t, ok)
	})

	t.Run("defined once finished", func(t *testing.T) {
		t.Parallel()

		job := runningJob(time.Minute, time.Minute)
		require.NoError(t, job.Finish(true, ""))

		d, ok := job.Duration()
		require.True(t, ok)
		require.InDelta(t, time.Minute.Seconds(), d.Seconds(), 1.0)
	})
}

func TestJobLate(t *testing.T) {
	t.Parallel()

	t.Run("running job past its deadline is late", func(t *testing.T) {
		t.Parallel()

		job := runningJob(10*time.Minute, -5*time.Minute)
		require.True(t, job.Late())
	})

	t.Run("running job before its deadline is not late", func(t *testing.T) {
		t.Parallel()

		job := runningJob(time.Minute, 5*time.Minute)
		require.False(t, job.Late())
	})

	t.Run("job that finished before the deadline stays not late", func(t *testing.T) {
		t.Parallel()

		// The deadline has since passed, but the job beat it.
		now := time.Now().UTC()
		end := now.Add(-7 * time.Minute)
		ok := true

		job := models.Job{
			ID:         "job-1",
			StartedAt:  now.Add(-10 * time.Minute),
			MaxEndTime: now.Add(-5 * time.Minute),
			EndTime:    &end,
			Succeeded:  &ok,
		}

		require.False(t, job.Late())
	})

	t.Run("job that finished after the deadline is late", func(t *testing.T) {
		t.Parallel()

		now := time.Now().UTC()
		end := now.Add(-2 * time.Minute)
		ok := true

		job := models.Job{
			ID:         "job-1",
			StartedAt:  now.Add(-10 * time.Minute),
			MaxEndTime: now.Add(-5 * time.Minute),
			EndTime:    &end,
			Succeeded:  &ok,
		}

		require.True(t, job.Late())
	})
}

func TestJobErrored(t *testing.T) {
	t.Parallel()

	t.Run("running job is not errored", func(t *testing.T) {
		t.Parallel()

		job := runningJob(time.Minute, time.Minute)
		require.False(t, job.Errored())
	})

	t.Run("successful finish is not errored", func(t *testing.T) {
		t.Parallel()

		job := runningJob(time.Minute, time.Minute)
		require.NoError(t, job.Finish(true, ""))
		require.False(t, job.Errored())
	})

	t.Run("unsuccessful finish is errored", func(t *testing.T) {
		t.Parallel()

		job := runningJob(time.Minute, time.Minute)
		require.NoError(t, job.Finish(false, "exit status 1"))
		require.True(t, job.Errored())
	})
}
