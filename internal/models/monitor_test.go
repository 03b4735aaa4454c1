package models_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vigil-dev/vigil/internal/models"
)

func newMonitor() models.Monitor {
	monitor := models.Monitor{
		WorkspaceID:      1,
		Name:             "backup.sh",
		ExpectedDuration: 300,
		GraceDuration:    100,
	}
	monitor.ID = 42

	return monitor
}

func TestMonitorStartJob(t *testing.T) {
	t.Parallel()

	monitor := newMonitor()

	job := monitor.StartJob()

	require.Len(t, monitor.Jobs, 1)
	require.Same(t, &monitor.Jobs[0], job)
	require.NotEmpty(t, job.ID)
	require.Equal(t, monitor.ID, job.MonitorID)
	require.True(t, job.InProgress())

	// Grace is folded into the deadline at start time.
	require.Equal(t, 400*time.Second, job.MaxEndTime.Sub(job.StartedAt))

	second := monitor.StartJob()
	require.Len(t, monitor.Jobs, 2)
	require.NotEqual(t, job.ID, second.ID)
}

func TestMonitorFinishJob(t *testing.T) {
	t.Parallel()

	t.Run("finishes the named job", func(t *testing.T) {
		t.Parallel()

		monitor := newMonitor()
		started := monitor.StartJob()

		job, err := monitor.FinishJob(started.ID, true, "ok")
		require.NoError(t, err)
		require.False(t, job.InProgress())
		require.False(t, monitor.Jobs[0].InProgress())
	})

	t.Run("unknown job id", func(t *testing.T) {
		t.Parallel()

		monitor := newMonitor()
		monitor.StartJob()

		_, err := monitor.FinishJob("nope", true, "")

		var notFound *models.JobNotFoundError
		require.ErrorAs(t, err, &notFound)
		require.Equal(t, "nope", notFound.JobID)
		require.Equal(t, monitor.ID, notFound.MonitorID)
	})

	t.Run("propagates already finished", func(t *testing.T) {
		t.Parallel()

		monitor := newMonitor()
		started := monitor.StartJob()

		_, err := monitor.FinishJob(started.ID, true, "")
		require.NoError(t, err)

		_, err = monitor.FinishJob(started.ID, false, "")

		var finished *models.JobAlreadyFinishedError
		require.ErrorAs(t, err, &finished)
	})
}

func TestMonitorJobQueries(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	past := now.Add(-5 * time.Minute)
	future := now.Add(5 * time.Minute)
	failed := false
	succeeded := true

	monitor := newMonitor()
	monitor.Jobs = []models.Job{
		// Running, before deadline
		{ID: "running", StartedAt: past, MaxEndTime: future},
		// Running, past deadline, not yet alerted
		{ID: "late", StartedAt: past, MaxEndTime: past},
		// Running, past deadline, already alerted
		{ID: "late-acked", StartedAt: past, MaxEndTime: past, LateAlertSent: true},
		// Finished on time but unsuccessfully
		{ID: "errored", StartedAt: past, MaxEndTime: future, EndTime: &now, Succeeded: &failed},
		// Finished on time, successfully
		{ID: "clean", StartedAt: past, MaxEndTime: future, EndTime: &now, Succeeded: &succeeded},
	}

	t.Run("jobs in progress", func(t *testing.T) {
		t.Parallel()

		ids := jobIDs(monitor.JobsInProgress())
		require.Equal(t, []string{"running", "late", "late-acked"}, ids)
	})

	t.Run("late jobs excludes already alerted", func(t *testing.T) {
		t.Parallel()

		ids := jobIDs(monitor.LateJobs())
		require.Equal(t, []string{"late"}, ids)
	})

	t.Run("pending alerts is the union of late and errored", func(t *testing.T) {
		t.Parallel()

		ids := jobIDs(monitor.JobsPendingAlerts())
		require.Equal(t, []string{"late", "errored"}, ids)
	})

	t.Run("returned handles alias the owned collection", func(t *testing.T) {
		pending := monitor.JobsPendingAlerts()
		require.NotEmpty(t, pending)

		pending[0].LateAlertSent = true
		require.True(t, monitor.Jobs[1].LateAlertSent)

		// The parallel siblings are parked until this sequential subtest
		// returns; restore so they observe the original fixture.
		pending[0].LateAlertSent = false
	})
}

func jobIDs(jobs []*models.Job) []string {
	ids := make([]string, len(jobs))
	for i, job := range jobs {
		ids[i] = job.ID
	}

	return ids
}
