package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Monitor is a tracked recurring job definition. It owns its Jobs: jobs are
// created through StartJob, mutated through FinishJob or the alerting pass,
// and deleted only when the monitor is deleted.
type Monitor struct {
	gorm.Model

	WorkspaceID      uint   `gorm:"not null;index"`
	Name             string `gorm:"not null"`
	ExpectedDuration int    `gorm:"not null"` // Seconds
	GraceDuration    int    `gorm:"not null"` // Seconds

	// Relationships
	Workspace Workspace `gorm:"foreignKey:WorkspaceID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Jobs      []Job     `gorm:"foreignKey:MonitorID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}

// StartJob appends a new running job. The deadline folds the grace period in
// and is frozen here; later edits to the monitor's durations do not move it.
func (m *Monitor) StartJob() *Job {
	now := time.Now().UTC()

	job := Job{
		ID:         uuid.NewString(),
		MonitorID:  m.ID,
		StartedAt:  now,
		MaxEndTime: now.Add(time.Duration(m.ExpectedDuration+m.GraceDuration) * time.Second),
	}

	m.Jobs = append(m.Jobs, job)

	return &m.Jobs[len(m.Jobs)-1]
}

// FinishJob records the outcome of the named job.
func (m *Monitor) FinishJob(jobID string, succeeded bool, output string) (*Job, error) {
	for i := range m.Jobs {
		if m.Jobs[i].ID == jobID {
			if err := m.Jobs[i].Finish(succeeded, output); err != nil {
				return nil, err
			}
			return &m.Jobs[i], nil
		}
	}

	return nil, &JobNotFoundError{MonitorID: m.ID, JobID: jobID}
}

func (m *Monitor) JobsInProgress() []*Job {
	var jobs []*Job

	for i := range m.Jobs {
		if m.Jobs[i].InProgress() {
			jobs = append(jobs, &m.Jobs[i])
		}
	}

	return jobs
}

// LateJobs returns handles to every job past its deadline that has not been
// alerted on yet. The alerting pass flips LateAlertSent through these handles
// before the monitor is saved once.
func (m *Monitor) LateJobs() []*Job {
	var jobs []*Job

	for i := range m.Jobs {
		if m.Jobs[i].Late() && !m.Jobs[i].LateAlertSent {
			jobs = append(jobs, &m.Jobs[i])
		}
	}

	return jobs
}

// JobsPendingAlerts returns handles to jobs that still need a late alert, an
// error alert, or both. A job appears once even when both conditions hold.
func (m *Monitor) JobsPendingAlerts() []*Job {
	var jobs []*Job

	for i := range m.Jobs {
		job := &m.Jobs[i]

		needsLate := job.Late() && !job.LateAlertSent
		needsError := job.Errored() && !job.ErrorAlertSent

		if needsLate || needsError {
			jobs = append(jobs, job)
		}
	}

	return jobs
}
