package models

import (
	"time"
)

// Job is one execution of a monitor, reported from the outside via the API.
// EndTime and Succeeded are set together by Finish: a job is either fully
// in progress (both nil) or fully finished (both present).
type Job struct {
	ID        string `gorm:"primaryKey" json:"id"`
	MonitorID uint   `gorm:"not null;index" json:"monitor_id"`

	StartedAt  time.Time `gorm:"not null" json:"started_at"`
	MaxEndTime time.Time `gorm:"not null" json:"max_end_time"` // started_at + expected + grace, frozen at start

	EndTime   *time.Time `json:"end_time"`
	Succeeded *bool      `json:"succeeded"`
	Output    string     `json:"output"`

	LateAlertSent  bool `gorm:"not null;default:false" json:"late_alert_sent"`
	ErrorAlertSent bool `gorm:"not null;default:false" json:"error_alert_sent"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Finish records the terminal outcome. Finishing twice is rejected and the
// first outcome is left untouched.
func (j *Job) Finish(succeeded bool, output string) error {
	if !j.InProgress() {
		return &JobAlreadyFinishedError{JobID: j.ID}
	}

	now := time.Now().UTC()
	j.EndTime = &now
	j.Succeeded = &succeeded
	j.Output = output

	return nil
}

func (j *Job) InProgress() bool {
	return j.EndTime == nil
}

// Late reports whether the job passed its deadline without finishing by then.
// For a finished job the finish time is compared against the deadline, so a
// job that finished on time never becomes late after the fact.
func (j *Job) Late() bool {
	if j.EndTime != nil {
		return j.EndTime.After(j.MaxEndTime)
	}

	return time.Now().UTC().After(j.MaxEndTime)
}

func (j *Job) Errored() bool {
	return j.EndTime != nil && j.Succeeded != nil && !*j.Succeeded
}

// Duration returns the elapsed run time. The bool is false while the job is
// still in progress.
func (j *Job) Duration() (time.Duration, bool) {
	if j.EndTime == nil {
		return 0, false
	}

	d := j.EndTime.Sub(j.StartedAt)

	if d < 0 {
		d = -d
	}

	return d, true
}
