package models

import (
	"fmt"
	"strings"
)

// Domain errors carry the kind and identifying ids so the HTTP layer can map
// them to status codes deterministically instead of parsing messages.

type MonitorNotFoundError struct {
	MonitorID   uint
	WorkspaceID uint
}

func (e *MonitorNotFoundError) Error() string {
	return fmt.Sprintf("monitor %d not found in workspace %d", e.MonitorID, e.WorkspaceID)
}

type JobNotFoundError struct {
	MonitorID uint
	JobID     string
}

func (e *JobNotFoundError) Error() string {
	return fmt.Sprintf("job %s not found in monitor %d", e.JobID, e.MonitorID)
}

type JobAlreadyFinishedError struct {
	JobID string
}

func (e *JobAlreadyFinishedError) Error() string {
	return fmt.Sprintf("job %s is already finished", e.JobID)
}

// AlertConfigNotFoundError names every requested id that could not be found,
// not just the first.
type AlertConfigNotFoundError struct {
	MissingIDs []uint
}

func (e *AlertConfigNotFoundError) Error() string {
	ids := make([]string, len(e.MissingIDs))
	for i, id := range e.MissingIDs {
		ids[i] = fmt.Sprint(id)
	}

	return "alert configs not found: " + strings.Join(ids, ", ")
}

type InvalidAlertConfigError struct {
	Reason string
}

func (e *InvalidAlertConfigError) Error() string {
	return "invalid alert config: " + e.Reason
}

type AlertConfigFailure struct {
	AlertConfigID uint
	Message       string
}

// AlertConfigurationError reports association invariant violations, either a
// single failure or several collected across one call.
type AlertConfigurationError struct {
	Failures []AlertConfigFailure
}

func NewAlertConfigurationError(alertConfigID uint, message string) *AlertConfigurationError {
	return &AlertConfigurationError{
		Failures: []AlertConfigFailure{{AlertConfigID: alertConfigID, Message: message}},
	}
}

func (e *AlertConfigurationError) Error() string {
	if len(e.Failures) == 1 {
		return e.Failures[0].Message
	}

	msgs := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		msgs[i] = f.Message
	}

	return fmt.Sprintf("%d alert configuration failures: %s", len(e.Failures), strings.Join(msgs, "; "))
}

// RepositoryError wraps an opaque persistence failure.
type RepositoryError struct {
	Op  string
	Err error
}

func (e *RepositoryError) Error() string {
	return fmt.Sprintf("repository %s: %v", e.Op, e.Err)
}

func (e *RepositoryError) Unwrap() error {
	return e.Err
}

// NotifyError wraps an opaque channel-delivery failure.
type NotifyError struct {
	Channel string
	Err     error
}

func (e *NotifyError) Error() string {
	return fmt.Sprintf("notify via %s: %v", e.Channel, e.Err)
}

func (e *NotifyError) Unwrap() error {
	return e.Err
}

// AlertingPassError names every monitor whose pass failed. Monitors not named
// here were notified and saved normally in the same pass.
type AlertingPassError struct {
	FailedMonitorIDs []uint
}

func (e *AlertingPassError) Error() string {
	ids := make([]string, len(e.FailedMonitorIDs))
	for i, id := range e.FailedMonitorIDs {
		ids[i] = fmt.Sprint(id)
	}

	return "alerting pass failed for monitors: " + strings.Join(ids, ", ")
}
