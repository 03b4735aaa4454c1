package repository

import (
	"context"
	"errors"
	"time"

	"github.com/vigil-dev/vigil/internal/models"
	"gorm.io/gorm"
)

type GormMonitorRepository struct {
	db *gorm.DB
}

func NewMonitorRepository(db *gorm.DB) *GormMonitorRepository {
	return &GormMonitorRepository{db: db}
}

func (r *GormMonitorRepository) Get(ctx context.Context, workspaceID, monitorID uint) (*models.Monitor, error) {
	var monitor models.Monitor

	err := r.db.WithContext(ctx).
		Preload("Jobs", func(db *gorm.DB) *gorm.DB {
			return db.Order("jobs.started_at DESC")
		}).
		Where("id = ? AND workspace_id = ?", monitorID, workspaceID).
		First(&monitor).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &models.MonitorNotFoundError{MonitorID: monitorID, WorkspaceID: workspaceID}
		}
		return nil, &models.RepositoryError{Op: "get monitor", Err: err}
	}

	return &monitor, nil
}

func (r *GormMonitorRepository) All(ctx context.Context, workspaceID uint) ([]models.Monitor, error) {
	var monitors []models.Monitor

	err := r.db.WithContext(ctx).
		Preload("Jobs", func(db *gorm.DB) *gorm.DB {
			return db.Order("jobs.started_at DESC")
		}).
		Where("workspace_id = ?", workspaceID).
		Find(&monitors).Error

	if err != nil {
		return nil, &models.RepositoryError{Op: "list monitors", Err: err}
	}

	return monitors, nil
}

// Save persists the monitor and its jobs in one call, so alert-sent flags
// flipped on job handles become durable together with the monitor.
func (r *GormMonitorRepository) Save(ctx context.Context, monitor *models.Monitor) error {
	err := r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(monitor).Error

	if err != nil {
		return &models.RepositoryError{Op: "save monitor", Err: err}
	}

	return nil
}

func (r *GormMonitorRepository) Delete(ctx context.Context, monitor *models.Monitor) error {
	if err := r.db.WithContext(ctx).Delete(monitor).Error; err != nil {
		return &models.RepositoryError{Op: "delete monitor", Err: err}
	}

	return nil
}

// GetWithErroneousJobs applies the same late/errored predicates as the Job
// methods, in SQL, so the scan and the in-memory checks agree: late means the
// deadline passed before the job finished (or before now if still running),
// errored means finished unsuccessfully.
func (r *GormMonitorRepository) GetWithErroneousJobs(ctx context.Context) ([]models.Monitor, error) {
	var monitors []models.Monitor

	now := time.Now().UTC()

	err := r.db.WithContext(ctx).
		Preload("Jobs").
		Where(`monitors.id IN (
			SELECT jobs.monitor_id FROM jobs WHERE
				(jobs.end_time IS NULL AND jobs.max_end_time < ? AND NOT jobs.late_alert_sent)
				OR (jobs.end_time IS NOT NULL AND jobs.end_time > jobs.max_end_time AND NOT jobs.late_alert_sent)
				OR (jobs.succeeded = FALSE AND NOT jobs.error_alert_sent)
		)`, now).
		Find(&monitors).Error

	if err != nil {
		return nil, &models.RepositoryError{Op: "scan erroneous jobs", Err: err}
	}

	return monitors, nil
}
