package repository

import (
	"context"

	"github.com/vigil-dev/vigil/internal/models"
)

// MonitorRepository is the persistence contract the services depend on.
// Implementations return *models.MonitorNotFoundError when a scoped lookup
// misses and wrap other failures in *models.RepositoryError.
type MonitorRepository interface {
	Get(ctx context.Context, workspaceID, monitorID uint) (*models.Monitor, error)
	All(ctx context.Context, workspaceID uint) ([]models.Monitor, error)
	Save(ctx context.Context, monitor *models.Monitor) error
	Delete(ctx context.Context, monitor *models.Monitor) error

	// GetWithErroneousJobs returns, across all workspaces, every monitor
	// holding at least one job that is late and not late-alerted, or errored
	// and not error-alerted.
	GetWithErroneousJobs(ctx context.Context) ([]models.Monitor, error)
}

type AlertConfigRepository interface {
	Get(ctx context.Context, workspaceID, alertConfigID uint) (*models.AlertConfig, error)
	All(ctx context.Context, workspaceID uint) ([]models.AlertConfig, error)
	GetByIDs(ctx context.Context, workspaceID uint, alertConfigIDs []uint) ([]models.AlertConfig, error)
	GetByMonitors(ctx context.Context, monitorIDs []uint) ([]models.AlertConfig, error)
	Save(ctx context.Context, config *models.AlertConfig) error
	Delete(ctx context.Context, config *models.AlertConfig) error
}
