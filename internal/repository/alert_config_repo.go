package repository

import (
	"context"
	"errors"

	"github.com/vigil-dev/vigil/internal/models"
	"gorm.io/gorm"
)

type GormAlertConfigRepository struct {
	db *gorm.DB
}

func NewAlertConfigRepository(db *gorm.DB) *GormAlertConfigRepository {
	return &GormAlertConfigRepository{db: db}
}

func (r *GormAlertConfigRepository) Get(ctx context.Context, workspaceID, alertConfigID uint) (*models.AlertConfig, error) {
	var config models.AlertConfig

	err := r.db.WithContext(ctx).
		Preload("AppliedMonitors").
		Where("id = ? AND workspace_id = ?", alertConfigID, workspaceID).
		First(&config).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &models.AlertConfigNotFoundError{MissingIDs: []uint{alertConfigID}}
		}
		return nil, &models.RepositoryError{Op: "get alert config", Err: err}
	}

	return &config, nil
}

func (r *GormAlertConfigRepository) All(ctx context.Context, workspaceID uint) ([]models.AlertConfig, error) {
	var configs []models.AlertConfig

	err := r.db.WithContext(ctx).
		Preload("AppliedMonitors").
		Where("workspace_id = ?", workspaceID).
		Find(&configs).Error

	if err != nil {
		return nil, &models.RepositoryError{Op: "list alert configs", Err: err}
	}

	return configs, nil
}

// GetByIDs returns the configs it finds; callers detect missing ids by
// set-difference against the request.
func (r *GormAlertConfigRepository) GetByIDs(ctx context.Context, workspaceID uint, alertConfigIDs []uint) ([]models.AlertConfig, error) {
	var configs []models.AlertConfig

	err := r.db.WithContext(ctx).
		Preload("AppliedMonitors").
		Where("workspace_id = ? AND id IN ?", workspaceID, alertConfigIDs).
		Order("id").
		Find(&configs).Error

	if err != nil {
		return nil, &models.RepositoryError{Op: "get alert configs by ids", Err: err}
	}

	return configs, nil
}

// GetByMonitors returns, across all workspaces, every config associated with
// any of the named monitors, in stable primary-key order.
func (r *GormAlertConfigRepository) GetByMonitors(ctx context.Context, monitorIDs []uint) ([]models.AlertConfig, error) {
	var configs []models.AlertConfig

	err := r.db.WithContext(ctx).
		Preload("AppliedMonitors").
		Where(`alert_configs.id IN (
			SELECT applied_monitors.alert_config_id FROM applied_monitors
			WHERE applied_monitors.monitor_id IN ? AND applied_monitors.deleted_at IS NULL
		)`, monitorIDs).
		Order("id").
		Find(&configs).Error

	if err != nil {
		return nil, &models.RepositoryError{Op: "get alert configs by monitors", Err: err}
	}

	return configs, nil
}

// Save persists the config and reconciles its applied monitors: Replace
// removes association rows for monitors disassociated in memory, which a
// plain save would leave behind.
func (r *GormAlertConfigRepository) Save(ctx context.Context, config *models.AlertConfig) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("AppliedMonitors").Save(config).Error; err != nil {
			return err
		}

		return tx.Model(config).Association("AppliedMonitors").Replace(config.AppliedMonitors)
	})

	if err != nil {
		return &models.RepositoryError{Op: "save alert config", Err: err}
	}

	return nil
}

func (r *GormAlertConfigRepository) Delete(ctx context.Context, config *models.AlertConfig) error {
	if err := r.db.WithContext(ctx).Select("AppliedMonitors").Delete(config).Error; err != nil {
		return &models.RepositoryError{Op: "delete alert config", Err: err}
	}

	return nil
}
