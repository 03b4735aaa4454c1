package services

import (
	"context"
	"errors"
	"log"

	"github.com/vigil-dev/vigil/internal/models"
	"github.com/vigil-dev/vigil/internal/repository"
)

// AssociationService manages the many-to-many link between monitors and
// alert configs.
type AssociationService struct {
	monitors repository.MonitorRepository
	configs  repository.AlertConfigRepository
}

func NewAssociationService(monitors repository.MonitorRepository, configs repository.AlertConfigRepository) *AssociationService {
	return &AssociationService{monitors: monitors, configs: configs}
}

// AssociateAlerts applies every named alert config to the monitor. Association
// failures are collected across all configs and fail the whole call before any
// save is issued; only when every association succeeded are the modified
// configs saved, sequentially.
func (s *AssociationService) AssociateAlerts(ctx context.Context, workspaceID, monitorID uint, alertConfigIDs []uint) error {
	monitor, err := s.monitors.Get(ctx, workspaceID, monitorID)
	if err != nil {
		return err
	}

	configs, err := s.configs.GetByIDs(ctx, workspaceID, alertConfigIDs)
	if err != nil {
		return err
	}

	if missing := missingIDs(alertConfigIDs, configs); len(missing) > 0 {
		return &models.AlertConfigNotFoundError{MissingIDs: missing}
	}

	var failures []models.AlertConfigFailure

	for i := range configs {
		if err := configs[i].AssociateMonitor(monitor); err != nil {
			var cfgErr *models.AlertConfigurationError
			if errors.As(err, &cfgErr) {
				failures = append(failures, cfgErr.Failures...)
				continue
			}
			return err
		}
	}

	if len(failures) > 0 {
		return &models.AlertConfigurationError{Failures: failures}
	}

	for i := range configs {
		if err := s.configs.Save(ctx, &configs[i]); err != nil {
			log.Printf("Failed to save alert config %d after association: %v", configs[i].ID, err)
			return err
		}
	}

	return nil
}

// DisassociateAlert removes the monitor from a single alert config.
func (s *AssociationService) DisassociateAlert(ctx context.Context, workspaceID, monitorID, alertConfigID uint) error {
	monitor, err := s.monitors.Get(ctx, workspaceID, monitorID)
	if err != nil {
		return err
	}

	config, err := s.configs.Get(ctx, workspaceID, alertConfigID)
	if err != nil {
		return err
	}

	if err := config.DisassociateMonitor(monitor); err != nil {
		return err
	}

	return s.configs.Save(ctx, config)
}

// missingIDs computes which requested ids are absent from the loaded configs,
// so the error can name exactly the ids that were not found.
func missingIDs(requested []uint, loaded []models.AlertConfig) []uint {
	found := make(map[uint]bool, len(loaded))
	for i := range loaded {
		found[loaded[i].ID] = true
	}

	var missing []uint

	for _, id := range requested {
		if !found[id] {
			missing = append(missing, id)
		}
	}

	return missing
}
