package services

import (
	"context"
	"log"

	"github.com/vigil-dev/vigil/internal/models"
	"github.com/vigil-dev/vigil/internal/notifier"
	"github.com/vigil-dev/vigil/internal/repository"
)

// AlertingService runs the per-tick pass over every monitor, across all
// workspaces, that holds jobs needing a late or error alert. A single pass
// runs at a time; the scheduler is not reentrant.
type AlertingService struct {
	monitors  repository.MonitorRepository
	configs   repository.AlertConfigRepository
	notifiers notifier.Factory

	onSaved func(workspaceID uint)
}

func NewAlertingService(monitors repository.MonitorRepository, configs repository.AlertConfigRepository, notifiers notifier.Factory) *AlertingService {
	return &AlertingService{monitors: monitors, configs: configs, notifiers: notifiers}
}

// OnMonitorSaved registers a hook invoked with the owning workspace id after
// each monitor committed in a pass, so dashboards can be told to refresh.
// Abandoned monitors never trigger it.
func (s *AlertingService) OnMonitorSaved(hook func(workspaceID uint)) {
	s.onSaved = hook
}

// RunPass detects monitors with pending alerts, dispatches notifications and
// marks alert-sent flags, then saves each monitor once.
//
// Failure isolation is per monitor: a notify or save failure abandons that
// monitor (its flag flips are never persisted, so its jobs are retried next
// pass) and the loop moves on. The returned error, if any, aggregates the ids
// of every failed monitor; successfully processed monitors stay committed.
func (s *AlertingService) RunPass(ctx context.Context) error {
	monitors, err := s.monitors.GetWithErroneousJobs(ctx)
	if err != nil {
		return err
	}

	if len(monitors) == 0 {
		return nil
	}

	monitorIDs := make([]uint, len(monitors))
	for i := range monitors {
		monitorIDs[i] = monitors[i].ID
	}

	configs, err := s.configs.GetByMonitors(ctx, monitorIDs)
	if err != nil {
		return err
	}

	var failedIDs []uint

	for i := range monitors {
		monitor := &monitors[i]

		if err := s.processMonitor(ctx, monitor, configs); err != nil {
			log.Printf("Alerting failed for monitor %d (%s): %v", monitor.ID, monitor.Name, err)
			failedIDs = append(failedIDs, monitor.ID)
			continue
		}

		if err := s.monitors.Save(ctx, monitor); err != nil {
			log.Printf("Failed to save monitor %d after alerting: %v", monitor.ID, err)
			failedIDs = append(failedIDs, monitor.ID)
			continue
		}

		if s.onSaved != nil {
			s.onSaved(monitor.WorkspaceID)
		}
	}

	if len(failedIDs) > 0 {
		return &models.AlertingPassError{FailedMonitorIDs: failedIDs}
	}

	return nil
}

// processMonitor dispatches alerts for every pending job of one monitor,
// flipping alert-sent flags in place. The first notify failure aborts the
// whole monitor so nothing half-done gets saved.
func (s *AlertingService) processMonitor(ctx context.Context, monitor *models.Monitor, configs []models.AlertConfig) error {
	lateConfigs := applicableConfigs(configs, monitor.ID, func(c *models.AlertConfig) bool { return c.OnLate })
	errorConfigs := applicableConfigs(configs, monitor.ID, func(c *models.AlertConfig) bool { return c.OnError })

	for _, job := range monitor.JobsPendingAlerts() {
		// A job can be both late and errored; the conditions alert
		// independently, late first.
		if job.Late() && !job.LateAlertSent && len(lateConfigs) > 0 {
			for _, config := range lateConfigs {
				sender, err := s.notifiers.GetNotifier(config)
				if err != nil {
					return err
				}

				if err := sender.NotifyLateJob(ctx, monitor.ID, monitor.Name, job); err != nil {
					return err
				}
			}

			job.LateAlertSent = true
		}

		if job.Errored() && !job.ErrorAlertSent && len(errorConfigs) > 0 {
			for _, config := range errorConfigs {
				sender, err := s.notifiers.GetNotifier(config)
				if err != nil {
					return err
				}

				if err := sender.NotifyErroredJob(ctx, monitor.ID, monitor.Name, job); err != nil {
					return err
				}
			}

			job.ErrorAlertSent = true
		}

		// No applicable configs means nothing was sent: the flags stay
		// unset and the job is reconsidered next pass.
	}

	return nil
}

// applicableConfigs filters, preserving the repository's order, the configs
// that are associated with the monitor, active, and enabled for the condition.
func applicableConfigs(configs []models.AlertConfig, monitorID uint, enabled func(*models.AlertConfig) bool) []*models.AlertConfig {
	var applicable []*models.AlertConfig

	for i := range configs {
		config := &configs[i]

		if config.Active && enabled(config) && config.IsAssociatedWithMonitor(monitorID) {
			applicable = append(applicable, config)
		}
	}

	return applicable
}
