package services_test

import (
	"context"

	"github.com/vigil-dev/vigil/internal/models"
	"github.com/vigil-dev/vigil/internal/notifier"
)

// In-memory repositories that hand out clones, the way a real load does, and
// write state back on Save so a second pass observes what was persisted.

type fakeMonitorRepo struct {
	order    []uint
	monitors map[uint]*models.Monitor

	scanErr  error
	saveErrs map[uint]error
	saves    []uint
}

func newFakeMonitorRepo() *fakeMonitorRepo {
	return &fakeMonitorRepo{
		monitors: make(map[uint]*models.Monitor),
		saveErrs: make(map[uint]error),
	}
}

func (f *fakeMonitorRepo) add(monitor *models.Monitor) {
	f.order = append(f.order, monitor.ID)
	f.monitors[monitor.ID] = monitor
}

func cloneMonitor(monitor *models.Monitor) models.Monitor {
	clone := *monitor
	clone.Jobs = append([]models.Job(nil), monitor.Jobs...)

	return clone
}

func (f *fakeMonitorRepo) Get(_ context.Context, workspaceID, monitorID uint) (*models.Monitor, error) {
	monitor, ok := f.monitors[monitorID]

	if !ok || monitor.WorkspaceID != workspaceID {
		return nil, &models.MonitorNotFoundError{MonitorID: monitorID, WorkspaceID: workspaceID}
	}

	clone := cloneMonitor(monitor)

	return &clone, nil
}

func (f *fakeMonitorRepo) All(_ context.Context, workspaceID uint) ([]models.Monitor, error) {
	var monitors []models.Monitor

	for _, id := range f.order {
		if f.monitors[id].WorkspaceID == workspaceID {
			monitors = append(monitors, cloneMonitor(f.monitors[id]))
		}
	}

	return monitors, nil
}

func (f *fakeMonitorRepo) Save(_ context.Context, monitor *models.Monitor) error {
	if err := f.saveErrs[monitor.ID]; err != nil {
		return err
	}

	f.saves = append(f.saves, monitor.ID)

	clone := cloneMonitor(monitor)
	f.monitors[monitor.ID] = &clone

	return nil
}

func (f *fakeMonitorRepo) Delete(_ context.Context, monitor *models.Monitor) error {
	delete(f.monitors, monitor.ID)

	return nil
}

func (f *fakeMonitorRepo) GetWithErroneousJobs(_ context.Context) ([]models.Monitor, error) {
	if f.scanErr != nil {
		return nil, f.scanErr
	}

	var monitors []models.Monitor

	for _, id := range f.order {
		monitor := f.monitors[id]

		if len(monitor.JobsPendingAlerts()) > 0 {
			monitors = append(monitors, cloneMonitor(monitor))
		}
	}

	return monitors, nil
}

type fakeAlertConfigRepo struct {
	order   []uint
	configs map[uint]*models.AlertConfig

	saveErrs map[uint]error
	saves    []uint
}

func newFakeAlertConfigRepo() *fakeAlertConfigRepo {
	return &fakeAlertConfigRepo{
		configs:  make(map[uint]*models.AlertConfig),
		saveErrs: make(map[uint]error),
	}
}

func (f *fakeAlertConfigRepo) add(config *models.AlertConfig) {
	f.order = append(f.order, config.ID)
	f.configs[config.ID] = config
}

func cloneAlertConfig(config *models.AlertConfig) models.AlertConfig {
	clone := *config
	clone.AppliedMonitors = append([]models.AppliedMonitor(nil), config.AppliedMonitors...)

	return clone
}

func (f *fakeAlertConfigRepo) Get(_ context.Context, workspaceID, alertConfigID uint) (*models.AlertConfig, error) {
	config, ok := f.configs[alertConfigID]

	if !ok || config.WorkspaceID != workspaceID {
		return nil, &models.AlertConfigNotFoundError{MissingIDs: []uint{alertConfigID}}
	}

	clone := cloneAlertConfig(config)

	return &clone, nil
}

func (f *fakeAlertConfigRepo) All(_ context.Context, workspaceID uint) ([]models.AlertConfig, error) {
	var configs []models.AlertConfig

	for _, id := range f.order {
		if f.configs[id].WorkspaceID == workspaceID {
			configs = append(configs, cloneAlertConfig(f.configs[id]))
		}
	}

	return configs, nil
}

func (f *fakeAlertConfigRepo) GetByIDs(_ context.Context, workspaceID uint, alertConfigIDs []uint) ([]models.AlertConfig, error) {
	requested := make(map[uint]bool, len(alertConfigIDs))
	for _, id := range alertConfigIDs {
		requested[id] = true
	}

	var configs []models.AlertConfig

	for _, id := range f.order {
		config := f.configs[id]

		if requested[id] && config.WorkspaceID == workspaceID {
			configs = append(configs, cloneAlertConfig(config))
		}
	}

	return configs, nil
}

func (f *fakeAlertConfigRepo) GetByMonitors(_ context.Context, monitorIDs []uint) ([]models.AlertConfig, error) {
	var configs []models.AlertConfig

	for _, id := range f.order {
		config := f.configs[id]

		for _, monitorID := range monitorIDs {
			if config.IsAssociatedWithMonitor(monitorID) {
				configs = append(configs, cloneAlertConfig(config))
				break
			}
		}
	}

	return configs, nil
}

func (f *fakeAlertConfigRepo) Save(_ context.Context, config *models.AlertConfig) error {
	if err := f.saveErrs[config.ID]; err != nil {
		return err
	}

	f.saves = append(f.saves, config.ID)

	clone := cloneAlertConfig(config)
	f.configs[config.ID] = &clone

	return nil
}

func (f *fakeAlertConfigRepo) Delete(_ context.Context, config *models.AlertConfig) error {
	delete(f.configs, config.ID)

	return nil
}

type notifyCall struct {
	kind          string // "late" or "errored"
	alertConfigID uint
	monitorID     uint
	monitorName   string
	jobID         string
}

// fakeNotifierFactory records every dispatch and can be told to fail
// deliveries for specific monitors.
type fakeNotifierFactory struct {
	calls        []notifyCall
	failMonitors map[uint]error
}

func newFakeNotifierFactory() *fakeNotifierFactory {
	return &fakeNotifierFactory{failMonitors: make(map[uint]error)}
}

func (f *fakeNotifierFactory) GetNotifier(config *models.AlertConfig) (notifier.Notifier, error) {
	return &fakeNotifier{factory: f, alertConfigID: config.ID}, nil
}

type fakeNotifier struct {
	factory       *fakeNotifierFactory
	alertConfigID uint
}

func (n *fakeNotifier) NotifyLateJob(_ context.Context, monitorID uint, monitorName string, job *models.Job) error {
	return n.record("late", monitorID, monitorName, job.ID)
}

func (n *fakeNotifier) NotifyErroredJob(_ context.Context, monitorID uint, monitorName string, job *models.Job) error {
	return n.record("errored", monitorID, monitorName, job.ID)
}

func (n *fakeNotifier) TestNotification(_ context.Context, _ *models.AlertConfig, _ string) error {
	return nil
}

func (n *fakeNotifier) record(kind string, monitorID uint, monitorName, jobID string) error {
	if err := n.factory.failMonitors[monitorID]; err != nil {
		return err
	}

	n.factory.calls = append(n.factory.calls, notifyCall{
		kind:          kind,
		alertConfigID: n.alertConfigID,
		monitorID:     monitorID,
		monitorName:   monitorName,
		jobID:         jobID,
	})

	return nil
}
