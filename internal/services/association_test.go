package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vigil-dev/vigil/internal/models"
	"github.com/vigil-dev/vigil/internal/services"
	"github.com/vigil-dev/vigil/internal/types"
	"gorm.io/datatypes"
)

const workspaceID = uint(1)

func testMonitor(id uint, name string) *models.Monitor {
	monitor := &models.Monitor{
		WorkspaceID:      workspaceID,
		Name:             name,
		ExpectedDuration: 300,
		GraceDuration:    100,
	}
	monitor.ID = id

	return monitor
}

func testAlertConfig(id uint, name string) *models.AlertConfig {
	config := &models.AlertConfig{
		WorkspaceID:     workspaceID,
		Name:            name,
		Active:          true,
		OnLate:          true,
		OnError:         true,
		ChannelType:     types.ChannelChat,
		ChannelSettings: datatypes.JSON(`{"webhook_url":"https://hooks.example.com/T1","channel":"#ops"}`),
	}
	config.ID = id

	return config
}

func TestAssociateAlerts(t *testing.T) {
	t.Parallel()

	t.Run("associates every config and saves each one", func(t *testing.T) {
		t.Parallel()

		monitors := newFakeMonitorRepo()
		configs := newFakeAlertConfigRepo()

		monitors.add(testMonitor(42, "backup.sh"))
		configs.add(testAlertConfig(7, "ops"))
		configs.add(testAlertConfig(8, "night shift"))

		service := services.NewAssociationService(monitors, configs)

		err := service.AssociateAlerts(context.Background(), workspaceID, 42, []uint{7, 8})
		require.NoError(t, err)

		require.Equal(t, []uint{7, 8}, configs.saves)
		require.True(t, configs.configs[7].IsAssociatedWithMonitor(42))
		require.True(t, configs.configs[8].IsAssociatedWithMonitor(42))

		// The snapshot captures the monitor name at association time.
		require.Equal(t, "backup.sh", configs.configs[7].AppliedMonitors[0].MonitorName)
	})

	t.Run("missing monitor", func(t *testing.T) {
		t.Parallel()

		monitors := newFakeMonitorRepo()
		configs := newFakeAlertConfigRepo()
		configs.add(testAlertConfig(7, "ops"))

		service := services.NewAssociationService(monitors, configs)

		err := service.AssociateAlerts(context.Background(), workspaceID, 42, []uint{7})

		var notFound *models.MonitorNotFoundError
		require.ErrorAs(t, err, &notFound)
		require.Empty(t, configs.saves)
	})

	t.Run("names exactly the missing config ids and saves nothing", func(t *testing.T) {
		t.Parallel()

		monitors := newFakeMonitorRepo()
		configs := newFakeAlertConfigRepo()

		monitors.add(testMonitor(42, "backup.sh"))
		configs.add(testAlertConfig(7, "ops"))

		// Config 8 exists but in another workspace; config 9 does not exist.
		foreign := testAlertConfig(8, "foreign")
		foreign.WorkspaceID = 2
		configs.add(foreign)

		service := services.NewAssociationService(monitors, configs)

		err := service.AssociateAlerts(context.Background(), workspaceID, 42, []uint{7, 8, 9})

		var notFound *models.AlertConfigNotFoundError
		require.ErrorAs(t, err, &notFound)
		require.Equal(t, []uint{8, 9}, notFound.MissingIDs)
		require.Empty(t, configs.saves)
	})

	t.Run("collects every duplicate and issues no saves", func(t *testing.T) {
		t.Parallel()

		monitors := newFakeMonitorRepo()
		configs := newFakeAlertConfigRepo()

		monitor := testMonitor(42, "backup.sh")
		monitors.add(monitor)

		dup := testAlertConfig(7, "ops")
		require.NoError(t, dup.AssociateMonitor(monitor))
		configs.add(dup)

		configs.add(testAlertConfig(8, "night shift"))

		service := services.NewAssociationService(monitors, configs)

		err := service.AssociateAlerts(context.Background(), workspaceID, 42, []uint{7, 8})

		var cfgErr *models.AlertConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		require.Len(t, cfgErr.Failures, 1)
		require.Equal(t, uint(7), cfgErr.Failures[0].AlertConfigID)

		// Config 8 could have been associated, but the call is
		// all-or-nothing before persistence.
		require.Empty(t, configs.saves)
		require.False(t, configs.configs[8].IsAssociatedWithMonitor(42))
	})
}

func TestDisassociateAlert(t *testing.T) {
	t.Parallel()

	t.Run("removes the association and saves", func(t *testing.T) {
		t.Parallel()

		monitors := newFakeMonitorRepo()
		configs := newFakeAlertConfigRepo()

		monitor := testMonitor(42, "backup.sh")
		monitors.add(monitor)

		config := testAlertConfig(7, "ops")
		require.NoError(t, config.AssociateMonitor(monitor))
		configs.add(config)

		service := services.NewAssociationService(monitors, configs)

		err := service.DisassociateAlert(context.Background(), workspaceID, 42, 7)
		require.NoError(t, err)

		require.Equal(t, []uint{7}, configs.saves)
		require.False(t, configs.configs[7].IsAssociatedWithMonitor(42))
	})

	t.Run("unassociated pair is an error and saves nothing", func(t *testing.T) {
		t.Parallel()

		monitors := newFakeMonitorRepo()
		configs := newFakeAlertConfigRepo()

		monitors.add(testMonitor(42, "backup.sh"))
		configs.add(testAlertConfig(7, "ops"))

		service := services.NewAssociationService(monitors, configs)

		err := service.DisassociateAlert(context.Background(), workspaceID, 42, 7)

		var cfgErr *models.AlertConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		require.Empty(t, configs.saves)
	})

	t.Run("missing config", func(t *testing.T) {
		t.Parallel()

		monitors := newFakeMonitorRepo()
		configs := newFakeAlertConfigRepo()

		monitors.add(testMonitor(42, "backup.sh"))

		service := services.NewAssociationService(monitors, configs)

		err := service.DisassociateAlert(context.Background(), workspaceID, 42, 7)

		var notFound *models.AlertConfigNotFoundError
		require.ErrorAs(t, err, &notFound)
		require.Equal(t, []uint{7}, notFound.MissingIDs)
	})
}
