package models

import (
	"fmt"

	"github.com/vigil-dev/vigil/internal/types"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AppliedMonitor records that an alert config applies to a monitor. The name
// is a snapshot taken at association time for display; it is not refreshed
// when the monitor is renamed.
type AppliedMonitor struct {
	gorm.Model

	AlertConfigID uint   `gorm:"not null;index"`
	MonitorID     uint   `gorm:"not null"`
	MonitorName   string `gorm:"not null"`
}

// AlertConfig is a workspace's notification preference: which conditions to
// alert on, over which channel, for which monitors.
type AlertConfig struct {
	gorm.Model

	WorkspaceID uint   `gorm:"not null;index"`
	Name        string `gorm:"not null"`
	Active      bool   `gorm:"not null;default:true"`
	OnLate      bool   `gorm:"not null;default:true"`
	OnError     bool   `gorm:"not null;default:true"`

	ChannelType     string         `gorm:"not null"` // See types.ChannelChat
	ChannelSettings datatypes.JSON `gorm:"type:jsonb"`

	// Relationships
	Workspace       Workspace        `gorm:"foreignKey:WorkspaceID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	AppliedMonitors []AppliedMonitor `gorm:"foreignKey:AlertConfigID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}

// AssociateMonitor applies this config to the monitor. Associating the same
// monitor twice is a client-visible error, not a no-op.
func (a *AlertConfig) AssociateMonitor(monitor *Monitor) error {
	if a.IsAssociatedWithMonitor(monitor.ID) {
		return NewAlertConfigurationError(a.ID,
			fmt.Sprintf("monitor %d is already associated with alert config %d", monitor.ID, a.ID))
	}

	a.AppliedMonitors = append(a.AppliedMonitors, AppliedMonitor{
		AlertConfigID: a.ID,
		MonitorID:     monitor.ID,
		MonitorName:   monitor.Name,
	})

	return nil
}

// DisassociateMonitor removes the monitor from this config. The association
// must exist.
func (a *AlertConfig) DisassociateMonitor(monitor *Monitor) error {
	for i := range a.AppliedMonitors {
		if a.AppliedMonitors[i].MonitorID == monitor.ID {
			a.AppliedMonitors = append(a.AppliedMonitors[:i], a.AppliedMonitors[i+1:]...)
			return nil
		}
	}

	return NewAlertConfigurationError(a.ID,
		fmt.Sprintf("monitor %d is not associated with alert config %d", monitor.ID, a.ID))
}

func (a *AlertConfig) IsAssociatedWithMonitor(monitorID uint) bool {
	for i := range a.AppliedMonitors {
		if a.AppliedMonitors[i].MonitorID == monitorID {
			return true
		}
	}

	return false
}

// EditDetails replaces the config's settings after validating the channel
// variant and its settings shape.
func (a *AlertConfig) EditDetails(name string, active, onLate, onError bool, channelType string, channelSettings []byte) error {
	if err := ValidateChannelSettings(channelType, channelSettings); err != nil {
		return err
	}

	a.Name = name
	a.Active = active
	a.OnLate = onLate
	a.OnError = onError
	a.ChannelType = channelType
	a.ChannelSettings = datatypes.JSON(channelSettings)

	return nil
}

// ChatSettings parses the channel settings as the chat variant.
func (a *AlertConfig) ChatSettings() (*types.ChatConfig, error) {
	if a.ChannelType != types.ChannelChat {
		return nil, &InvalidAlertConfigError{Reason: fmt.Sprintf("unknown channel type %q", a.ChannelType)}
	}

	cfg, err := types.ParseChatConfig(a.ChannelSettings)

	if err != nil {
		return nil, &InvalidAlertConfigError{Reason: "malformed chat settings: " + err.Error()}
	}

	return cfg, nil
}

// ValidateChannelSettings checks a channel tag and its settings payload.
func ValidateChannelSettings(channelType string, raw []byte) error {
	switch channelType {
	case types.ChannelChat:
		cfg, err := types.ParseChatConfig(raw)

		if err != nil {
			return &InvalidAlertConfigError{Reason: "malformed chat settings: " + err.Error()}
		}

		if cfg.WebhookURL == "" {
			return &InvalidAlertConfigError{Reason: "chat settings require a webhook_url"}
		}

		return nil
	default:
		return &InvalidAlertConfigError{Reason: fmt.Sprintf("unknown channel type %q", channelType)}
	}
}
