package notifier

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/vigil-dev/vigil/internal/models"
	"github.com/vigil-dev/vigil/internal/types"
)

// Notifier delivers alert messages over one configured channel.
type Notifier interface {
	NotifyLateJob(ctx context.Context, monitorID uint, monitorName string, job *models.Job) error
	NotifyErroredJob(ctx context.Context, monitorID uint, monitorName string, job *models.Job) error
	TestNotification(ctx context.Context, config *models.AlertConfig, userName string) error
}

// Factory produces a channel-specific notifier for an alert config.
type Factory interface {
	GetNotifier(config *models.AlertConfig) (Notifier, error)
}

// ChannelFactory dispatches on the config's channel tag. Adding a channel
// means adding a case here, not a plugin mechanism.
type ChannelFactory struct {
	client *http.Client
}

func NewChannelFactory() *ChannelFactory {
	return &ChannelFactory{
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (f *ChannelFactory) GetNotifier(config *models.AlertConfig) (Notifier, error) {
	switch config.ChannelType {
	case types.ChannelChat:
		settings, err := config.ChatSettings()

		if err != nil {
			return nil, err
		}

		return NewChatNotifier(f.client, settings), nil
	default:
		return nil, &models.InvalidAlertConfigError{Reason: fmt.Sprintf("unknown channel type %q", config.ChannelType)}
	}
}
