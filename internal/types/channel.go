package types

import "encoding/json"

// Supported alert channel variants. Adding a channel means adding a constant
// here, a config struct, and a branch in the notifier factory.
const (
	ChannelChat = "chat"
)

type ChatConfig struct {
	WebhookURL string `json:"webhook_url"` // Incoming-webhook credential
	Channel    string `json:"channel"`     // Destination, e.g. "#ops"
}

func ParseChatConfig(raw []byte) (*ChatConfig, error) {
	var cfg ChatConfig

	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
