package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/vigil-dev/vigil/internal/models"
	"github.com/vigil-dev/vigil/internal/types"
)

const (
	chatUsername = "Vigil Watchdog"

	colorDanger  = "danger"
	colorWarning = "warning"
	colorGood    = "good"
)

type chatField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

type chatAttachment struct {
	Color     string      `json:"color"`
	Title     string      `json:"title"`
	Text      string      `json:"text"`
	Fields    []chatField `json:"fields"`
	Footer    string      `json:"footer"`
	Timestamp int64       `json:"ts"`
}

type chatMessage struct {
	Username    string           `json:"username"`
	Channel     string           `json:"channel,omitempty"`
	IconEmoji   string           `json:"icon_emoji,omitempty"`
	Text        string           `json:"text"`
	Attachments []chatAttachment `json:"attachments"`
}

// ChatNotifier posts Slack-compatible webhook messages.
type ChatNotifier struct {
	client   *http.Client
	settings *types.ChatConfig
}

func NewChatNotifier(client *http.Client, settings *types.ChatConfig) *ChatNotifier {
	return &ChatNotifier{client: client, settings: settings}
}

func (n *ChatNotifier) NotifyLateJob(ctx context.Context, monitorID uint, monitorName string, job *models.Job) error {
	status := "still running"
	if !job.InProgress() {
		status = "finished late"
	}

	message := chatMessage{
		Username:  chatUsername,
		Channel:   n.settings.Channel,
		IconEmoji: ":hourglass_flowing_sand:",
		Text:      ":hourglass_flowing_sand: *JOB RUNNING LATE*",
		Attachments: []chatAttachment{
			{
				Color: colorWarning,
				Title: fmt.Sprintf("Job for '%s' missed its deadline", monitorName),
				Text:  fmt.Sprintf("The job did not finish before its deadline and is %s.", status),
				Fields: []chatField{
					{Title: "Monitor", Value: monitorName, Short: true},
					{Title: "Monitor ID", Value: fmt.Sprint(monitorID), Short: true},
					{Title: "Started At", Value: job.StartedAt.Format("2006-01-02 15:04:05 UTC"), Short: true},
					{Title: "Deadline", Value: job.MaxEndTime.Format("2006-01-02 15:04:05 UTC"), Short: true},
					{Title: "Job ID", Value: job.ID, Short: false},
				},
				Footer:    "Vigil Monitoring",
				Timestamp: time.Now().Unix(),
			},
		},
	}

	return n.send(ctx, message)
}

func (n *ChatNotifier) NotifyErroredJob(ctx context.Context, monitorID uint, monitorName string, job *models.Job) error {
	finishedAt := "Unknown"
	if job.EndTime != nil {
		finishedAt = job.EndTime.Format("2006-01-02 15:04:05 UTC")
	}

	durationStr := "Unknown"
	if d, ok := job.Duration(); ok {
		durationStr = d.Round(time.Second).String()
	}

	fields := []chatField{
		{Title: "Monitor", Value: monitorName, Short: true},
		{Title: "Monitor ID", Value: fmt.Sprint(monitorID), Short: true},
		{Title: "Finished At", Value: finishedAt, Short: true},
		{Title: "Duration", Value: durationStr, Short: true},
		{Title: "Job ID", Value: job.ID, Short: false},
	}

	if job.Output != "" {
		fields = append(fields, chatField{Title: "Output", Value: job.Output, Short: false})
	}

	message := chatMessage{
		Username:  chatUsername,
		Channel:   n.settings.Channel,
		IconEmoji: ":rotating_light:",
		Text:      ":rotating_light: *JOB FAILED*",
		Attachments: []chatAttachment{
			{
				Color:     colorDanger,
				Title:     fmt.Sprintf("Job for '%s' finished with an error", monitorName),
				Text:      "The job reported an unsuccessful finish and requires attention.",
				Fields:    fields,
				Footer:    "Vigil Monitoring",
				Timestamp: time.Now().Unix(),
			},
		},
	}

	return n.send(ctx, message)
}

func (n *ChatNotifier) TestNotification(ctx context.Context, config *models.AlertConfig, userName string) error {
	message := chatMessage{
		Username:  chatUsername,
		Channel:   n.settings.Channel,
		IconEmoji: ":white_check_mark:",
		Text:      ":white_check_mark: *TEST NOTIFICATION*",
		Attachments: []chatAttachment{
			{
				Color: colorGood,
				Title: fmt.Sprintf("Alert config '%s' is wired up", config.Name),
				Text:  fmt.Sprintf("%s requested a test message. If you can read this, the channel works.", userName),
				Fields: []chatField{
					{Title: "Alert Config", Value: config.Name, Short: true},
					{Title: "On Late", Value: fmt.Sprint(config.OnLate), Short: true},
					{Title: "On Error", Value: fmt.Sprint(config.OnError), Short: true},
				},
				Footer:    "Vigil Monitoring",
				Timestamp: time.Now().Unix(),
			},
		},
	}

	return n.send(ctx, message)
}

func (n *ChatNotifier) send(ctx context.Context, message chatMessage) error {
	body, err := json.Marshal(message)
	if err != nil {
		return &models.NotifyError{Channel: types.ChannelChat, Err: fmt.Errorf("marshal payload: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.settings.WebhookURL, bytes.NewBuffer(body))
	if err != nil {
		return &models.NotifyError{Channel: types.ChannelChat, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return &models.NotifyError{Channel: types.ChannelChat, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return &models.NotifyError{Channel: types.ChannelChat, Err: fmt.Errorf("webhook returned status %d", resp.StatusCode)}
	}

	return nil
}
