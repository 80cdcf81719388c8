package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hostwatch/hostwatch/pkg/models"
)

// Discord embed sidebar colors per alert level.
const (
	colorInfo      = 3447003  // blue
	colorWarning   = 16753920 // orange
	colorCritical  = 15158332 // red
	colorEmergency = 10038562 // dark red
)

// DiscordConfig holds Discord webhook configuration.
type DiscordConfig struct {
	WebhookURL string
	Username   string
}

func (c *DiscordConfig) Validate() error {
	if c.WebhookURL == "" {
		return fmt.Errorf("webhook URL is required")
	}
	if !strings.HasPrefix(c.WebhookURL, "https://") {
		return fmt.Errorf("webhook URL must use HTTPS")
	}
	return nil
}

// DiscordNotifier posts incidents to a Discord webhook as rich embeds.
type DiscordNotifier struct {
	config     DiscordConfig
	httpClient *http.Client
}

func NewDiscordNotifier(cfg DiscordConfig) (*DiscordNotifier, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid discord config: %w", err)
	}
	if cfg.Username == "" {
		cfg.Username = "hostwatch"
	}
	return &DiscordNotifier{
		config: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

func (n *DiscordNotifier) Name() string {
	return "discord"
}

func (n *DiscordNotifier) Send(ctx context.Context, incident models.Incident) error {
	payload := n.buildPayload(incident)

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.config.WebhookURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("discord API error: status %d, body: %s", resp.StatusCode, string(body))
	}
	return nil
}

func (n *DiscordNotifier) Close() error {
	return nil
}

type discordMessage struct {
	Username string         `json:"username,omitempty"`
	Embeds   []discordEmbed `json:"embeds"`
}

type discordEmbed struct {
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Color       int            `json:"color"`
	Fields      []discordField `json:"fields,omitempty"`
	Timestamp   string         `json:"timestamp,omitempty"`
}

type discordField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

func (n *DiscordNotifier) buildPayload(incident models.Incident) discordMessage {
	embed := discordEmbed{
		Title:       fmt.Sprintf("%s %s", levelEmoji(incident.Level), incident.Title),
		Description: incident.Message,
		Color:       levelColor(incident.Level),
		Timestamp:   incident.StartedAt.Format(time.RFC3339),
		Fields: []discordField{
			{Name: "Level", Value: strings.ToUpper(string(incident.Level)), Inline: true},
			{Name: "Category", Value: string(incident.Category), Inline: true},
			{Name: "Status", Value: string(incident.Status), Inline: true},
			{Name: "Value", Value: fmt.Sprintf("%.2f", incident.MetricValue), Inline: true},
			{Name: "Threshold", Value: fmt.Sprintf("%.2f", incident.Threshold), Inline: true},
		},
	}
	return discordMessage{
		Username: n.config.Username,
		Embeds:   []discordEmbed{embed},
	}
}

func levelColor(level models.AlertLevel) int {
	switch level {
	case models.LevelCritical:
		return colorCritical
	case models.LevelEmergency:
		return colorEmergency
	case models.LevelWarning:
		return colorWarning
	default:
		return colorInfo
	}
}

func levelEmoji(level models.AlertLevel) string {
	switch level {
	case models.LevelCritical:
		return "🔴"
	case models.LevelEmergency:
		return "🚨"
	case models.LevelWarning:
		return "🟠"
	default:
		return "🔵"
	}
}
