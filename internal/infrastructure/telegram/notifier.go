package telegram

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"CrisisMonitor/internal/config"
	"CrisisMonitor/internal/domain"
	"CrisisMonitor/internal/ports"
)

// Notifier broadcasts alerts to a Telegram channel via the bot API.
type Notifier struct {
	api     *tgbotapi.BotAPI
	channel string
	title   string
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier authenticates the bot and binds the broadcast channel, which
// may be a public "@username" or a numeric chat id.
func NewNotifier(cfg config.NotificationConfig, client *http.Client) (*Notifier, error) {
	if cfg.Telegram.BotToken == "" || cfg.Telegram.Channel == "" {
		return nil, fmt.Errorf("telegram notifier misconfigured")
	}
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	endpoint := cfg.Telegram.Endpoint
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}

	api, err := tgbotapi.NewBotAPIWithClient(cfg.Telegram.BotToken, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}

	return &Notifier{api: api, channel: cfg.Telegram.Channel, title: cfg.AlertTitle}, nil
}

// NotifyAlert posts the alert headline with its location and record id.
func (n *Notifier) NotifyAlert(ctx context.Context, alert domain.Alert) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := n.message(FormatAlert(n.title, alert))
	msg.DisableWebPagePreview = true

	if _, err := n.api.Send(msg); err != nil {
		return fmt.Errorf("send alert %s: %w", alert.RecordID, err)
	}
	return nil
}

func (n *Notifier) message(text string) tgbotapi.MessageConfig {
	if id, err := strconv.ParseInt(n.channel, 10, 64); err == nil {
		return tgbotapi.NewMessage(id, text)
	}
	return tgbotapi.NewMessageToChannel(n.channel, text)
}

// FormatAlert renders the plain-text alert body.
func FormatAlert(title string, alert domain.Alert) string {
	var b strings.Builder
	if title != "" {
		b.WriteString(title)
		b.WriteString("\n")
	}
	if alert.Location != "" {
		b.WriteString(alert.Location)
		b.WriteString(": ")
	}
	b.WriteString(alert.Headline)
	fmt.Fprintf(&b, "\nID: %s", alert.RecordID)
	return b.String()
}
