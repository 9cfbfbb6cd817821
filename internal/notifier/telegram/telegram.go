// Package telegram sends sweep summaries through the Telegram Bot API
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/newthinker/bankroll/internal/notifier"
)

const defaultAPIBase = "https://api.telegram.org"

// Telegram implements the Notifier interface for Telegram Bot API
type Telegram struct {
	botToken string
	chatID   string
	apiBase  string
	client   *http.Client
}

// New creates a new Telegram notifier
func New(botToken, chatID string) (*Telegram, error) {
	if botToken == "" {
		return nil, fmt.Errorf("telegram: bot_token is required")
	}
	if chatID == "" {
		return nil, fmt.Errorf("telegram: chat_id is required")
	}
	return &Telegram{
		botToken: botToken,
		chatID:   chatID,
		apiBase:  defaultAPIBase,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

func (t *Telegram) Name() string {
	return "telegram"
}

func (t *Telegram) Notify(ctx context.Context, ev notifier.Event) error {
	return t.sendMessage(ctx, formatEvent(ev))
}

func formatEvent(ev notifier.Event) string {
	var sb strings.Builder

	if ev.Status == notifier.StatusFailed {
		sb.WriteString(fmt.Sprintf("❌ *Sweep failed* `%s`\n", ev.SweepID))
		if ev.Error != "" {
			sb.WriteString(fmt.Sprintf("Error: %s\n", ev.Error))
		}
	} else {
		sb.WriteString(fmt.Sprintf("📊 *Sweep complete* `%s`\n", ev.SweepID))
		sb.WriteString(fmt.Sprintf("Iterations: %d (%d failed)\n", ev.Points, ev.Failed))
		if ev.Best != nil {
			sb.WriteString(fmt.Sprintf("💰 Best ending equity: %.2f at cap/trade %.4g\n",
				ev.Best.EndingEquity, ev.Best.CapitalPerTrade))
			sb.WriteString(fmt.Sprintf("📉 Worst drawdown: %.2f%%\n", ev.Best.WorstDrawdown*100))
		}
	}

	sb.WriteString(fmt.Sprintf("⏰ Time: %s", ev.FinishedAt.Format("2006-01-02 15:04:05")))
	return sb.String()
}

func (t *Telegram) sendMessage(ctx context.Context, text string) error {
	url := fmt.Sprintf("%s/bot%s/sendMessage", t.apiBase, t.botToken)

	payload := map[string]any{
		"chat_id":    t.chatID,
		"text":       text,
		"parse_mode": "Markdown",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("telegram: failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("telegram: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram: failed to send message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var result map[string]any
		json.NewDecoder(resp.Body).Decode(&result)
		return fmt.Errorf("telegram: API error (status %d): %v", resp.StatusCode, result)
	}

	return nil
}
