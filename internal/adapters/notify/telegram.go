package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/alejandrodnm/weatherbot/internal/domain"
	"github.com/alejandrodnm/weatherbot/internal/ports"
)

// Telegram implementa ports.Notifier vía el Bot API. Con token o chat ID
// vacíos el notificador queda deshabilitado y todas las llamadas son no-ops.
type Telegram struct {
	http    *http.Client
	token   string
	chatID  string
	enabled bool
}

func NewTelegram(token, chatID string) *Telegram {
	return &Telegram{
		http:    &http.Client{Timeout: 10 * time.Second},
		token:   token,
		chatID:  chatID,
		enabled: token != "" && chatID != "",
	}
}

// Enabled indica si el notificador tiene credenciales.
func (t *Telegram) Enabled() bool {
	return t.enabled
}

// NotifyTrade envía el detalle de una posición abierta.
func (t *Telegram) NotifyTrade(ctx context.Context, p domain.Position) error {
	suffix := ""
	if p.Simulated {
		suffix = "\n(DRY RUN)"
	}
	msg := fmt.Sprintf(
		"Weather Trade\n\n%s\nBucket: %s\nCity: %s\n\nOur P: %.1f%% | Entry: %.1f%%\nEdge: %.1f%%\n\nBUY %.2f YES @ $%.4f = $%.2f%s",
		p.Question, p.BucketLabel, p.City,
		p.Probability*100, p.Price*100, p.Edge*100,
		p.Shares, p.Price, p.Cost, suffix)
	return t.send(ctx, msg)
}

// NotifyCycle envía el resumen solo cuando hubo actividad: órdenes nuevas
// o resoluciones. Los ciclos vacíos no generan mensajes.
func (t *Telegram) NotifyCycle(ctx context.Context, s ports.CycleSummary) error {
	if s.Placed == 0 && len(s.Resolutions) == 0 {
		return nil
	}
	msg := fmt.Sprintf(
		"Weather Cycle\n\nMarkets: %d | Buckets: %d\nPlaced: %d | Resolved: %d\nExposure: $%.2f",
		s.Markets, s.Buckets, s.Placed, len(s.Resolutions), s.Exposure)
	for _, p := range s.Resolutions {
		msg += fmt.Sprintf("\n%s %s (%s)", p.City, p.BucketLabel, p.Outcome)
	}
	return t.send(ctx, msg)
}

// Alert envía una condición severa.
func (t *Telegram) Alert(ctx context.Context, msg string) error {
	return t.send(ctx, "ALERT\n\n"+msg)
}

func (t *Telegram) send(ctx context.Context, text string) error {
	if !t.enabled {
		return nil
	}

	body, err := json.Marshal(map[string]string{
		"chat_id": t.chatID,
		"text":    text,
	})
	if err != nil {
		return fmt.Errorf("telegram: marshal: %w", err)
	}

	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", t.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("telegram: request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.http.Do(req)
	if err != nil {
		return fmt.Errorf("telegram: send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram: status %d", resp.StatusCode)
	}
	return nil
}
