package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"isccd/internal/config"
)

const userAgent = "isccd/0.1.0"

// Event names the pipeline moment being reported.
type Event string

const (
	EventFingerprinted  Event = "iscc_generated"
	EventAssetSkipped   Event = "asset_skipped"
	EventServiceStarted Event = "service_started"
	EventServiceStopped Event = "service_stopped"
)

// Payload carries event-specific fields merged into the webhook body.
type Payload map[string]any

// Notifier is the best-effort side channel. Implementations must never let
// a delivery failure escape as anything the pipeline would act on; callers
// log the returned error and move on.
type Notifier interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// NewService builds a notifier backed by the configured webhook. When no
// webhook URL is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Notifier {
	endpoint := strings.TrimSpace(cfg.Notifications.WebhookURL)
	if endpoint == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &webhookService{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

type webhookService struct {
	endpoint string
	client   *http.Client
}

func (w *webhookService) Publish(ctx context.Context, event Event, payload Payload) error {
	body := map[string]any{
		"event":     string(event),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	for key, value := range payload {
		body[key] = value
	}

	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.endpoint, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("send webhook: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }
