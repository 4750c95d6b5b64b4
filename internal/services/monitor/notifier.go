package monitor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/hyuoka/workpal/internal/common"
	"github.com/hyuoka/workpal/internal/interfaces"
)

// WebhookNotifier posts alert notifications as JSON to a configured
// endpoint. Delivery is best-effort.
type WebhookNotifier struct {
	url        string
	httpClient *http.Client
	logger     *common.Logger
}

// NewWebhookNotifier creates a webhook notifier, or nil when no URL is
// configured. A nil Notifier is valid and means notifications are
// silently skipped.
func NewWebhookNotifier(url string, logger *common.Logger) *WebhookNotifier {
	if url == "" {
		return nil
	}
	return &WebhookNotifier{
		url:        url,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

// Notify posts {title, message, sent_at} to the webhook.
func (n *WebhookNotifier) Notify(ctx context.Context, title, message string) error {
	payload, err := json.Marshal(map[string]string{
		"title":   title,
		"message": message,
		"sent_at": time.Now().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notification webhook returned status %d", resp.StatusCode)
	}
	return nil
}

var _ interfaces.Notifier = (*WebhookNotifier)(nil)
