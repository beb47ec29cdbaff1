// Package webhook delivers chat batches to generic HTTP endpoints.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nebel/CurrencyWatchdog/internal/payload"
	"github.com/nebel/CurrencyWatchdog/internal/sender/retry"
	"github.com/nebel/CurrencyWatchdog/internal/sender/validation"
)

// Sender posts batches as JSON.
type Sender struct {
	httpClient *http.Client
}

// NewSender creates a new webhook sender.
func NewSender() *Sender {
	return &Sender{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Type returns the endpoint type this sender handles.
func (s *Sender) Type() string {
	return "webhook"
}

// Placeholder hosts used in sample configuration. Deliveries to them are
// skipped rather than failed.
var dummyWebhookHosts = []string{
	"example.com",
	"example.org",
	"example.net",
	"test.com",
	"localhost",
	"invalid",
}

func isDummyWebhookURL(endpointValue string) bool {
	parsed, err := url.Parse(endpointValue)
	if err != nil {
		return false
	}

	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return false
	}

	for _, dummy := range dummyWebhookHosts {
		if host == dummy || strings.HasSuffix(host, "."+dummy) {
			return true
		}
	}
	return false
}

// Send posts the batch to the URL in endpointValue.
func (s *Sender) Send(ctx context.Context, endpointValue string, batch *payload.ChatBatch) error {
	if endpointValue == "" {
		return fmt.Errorf("webhook URL is required")
	}
	if !validation.IsValidURL(endpointValue) {
		return fmt.Errorf("invalid webhook URL: %q (must be a valid HTTP/HTTPS URL)", endpointValue)
	}

	if isDummyWebhookURL(endpointValue) {
		slog.Info("Skipping dummy webhook endpoint",
			"webhook_url", endpointValue,
			"batch_id", batch.ID,
		)
		return nil
	}

	jsonData, err := json.Marshal(payload.BuildWebhookPayload(*batch))
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpointValue, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Batch-Id", batch.ID)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		slog.Error("Failed to send webhook",
			"error", err,
			"webhook_url", validation.MaskURL(endpointValue),
			"batch_id", batch.ID,
		)
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		slog.Error("Webhook returned error status",
			"status_code", resp.StatusCode,
			"webhook_url", validation.MaskURL(endpointValue),
			"batch_id", batch.ID,
		)
		return &retry.StatusError{Service: "webhook", Code: resp.StatusCode}
	}

	slog.Info("Sent webhook",
		"webhook_url", validation.MaskURL(endpointValue),
		"batch_id", batch.ID,
		"lines", len(batch.Lines),
	)
	return nil
}
