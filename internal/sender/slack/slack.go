// Package slack delivers chat batches to Slack Incoming Webhooks.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/nebel/CurrencyWatchdog/internal/payload"
	"github.com/nebel/CurrencyWatchdog/internal/sender/retry"
	"github.com/nebel/CurrencyWatchdog/internal/sender/validation"
)

// Sender posts batches to a Slack webhook URL.
type Sender struct {
	httpClient *http.Client
}

// NewSender creates a new Slack sender.
func NewSender() *Sender {
	return &Sender{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Type returns the endpoint type this sender handles.
func (s *Sender) Type() string {
	return "slack"
}

// Send posts the batch to the webhook URL in endpointValue.
func (s *Sender) Send(ctx context.Context, endpointValue string, batch *payload.ChatBatch) error {
	if endpointValue == "" {
		return fmt.Errorf("slack webhook URL is required")
	}
	if !validation.IsValidURL(endpointValue) {
		return fmt.Errorf("invalid Slack webhook URL: %q (must be a valid HTTP/HTTPS URL, not a channel name)", endpointValue)
	}

	jsonData, err := json.Marshal(payload.BuildSlackPayload(*batch))
	if err != nil {
		return fmt.Errorf("failed to marshal Slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpointValue, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		slog.Error("Failed to send Slack message",
			"error", err,
			"webhook_url", validation.MaskURL(endpointValue),
			"batch_id", batch.ID,
		)
		return fmt.Errorf("failed to send Slack message to %s: %w", validation.MaskURL(endpointValue), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		slog.Error("Slack webhook returned error status",
			"status_code", resp.StatusCode,
			"batch_id", batch.ID,
		)
		return &retry.StatusError{Service: "slack webhook", Code: resp.StatusCode}
	}

	slog.Info("Sent Slack message",
		"batch_id", batch.ID,
		"lines", len(batch.Lines),
	)
	return nil
}
