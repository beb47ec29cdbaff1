// Package sender implements the chat sink. Each pass's chat alerts are rendered
// into one batch and fanned out to the configured endpoints through the
// strategy registry.
package sender

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/nebel/CurrencyWatchdog/internal/alert"
	"github.com/nebel/CurrencyWatchdog/internal/database"
	"github.com/nebel/CurrencyWatchdog/internal/payload"
	"github.com/nebel/CurrencyWatchdog/internal/sender/retry"
	"github.com/nebel/CurrencyWatchdog/internal/sender/strategy"
	"github.com/nebel/CurrencyWatchdog/internal/settings"
)

// Endpoint is one delivery target.
type Endpoint struct {
	Type  string
	Value string
}

func (e Endpoint) String() string {
	return e.Type + "=" + e.Value
}

// ParseEndpoints parses "type=value;type=value". Blank entries are skipped and
// duplicates collapse into one.
func ParseEndpoints(s string) ([]Endpoint, error) {
	seen := make(map[Endpoint]bool)
	var endpoints []Endpoint

	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		typ, value, ok := strings.Cut(part, "=")
		typ, value = strings.TrimSpace(typ), strings.TrimSpace(value)
		if !ok || typ == "" {
			return nil, fmt.Errorf("invalid endpoint %q (want type=value)", part)
		}

		ep := Endpoint{Type: strings.ToLower(typ), Value: value}
		if !seen[ep] {
			seen[ep] = true
			endpoints = append(endpoints, ep)
		}
	}
	return endpoints, nil
}

// HistoryRecorder stores delivered alerts.
type HistoryRecorder interface {
	InsertAlertHistory(ctx context.Context, entry *database.HistoryEntry) (*int64, error)
}

// Sender delivers chat batches. It is safe for concurrent use as long as the
// registered strategies are.
type Sender struct {
	registry  *strategy.Registry
	endpoints []Endpoint
	history   HistoryRecorder
	retryCfg  retry.Config
}

// NewSender creates a sender for the given endpoints.
func NewSender(registry *strategy.Registry, endpoints []Endpoint) *Sender {
	return &Sender{
		registry:  registry,
		endpoints: endpoints,
		retryCfg:  retry.DefaultConfig(),
	}
}

// WithHistory makes the sender record every delivered alert.
func (s *Sender) WithHistory(h HistoryRecorder) *Sender {
	s.history = h
	return s
}

// WithRetryConfig overrides the retry policy.
func (s *Sender) WithRetryConfig(cfg retry.Config) *Sender {
	s.retryCfg = cfg
	return s
}

// Endpoints returns the configured endpoints.
func (s *Sender) Endpoints() []Endpoint {
	return s.endpoints
}

// Job is a rendered batch waiting for delivery. RuleIDs[i] is the rule that
// produced Lines[i].
type Job struct {
	Batch   payload.ChatBatch
	RuleIDs []uuid.UUID
}

// Render builds the delivery job for alerts. It reads st and alerts only
// while it runs.
func Render(st *settings.Settings, alerts []alert.Alert) Job {
	ruleIDs := make([]uuid.UUID, len(alerts))
	for i, a := range alerts {
		ruleIDs[i] = a.ID.RuleID
	}
	return Job{Batch: payload.BuildChatBatch(st, alerts), RuleIDs: ruleIDs}
}

// Send renders alerts into one batch and delivers it to every endpoint. It
// fails only when no endpoint accepted the batch.
func (s *Sender) Send(ctx context.Context, st *settings.Settings, alerts []alert.Alert) error {
	if len(alerts) == 0 {
		return nil
	}
	return s.Deliver(ctx, Render(st, alerts))
}

// Deliver fans a rendered batch out to every endpoint, retrying transient
// failures, and records it in history when at least one endpoint accepted it.
func (s *Sender) Deliver(ctx context.Context, job Job) error {
	batch := job.Batch
	if len(s.endpoints) == 0 {
		slog.Warn("No chat endpoints configured, dropping alerts", "alerts", len(batch.Lines))
		return fmt.Errorf("no chat endpoints configured")
	}

	var errs []string
	delivered := make(map[string]bool)
	for _, ep := range s.endpoints {
		sender, ok := s.registry.Get(ep.Type)
		if !ok {
			slog.Warn("Unknown endpoint type, skipping",
				"type", ep.Type,
				"batch_id", batch.ID,
			)
			errs = append(errs, fmt.Sprintf("%s: unknown endpoint type", ep.Type))
			continue
		}

		operation := fmt.Sprintf("send_%s_%s", ep.Type, batch.ID)
		err := retry.WithRetry(ctx, s.retryCfg, operation, func() error {
			return sender.Send(ctx, ep.Value, &batch)
		})
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %s", ep.Type, err.Error()))
			continue
		}
		delivered[ep.Type] = true
	}

	if len(delivered) == 0 {
		return fmt.Errorf("all sends failed: %s", strings.Join(errs, "; "))
	}
	if len(errs) > 0 {
		slog.Warn("Some sends failed",
			"batch_id", batch.ID,
			"successful", len(s.endpoints)-len(errs),
			"failed", len(errs),
			"errors", strings.Join(errs, "; "),
		)
	}

	s.record(ctx, job, channels(delivered))
	return nil
}

// record stores the batch in alert history. Failures are logged only.
func (s *Sender) record(ctx context.Context, job Job, delivered []string) {
	if s.history == nil {
		return
	}

	batch := job.Batch
	batchID, err := uuid.Parse(batch.ID)
	if err != nil {
		slog.Error("Invalid batch id, skipping history", "batch_id", batch.ID, "error", err)
		return
	}

	for i, line := range batch.Lines {
		entry := &database.HistoryEntry{
			BatchID:      batchID,
			AlertID:      line.AlertID,
			SubjectIndex: line.SubjectIndex,
			SubjectName:  line.Name,
			Held:         line.Held,
			Cap:          line.Cap,
			Message:      line.Text(),
			Channels:     delivered,
			SentAt:       batch.CreatedAt,
		}
		if i < len(job.RuleIDs) {
			entry.RuleID = job.RuleIDs[i]
		}
		if _, err := s.history.InsertAlertHistory(ctx, entry); err != nil {
			slog.Error("Failed to record alert history",
				"batch_id", batch.ID,
				"alert_id", line.AlertID,
				"error", err,
			)
		}
	}
}

func channels(delivered map[string]bool) []string {
	out := make([]string, 0, len(delivered))
	for typ := range delivered {
		out = append(out, typ)
	}
	sort.Strings(out)
	return out
}

// LogSender writes each line to the service log. It stands in for the in-game
// chat window when no external channel is wanted.
type LogSender struct{}

// Type returns the endpoint type this sender handles.
func (LogSender) Type() string {
	return "log"
}

// Send logs every line of the batch at the level named by endpointValue
// (info when empty).
func (LogSender) Send(ctx context.Context, endpointValue string, batch *payload.ChatBatch) error {
	level := slog.LevelInfo
	if endpointValue != "" {
		if err := level.UnmarshalText([]byte(endpointValue)); err != nil {
			return fmt.Errorf("invalid log level %q: %w", endpointValue, err)
		}
	}

	for _, line := range batch.Lines {
		slog.Log(ctx, level, line.Text(),
			"batch_id", batch.ID,
			"alert_id", line.AlertID,
			"held", line.Held,
			"cap", line.Cap,
		)
	}
	if batch.PlaySound {
		slog.Log(ctx, level, "Chat sound cue", "batch_id", batch.ID, "sound_effect_id", batch.SoundEffectID)
	}
	return nil
}
