// Package processor provides the alert update orchestration: it reacts to
// session and resource events, re-runs the matcher, and forwards alerts to the
// chat and overlay sinks according to the policy of the triggering reason.
package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nebel/CurrencyWatchdog/internal/alert"
	"github.com/nebel/CurrencyWatchdog/internal/expr"
	"github.com/nebel/CurrencyWatchdog/internal/matcher"
	"github.com/nebel/CurrencyWatchdog/internal/settings"
	"github.com/nebel/CurrencyWatchdog/internal/signal"
	"github.com/nebel/CurrencyWatchdog/internal/zone"
)

// ErrContractViolation is returned when a pass was aborted because an enum
// value reached code that does not handle it.
var ErrContractViolation = errors.New("contract violation")

// Evaluator produces the alert lists for a settings snapshot.
type Evaluator interface {
	Evaluate(s *settings.Settings) matcher.Result
}

// SessionState gates evaluation on the player being present.
type SessionState interface {
	IsLoggedIn() bool
	IsFullyLoaded() bool
}

// LoginStater reports the zone watcher state.
type LoginStater interface {
	LoginState() zone.LoginState
}

// ChatSink delivers chat alerts.
type ChatSink interface {
	Send(ctx context.Context, s *settings.Settings, alerts []alert.Alert) error
}

// OverlaySink draws the panel alerts.
type OverlaySink interface {
	Redraw(ctx context.Context, s *settings.Settings, alerts []alert.Alert) error
	Clear(ctx context.Context) error
}

// Sources are the event signals the updater listens to while enabled.
type Sources struct {
	Zone      *signal.Signal[zone.Change]
	Inventory *signal.Signal[struct{}]
	Currency  *signal.Signal[struct{}]
	Allowance *signal.Signal[struct{}]
}

// Updater holds the dedup and redraw state between passes. It is not safe for
// concurrent use; all calls come from the event loop goroutine.
type Updater struct {
	evaluator Evaluator
	session   SessionState
	login     LoginStater
	chat      ChatSink
	overlay   OverlaySink
	sources   Sources
	metrics   Metrics

	settings *settings.Settings
	enabled  bool
	subs     signal.Group

	panelAlerts []alert.Alert
	chatIDs     map[alert.ID]struct{}
}

// Config carries the collaborators of an Updater.
type Config struct {
	Evaluator Evaluator
	Session   SessionState
	Login     LoginStater
	Chat      ChatSink
	Overlay   OverlaySink
	Sources   Sources
	// Metrics is optional.
	Metrics Metrics
}

// NewUpdater creates a detached updater. Call HandleConfigChange with the
// initial settings to attach it to its sources.
func NewUpdater(cfg Config) *Updater {
	m := cfg.Metrics
	if m == nil {
		m = NoOpMetrics{}
	}
	return &Updater{
		evaluator:   cfg.Evaluator,
		session:     cfg.Session,
		login:       cfg.Login,
		chat:        cfg.Chat,
		overlay:     cfg.Overlay,
		sources:     cfg.Sources,
		metrics:     m,
		settings:    settings.Default(),
		panelAlerts: []alert.Alert{},
		chatIDs:     map[alert.ID]struct{}{},
	}
}

// Settings returns the snapshot currently in effect.
func (u *Updater) Settings() *settings.Settings {
	return u.settings
}

// Enabled reports whether the updater is attached to its sources.
func (u *Updater) Enabled() bool {
	return u.enabled
}

// HandleConfigChange installs a new settings snapshot. A disabled snapshot
// detaches the updater and clears everything it has shown.
func (u *Updater) HandleConfigChange(ctx context.Context, s *settings.Settings) error {
	if s == nil {
		return fmt.Errorf("nil settings snapshot")
	}
	u.settings = s
	u.setEnabled(s.Enabled)

	if !s.Enabled {
		slog.Info("Alerts disabled, clearing overlay")
		u.reset(ctx)
		return nil
	}

	return u.Check(ctx, ReasonConfigChange)
}

// ResendActiveAlerts sends every active chat alert again.
func (u *Updater) ResendActiveAlerts(ctx context.Context) error {
	return u.Check(ctx, ReasonResendAlerts)
}

// Close detaches the updater from all sources.
func (u *Updater) Close() {
	u.setEnabled(false)
}

// Check runs one evaluation pass for reason. Sink failures are logged and do
// not fail the pass; a contract violation aborts the pass and is returned.
func (u *Updater) Check(ctx context.Context, reason Reason) (err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		var ce *expr.ContractError
		rerr, isErr := r.(error)
		if !isErr || !errors.As(rerr, &ce) {
			panic(r)
		}
		u.metrics.RecordError()
		slog.Error("Evaluation pass aborted", "reason", reason, "error", ce)
		err = fmt.Errorf("%w: %v", ErrContractViolation, ce)
	}()

	start := time.Now()
	u.metrics.RecordReceived()
	u.metrics.IncrementCustom("reason_" + reason.String())

	if !u.session.IsLoggedIn() || !u.session.IsFullyLoaded() {
		slog.Debug("Resetting alerts, session not ready",
			"reason", reason,
			"logged_in", u.session.IsLoggedIn(),
			"fully_loaded", u.session.IsFullyLoaded(),
		)
		u.reset(ctx)
		return nil
	}

	policy := PolicyFor(reason, u.settings, u.login.LoginState())
	result := u.evaluator.Evaluate(u.settings)

	slog.Debug("Checked alerts",
		"reason", reason,
		"burdens", len(u.settings.Burdens),
		"panel_alerts", len(result.Panel),
		"chat_alerts", len(result.Chat),
		"redraw", policy.Redraw,
		"chat", policy.Chat,
	)

	u.updateChat(ctx, policy.Chat, result.Chat)
	u.updatePanel(ctx, policy.Redraw, result.Panel)

	u.metrics.RecordProcessed(time.Since(start))
	return nil
}

func (u *Updater) updateChat(ctx context.Context, policy ChatPolicy, alerts []alert.Alert) {
	fresh := make([]alert.Alert, 0, len(alerts))
	ids := make(map[alert.ID]struct{}, len(alerts))
	for _, a := range alerts {
		if _, seen := u.chatIDs[a.ID]; !seen {
			fresh = append(fresh, a)
		}
		ids[a.ID] = struct{}{}
	}
	u.chatIDs = ids

	var send []alert.Alert
	switch policy {
	case ChatSuppress:
		return
	case ChatSendAll:
		send = alerts
	case ChatSendNew:
		send = fresh
	default:
		panic(&expr.ContractError{Kind: "chat policy", Value: int(policy)})
	}

	if len(send) == 0 {
		return
	}

	if err := u.chat.Send(ctx, u.settings, send); err != nil {
		u.metrics.RecordError()
		slog.Error("Failed to send chat alerts", "count", len(send), "error", err)
		return
	}
	u.metrics.RecordPublished()
	u.metrics.AddCustom("chat_alerts_sent", uint64(len(send)))
}

func (u *Updater) updatePanel(ctx context.Context, policy RedrawPolicy, alerts []alert.Alert) {
	var redraw bool
	switch policy {
	case RedrawSkip:
		return
	case RedrawForce:
		redraw = true
	case RedrawIfChanged:
		redraw = !alert.SameDisplayedStates(u.panelAlerts, alerts)
	default:
		panic(&expr.ContractError{Kind: "redraw policy", Value: int(policy)})
	}

	if !redraw {
		return
	}

	// panelAlerts tracks the last frame actually drawn.
	if err := u.overlay.Redraw(ctx, u.settings, alerts); err != nil {
		u.metrics.RecordError()
		slog.Error("Failed to redraw overlay", "count", len(alerts), "error", err)
		return
	}
	u.panelAlerts = alerts
	u.metrics.RecordPublished()
	u.metrics.IncrementCustom("overlay_redraws")
}

// reset empties the stored state. The overlay is cleared only when it showed
// something.
func (u *Updater) reset(ctx context.Context) {
	u.chatIDs = map[alert.ID]struct{}{}

	if len(u.panelAlerts) == 0 {
		return
	}
	u.panelAlerts = []alert.Alert{}
	if err := u.overlay.Clear(ctx); err != nil {
		u.metrics.RecordError()
		slog.Error("Failed to clear overlay", "error", err)
	}
}

func (u *Updater) setEnabled(enabled bool) {
	if u.enabled == enabled {
		return
	}
	u.enabled = enabled

	if !enabled {
		u.subs.UnsubscribeAll()
		slog.Debug("Detached from event sources")
		return
	}

	if u.sources.Zone != nil {
		u.subs.Add(u.sources.Zone.Subscribe(u.onZoneChange))
	}
	u.attach(u.sources.Inventory, ReasonInventoryChange)
	u.attach(u.sources.Currency, ReasonCurrencyChange)
	u.attach(u.sources.Allowance, ReasonAllowanceChange)
	slog.Debug("Attached to event sources", "subscriptions", u.subs.Len())
}

func (u *Updater) attach(sig *signal.Signal[struct{}], reason Reason) {
	if sig == nil {
		return
	}
	u.subs.Add(sig.Subscribe(func(ctx context.Context, _ struct{}) {
		_ = u.Check(ctx, reason)
	}))
}

func (u *Updater) onZoneChange(ctx context.Context, c zone.Change) {
	var reason Reason
	switch c {
	case zone.ChangeLogin:
		reason = ReasonLogin
	case zone.ChangeLoginZoned:
		reason = ReasonLoginZoned
	case zone.ChangeTerritory:
		// Wait for the settled change.
		return
	case zone.ChangeTerritoryZoned:
		reason = ReasonTerritoryZoned
	default:
		u.metrics.RecordError()
		slog.Error("Unknown zone change", "change", c)
		return
	}
	_ = u.Check(ctx, reason)
}
