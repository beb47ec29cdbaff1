// Package zone tracks whether the player session is in a stable state where
// live resource values can be trusted. Login and territory changes fire before
// the client has settled; the watcher follows each one with a "zoned" change
// once the between-areas transition has ended.
package zone

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nebel/CurrencyWatchdog/internal/signal"
)

// LoginState is the session readiness state.
type LoginState int

const (
	// StateNone means logged out.
	StateNone LoginState = iota
	// StateZoning means a login transition is in flight.
	StateZoning
	// StateResolving is held while the login-settled change is emitted after a wait.
	StateResolving
	// StateComplete means the session is stable.
	StateComplete
)

func (s LoginState) String() string {
	switch s {
	case StateNone:
		return "none"
	case StateZoning:
		return "zoning"
	case StateResolving:
		return "resolving"
	case StateComplete:
		return "complete"
	default:
		return fmt.Sprintf("LoginState(%d)", int(s))
	}
}

// Change is emitted on the watcher's Changes signal.
type Change int

const (
	// ChangeLogin fires on the raw login signal.
	ChangeLogin Change = iota
	// ChangeLoginZoned fires once the login has settled.
	ChangeLoginZoned
	// ChangeTerritory fires on the raw territory change.
	ChangeTerritory
	// ChangeTerritoryZoned fires once the territory change has settled.
	ChangeTerritoryZoned
)

func (c Change) String() string {
	switch c {
	case ChangeLogin:
		return "login"
	case ChangeLoginZoned:
		return "login_zoned"
	case ChangeTerritory:
		return "territory_change"
	case ChangeTerritoryZoned:
		return "territory_change_zoned"
	default:
		return fmt.Sprintf("Change(%d)", int(c))
	}
}

// Host exposes the session signals the watcher listens to.
type Host interface {
	// Zoning reports whether a between-areas transition is in progress.
	Zoning() bool
	// TerritoryID is the last reported territory, for logging.
	TerritoryID() uint32
	LoginSignal() *signal.Signal[struct{}]
	LogoutSignal() *signal.Signal[struct{}]
	TerritorySignal() *signal.Signal[uint32]
	// TransitionSignal carries the new between-areas value.
	TransitionSignal() *signal.Signal[bool]
}

// Watcher is the login/zone state machine. It is driven from the event loop
// goroutine only.
type Watcher struct {
	host    Host
	changes *signal.Signal[Change]
	state   LoginState

	waitLogin     bool
	waitTerritory bool
	transition    *signal.Subscription

	subs signal.Group
}

// NewWatcher creates a watcher attached to the host signals.
func NewWatcher(host Host) *Watcher {
	w := &Watcher{
		host:    host,
		changes: signal.New[Change](),
	}

	w.subs.Add(host.LoginSignal().Subscribe(func(ctx context.Context, _ struct{}) { w.onLogin(ctx) }))
	w.subs.Add(host.LogoutSignal().Subscribe(func(ctx context.Context, _ struct{}) { w.onLogout(ctx) }))
	w.subs.Add(host.TerritorySignal().Subscribe(w.onTerritoryChanged))

	return w
}

// Changes returns the signal carrying login and territory changes.
func (w *Watcher) Changes() *signal.Signal[Change] {
	return w.changes
}

// LoginState returns the current readiness state.
func (w *Watcher) LoginState() LoginState {
	return w.state
}

// Waiting reports whether a settlement wait is armed.
func (w *Watcher) Waiting() bool {
	return w.transition != nil
}

// Close detaches from every host signal and abandons pending waits.
func (w *Watcher) Close() {
	w.subs.UnsubscribeAll()
	w.disarm()
	w.waitLogin = false
	w.waitTerritory = false
}

func (w *Watcher) onLogin(ctx context.Context) {
	w.emit(ctx, ChangeLogin)

	if w.host.Zoning() {
		w.state = StateZoning
		w.waitLogin = true
		w.arm()
		return
	}

	w.state = StateComplete
	w.emit(ctx, ChangeLoginZoned)
}

func (w *Watcher) onLogout(_ context.Context) {
	if w.waitLogin || w.waitTerritory {
		slog.Debug("Logout abandoned pending zone waits",
			"login_wait", w.waitLogin,
			"territory_wait", w.waitTerritory,
		)
	}
	w.state = StateNone
	w.waitLogin = false
	w.waitTerritory = false
	w.disarm()
}

func (w *Watcher) onTerritoryChanged(ctx context.Context, territoryID uint32) {
	slog.Debug("Territory changed", "territory_id", territoryID, "zoning", w.host.Zoning())
	w.emit(ctx, ChangeTerritory)

	if w.host.Zoning() {
		w.waitTerritory = true
		w.arm()
		return
	}

	w.emit(ctx, ChangeTerritoryZoned)
}

func (w *Watcher) onTransition(ctx context.Context, zoning bool) {
	if zoning {
		return
	}

	login, territory := w.waitLogin, w.waitTerritory
	w.waitLogin = false
	w.waitTerritory = false
	w.disarm()

	if login {
		w.state = StateResolving
		w.emit(ctx, ChangeLoginZoned)
		w.state = StateComplete
	}
	if territory {
		w.emit(ctx, ChangeTerritoryZoned)
	}
}

// arm subscribes to the transition signal unless already subscribed.
func (w *Watcher) arm() {
	if w.transition != nil {
		return
	}
	w.transition = w.host.TransitionSignal().Subscribe(w.onTransition)
}

func (w *Watcher) disarm() {
	w.transition.Unsubscribe()
	w.transition = nil
}

func (w *Watcher) emit(ctx context.Context, c Change) {
	slog.Debug("Zone change",
		"change", c,
		"login_state", w.state,
		"territory_id", w.host.TerritoryID(),
		"waiting", w.Waiting(),
	)
	w.changes.Emit(ctx, c)
}
