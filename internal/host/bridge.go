// Package host turns decoded host events into session state, inventory
// updates and the typed signals the engine subscribes to.
package host

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nebel/CurrencyWatchdog/internal/events"
	"github.com/nebel/CurrencyWatchdog/internal/inventory"
	"github.com/nebel/CurrencyWatchdog/internal/processor"
	"github.com/nebel/CurrencyWatchdog/internal/signal"
	"github.com/nebel/CurrencyWatchdog/internal/zone"
)

// Bridge implements zone.Host and processor.SessionState. State is updated
// before the matching signal is emitted, so subscribers always observe the
// post-event values. It is owned by the event loop goroutine.
type Bridge struct {
	inventory *inventory.Inventory

	loggedIn    bool
	loaded      bool
	zoning      bool
	territoryID uint32

	login      *signal.Signal[struct{}]
	logout     *signal.Signal[struct{}]
	territory  *signal.Signal[uint32]
	transition *signal.Signal[bool]

	inventoryChanged *signal.Signal[struct{}]
	currencyChanged  *signal.Signal[struct{}]
	allowanceChanged *signal.Signal[struct{}]
	resend           *signal.Signal[struct{}]
	command          *signal.Signal[string]
}

// NewBridge creates a bridge writing into inv.
func NewBridge(inv *inventory.Inventory) *Bridge {
	return &Bridge{
		inventory:        inv,
		login:            signal.New[struct{}](),
		logout:           signal.New[struct{}](),
		territory:        signal.New[uint32](),
		transition:       signal.New[bool](),
		inventoryChanged: signal.New[struct{}](),
		currencyChanged:  signal.New[struct{}](),
		allowanceChanged: signal.New[struct{}](),
		resend:           signal.New[struct{}](),
		command:          signal.New[string](),
	}
}

// Dispatch applies ev and emits the corresponding signal. Invalid events are
// rejected before any state changes.
func (b *Bridge) Dispatch(ctx context.Context, ev *events.HostEvent) error {
	if err := ev.Validate(); err != nil {
		return fmt.Errorf("invalid host event: %w", err)
	}

	switch ev.Type {
	case events.TypeLogin:
		b.loggedIn = true
		b.login.Emit(ctx, struct{}{})

	case events.TypeLogout:
		b.loggedIn = false
		b.loaded = false
		b.inventory.Reset()
		b.logout.Emit(ctx, struct{}{})

	case events.TypePlayerLoaded:
		b.loaded = true

	case events.TypeTerritoryChanged:
		b.territoryID = ev.TerritoryID
		b.territory.Emit(ctx, ev.TerritoryID)

	case events.TypeConditionChanged:
		if ev.Flag != events.FlagBetweenAreas {
			slog.Debug("Ignoring condition flag", "flag", ev.Flag, "value", ev.Value)
			return nil
		}
		if b.zoning == ev.Value {
			return nil
		}
		b.zoning = ev.Value
		b.transition.Emit(ctx, ev.Value)

	case events.TypeInventoryChanged:
		for _, item := range ev.Items {
			b.inventory.SetCount(item.ItemID, item.Quality, item.Count)
		}
		b.inventoryChanged.Emit(ctx, struct{}{})

	case events.TypeCurrencyChanged:
		b.inventory.SetCurrency(ev.ItemID, ev.Count, ev.Max)
		b.currencyChanged.Emit(ctx, struct{}{})

	case events.TypeTomestonesChanged:
		b.inventory.SetWeeklyAcquired(ev.WeeklyAcquired)
		b.currencyChanged.Emit(ctx, struct{}{})

	case events.TypeGrandCompanyChanged:
		b.inventory.SetGrandCompany(ev.GrandCompany, ev.MaxSeals)
		b.currencyChanged.Emit(ctx, struct{}{})

	case events.TypeAllowanceChanged:
		slog.Debug("Leve allowance changed", "previous", b.inventory.Allowance(), "allowance", ev.Allowance)
		b.inventory.SetAllowance(ev.Allowance)
		b.allowanceChanged.Emit(ctx, struct{}{})

	case events.TypeResendAlerts:
		b.resend.Emit(ctx, struct{}{})

	case events.TypeCommand:
		b.command.Emit(ctx, ev.Text)
	}
	return nil
}

// IsLoggedIn implements processor.SessionState.
func (b *Bridge) IsLoggedIn() bool { return b.loggedIn }

// IsFullyLoaded implements processor.SessionState.
func (b *Bridge) IsFullyLoaded() bool { return b.loaded }

// Zoning implements zone.Host.
func (b *Bridge) Zoning() bool { return b.zoning }

// TerritoryID implements zone.Host.
func (b *Bridge) TerritoryID() uint32 { return b.territoryID }

func (b *Bridge) LoginSignal() *signal.Signal[struct{}]   { return b.login }
func (b *Bridge) LogoutSignal() *signal.Signal[struct{}]  { return b.logout }
func (b *Bridge) TerritorySignal() *signal.Signal[uint32] { return b.territory }
func (b *Bridge) TransitionSignal() *signal.Signal[bool]  { return b.transition }

// ResendSignal fires on a host resend request.
func (b *Bridge) ResendSignal() *signal.Signal[struct{}] { return b.resend }

// CommandSignal carries the argument text of a host chat command.
func (b *Bridge) CommandSignal() *signal.Signal[string] { return b.command }

// Sources returns the resource signals for the updater, paired with the zone
// change signal of w.
func (b *Bridge) Sources(w *zone.Watcher) processor.Sources {
	return processor.Sources{
		Zone:      w.Changes(),
		Inventory: b.inventoryChanged,
		Currency:  b.currencyChanged,
		Allowance: b.allowanceChanged,
	}
}
