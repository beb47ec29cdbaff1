// Package events defines the host event structures read from the host.events
// topic.
package events

import (
	"fmt"

	"github.com/nebel/CurrencyWatchdog/internal/subject"
)

// Host event types.
const (
	TypeLogin               = "login"
	TypeLogout              = "logout"
	TypePlayerLoaded        = "player_loaded"
	TypeTerritoryChanged    = "territory_changed"
	TypeConditionChanged    = "condition_changed"
	TypeInventoryChanged    = "inventory_changed"
	TypeCurrencyChanged     = "currency_changed"
	TypeTomestonesChanged   = "tomestones_changed"
	TypeGrandCompanyChanged = "grand_company_changed"
	TypeAllowanceChanged    = "allowance_changed"
	TypeResendAlerts        = "resend_alerts"
	TypeCommand             = "command"
)

// FlagBetweenAreas is the condition flag raised while the player is zoning.
const FlagBetweenAreas = "between_areas"

// HostEvent is one event reported by the game host. Only the fields relevant
// to Type are set.
type HostEvent struct {
	Type string `json:"type"`
	TS   int64  `json:"ts"`

	TerritoryID uint32 `json:"territory_id,omitempty"`

	Flag  string `json:"flag,omitempty"`
	Value bool   `json:"value,omitempty"`

	Items []ItemCount `json:"items,omitempty"`

	ItemID uint32 `json:"item_id,omitempty"`
	Count  uint32 `json:"count,omitempty"`
	Max    uint32 `json:"max,omitempty"`

	WeeklyAcquired uint32 `json:"weekly_acquired,omitempty"`

	GrandCompany uint8  `json:"grand_company,omitempty"`
	MaxSeals     uint32 `json:"max_seals,omitempty"`

	Allowance uint32 `json:"allowance,omitempty"`

	Text string `json:"text,omitempty"`
}

// ItemCount is the held count of one item at one quality.
type ItemCount struct {
	ItemID  uint32          `json:"item_id"`
	Quality subject.Quality `json:"quality"`
	Count   uint32          `json:"count"`
}

// Validate checks the fields required by the event type.
func (e *HostEvent) Validate() error {
	switch e.Type {
	case TypeLogin, TypeLogout, TypePlayerLoaded, TypeResendAlerts,
		TypeTomestonesChanged, TypeAllowanceChanged, TypeGrandCompanyChanged, TypeCommand:
		return nil
	case TypeTerritoryChanged:
		if e.TerritoryID == 0 {
			return fmt.Errorf("territory_changed event requires territory_id")
		}
	case TypeConditionChanged:
		if e.Flag == "" {
			return fmt.Errorf("condition_changed event requires flag")
		}
	case TypeInventoryChanged:
		for i, item := range e.Items {
			if item.ItemID == 0 {
				return fmt.Errorf("inventory_changed item %d has no item_id", i)
			}
		}
	case TypeCurrencyChanged:
		if e.ItemID == 0 {
			return fmt.Errorf("currency_changed event requires item_id")
		}
	case "":
		return fmt.Errorf("event type is required")
	default:
		return fmt.Errorf("unknown event type %q", e.Type)
	}
	return nil
}
