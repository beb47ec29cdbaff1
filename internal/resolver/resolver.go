// Package resolver maps subjects onto live details using the item catalog and
// the host-reported inventory.
package resolver

import (
	"github.com/nebel/CurrencyWatchdog/internal/database"
	"github.com/nebel/CurrencyWatchdog/internal/expr"
	"github.com/nebel/CurrencyWatchdog/internal/inventory"
	"github.com/nebel/CurrencyWatchdog/internal/subject"
)

// Scrip item ids. These only change with an expansion.
const (
	DiscontinuedCraftersScripID  uint32 = 25199
	DiscontinuedGatherersScripID uint32 = 25200
	PreviousCraftersScripID      uint32 = 33913
	PreviousGatherersScripID     uint32 = 33914
	CurrentCraftersScripID       uint32 = 41784
	CurrentGatherersScripID      uint32 = 41785
)

// Placeholder details for subjects the game has no live resource for.
const (
	UnreleasedTomestoneName   = "(Unreleased Tomestone)"
	UnreleasedTomestoneIconID = 65012
	UnreleasedTomestoneCap    = 2000

	GenericSealName   = "(Generic Grand Company Seal)"
	GenericSealIconID = 65004
	GenericSealCap    = 10000
)

var scripIDs = map[subject.Type]uint32{
	subject.TypeDiscontinuedCraftersScrip:  DiscontinuedCraftersScripID,
	subject.TypeDiscontinuedGatherersScrip: DiscontinuedGatherersScripID,
	subject.TypePreviousCraftersScrip:      PreviousCraftersScripID,
	subject.TypePreviousGatherersScrip:     PreviousGatherersScripID,
	subject.TypeCurrentCraftersScrip:       CurrentCraftersScripID,
	subject.TypeCurrentGatherersScrip:      CurrentGatherersScripID,
}

// Catalog provides static item data.
type Catalog interface {
	Item(itemID uint32) (database.Item, bool)
	Tomestones() database.Tomestones
}

// Inventory provides the live counts reported by the host.
type Inventory interface {
	Count(itemID uint32, q subject.Quality) uint32
	Currency(itemID uint32) (inventory.Currency, bool)
	WeeklyAcquired() uint32
	GrandCompany() (gc uint8, maxSeals uint32)
}

// Resolver implements matcher.Resolver. It never blocks: both collaborators
// answer from memory.
type Resolver struct {
	catalog   Catalog
	inventory Inventory
}

// New creates a resolver.
func New(catalog Catalog, inv Inventory) *Resolver {
	return &Resolver{catalog: catalog, inventory: inv}
}

// Resolve returns the live details of s. ok is false when the item is not in
// the catalog. An unknown subject type panics with *expr.ContractError.
func (r *Resolver) Resolve(s subject.Subject) (subject.Details, bool) {
	switch s.Type {
	case subject.TypeItem:
		return r.item(s, s.ID)
	case subject.TypeGrandCompanySeal:
		return r.seal(s), true
	case subject.TypeEvergreenTomestone, subject.TypeDiscontinuedTomestone,
		subject.TypeStandardTomestone, subject.TypeLimitedTomestone:
		return r.tomestone(s), true
	}

	if id, ok := scripIDs[s.Type]; ok {
		return r.item(s, id)
	}
	panic(&expr.ContractError{Kind: "subject type", Value: int(s.Type)})
}

func (r *Resolver) item(s subject.Subject, itemID uint32) (subject.Details, bool) {
	if itemID == 0 {
		return subject.Details{}, false
	}
	item, ok := r.catalog.Item(itemID)
	if !ok {
		return subject.Details{}, false
	}

	limit := item.StackSize
	if cur, ok := r.inventory.Currency(itemID); ok && cur.Max > 0 {
		limit = cur.Max
	}
	held := r.inventory.Count(itemID, s.Quality)

	d := subject.NewDetails(item.Name, item.IconID, limit, held, s.CapOverride).WithAlias(s.Alias)
	d.HQIcon = s.Quality == subject.QualityHigh && item.CanBeHQ

	if t := r.catalog.Tomestones(); t.Limited != 0 && itemID == t.Limited {
		d = d.WithLimited(t.WeeklyLimit, r.inventory.WeeklyAcquired())
	}
	return d, true
}

func (r *Resolver) tomestone(s subject.Subject) subject.Details {
	t := r.catalog.Tomestones()
	var itemID uint32
	switch s.Type {
	case subject.TypeEvergreenTomestone:
		itemID = t.Evergreen
	case subject.TypeDiscontinuedTomestone:
		itemID = t.Discontinued
	case subject.TypeStandardTomestone:
		itemID = t.Standard
	case subject.TypeLimitedTomestone:
		itemID = t.Limited
	}

	if d, ok := r.item(s, itemID); ok {
		return d
	}
	return placeholder(s, UnreleasedTomestoneName, UnreleasedTomestoneIconID, UnreleasedTomestoneCap)
}

func (r *Resolver) seal(s subject.Subject) subject.Details {
	gc, maxSeals := r.inventory.GrandCompany()
	if itemID := sealItemID(gc); itemID != 0 && maxSeals > 0 {
		if d, ok := r.item(s, itemID); ok {
			d.Cap = maxSeals
			if s.CapOverride == nil {
				d.EffectiveCap = maxSeals
			}
			return d
		}
	}
	return placeholder(s, GenericSealName, GenericSealIconID, GenericSealCap)
}

// sealItemID maps a grand company to its seal item, 0 for none.
func sealItemID(gc uint8) uint32 {
	switch gc {
	case 1:
		return 20
	case 2:
		return 21
	case 3:
		return 22
	}
	return 0
}

func placeholder(s subject.Subject, name string, iconID, cap uint32) subject.Details {
	return subject.NewDetails(name, iconID, cap, 0, s.CapOverride).WithAlias(s.Alias)
}
