// Package inventory holds the live resource state reported by the host:
// held item counts per quality, currency counts and maxima, the weekly
// tomestone tally, grand company standing and the leve allowance.
package inventory

import (
	"github.com/nebel/CurrencyWatchdog/internal/subject"
)

// Currency is a count tracked by the host currency manager together with the
// maximum the host reports for it.
type Currency struct {
	Count uint32
	Max   uint32
}

type counts struct {
	normal uint32
	high   uint32
}

// Inventory is owned by the event loop and is not safe for concurrent use.
type Inventory struct {
	items      map[uint32]counts
	currencies map[uint32]Currency

	weeklyAcquired uint32
	grandCompany   uint8
	maxSeals       uint32
	allowance      uint32
}

// New returns an empty inventory.
func New() *Inventory {
	return &Inventory{
		items:      make(map[uint32]counts),
		currencies: make(map[uint32]Currency),
	}
}

// SetCount records the held count of itemID at quality q. QualityAny is
// stored as normal quality. A zero count for both qualities forgets the item.
func (inv *Inventory) SetCount(itemID uint32, q subject.Quality, count uint32) {
	c := inv.items[itemID]
	if q == subject.QualityHigh {
		c.high = count
	} else {
		c.normal = count
	}
	if c.normal == 0 && c.high == 0 {
		delete(inv.items, itemID)
		return
	}
	inv.items[itemID] = c
}

// SetCurrency records a currency manager update.
func (inv *Inventory) SetCurrency(itemID, count, max uint32) {
	inv.currencies[itemID] = Currency{Count: count, Max: max}
}

// Count returns the held quantity of itemID filtered by quality. Currency
// manager counts take precedence over bag counts for the same item.
func (inv *Inventory) Count(itemID uint32, q subject.Quality) uint32 {
	if cur, ok := inv.currencies[itemID]; ok {
		if q == subject.QualityHigh {
			return 0
		}
		return cur.Count
	}

	c := inv.items[itemID]
	switch q {
	case subject.QualityNormal:
		return c.normal
	case subject.QualityHigh:
		return c.high
	default:
		return c.normal + c.high
	}
}

// Currency returns the currency manager entry for itemID, if any.
func (inv *Inventory) Currency(itemID uint32) (Currency, bool) {
	cur, ok := inv.currencies[itemID]
	return cur, ok
}

// SetWeeklyAcquired records the limited tomestones earned this week.
func (inv *Inventory) SetWeeklyAcquired(n uint32) {
	inv.weeklyAcquired = n
}

// WeeklyAcquired returns the limited tomestones earned this week.
func (inv *Inventory) WeeklyAcquired() uint32 {
	return inv.weeklyAcquired
}

// SetGrandCompany records the player's grand company and the seal cap of
// their current rank. gc 0 means no company.
func (inv *Inventory) SetGrandCompany(gc uint8, maxSeals uint32) {
	inv.grandCompany = gc
	inv.maxSeals = maxSeals
}

// GrandCompany returns the player's grand company and rank seal cap.
func (inv *Inventory) GrandCompany() (gc uint8, maxSeals uint32) {
	return inv.grandCompany, inv.maxSeals
}

// SetAllowance records the remaining leve allowance.
func (inv *Inventory) SetAllowance(n uint32) {
	inv.allowance = n
}

// Allowance returns the remaining leve allowance.
func (inv *Inventory) Allowance() uint32 {
	return inv.allowance
}

// Len returns the number of distinct items and currencies tracked.
func (inv *Inventory) Len() int {
	return len(inv.items) + len(inv.currencies)
}

// Reset forgets everything, as on logout.
func (inv *Inventory) Reset() {
	clear(inv.items)
	clear(inv.currencies)
	inv.weeklyAcquired = 0
	inv.grandCompany = 0
	inv.maxSeals = 0
	inv.allowance = 0
}
