package subject

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Limited is the secondary, periodic ceiling some resources carry next to
// their standing cap.
type Limited struct {
	Cap  uint32
	Held uint32
}

// Details is a point-in-time snapshot of a resolved subject. A nil Limited
// means the resource has no periodic ceiling.
type Details struct {
	Name         string
	Alias        string
	IconID       uint32
	HQIcon       bool
	Cap          uint32
	Held         uint32
	EffectiveCap uint32
	Limited      *Limited
}

// NewDetails builds a snapshot, deriving the effective cap from the optional override.
func NewDetails(name string, iconID, cap, held uint32, capOverride *uint32) Details {
	d := Details{
		Name:         name,
		IconID:       iconID,
		Cap:          cap,
		Held:         held,
		EffectiveCap: cap,
	}
	if capOverride != nil {
		d.EffectiveCap = *capOverride
	}
	return d
}

// WithLimited returns a copy carrying the given periodic ceiling.
func (d Details) WithLimited(cap, held uint32) Details {
	d.Limited = &Limited{Cap: cap, Held: held}
	return d
}

// WithAlias returns a copy with the user alias set.
func (d Details) WithAlias(alias string) Details {
	d.Alias = alias
	return d
}

// DisplayName returns the alias when set, otherwise the resource name.
func (d Details) DisplayName() string {
	if d.Alias != "" {
		return d.Alias
	}
	return d.Name
}

// HeldPercent returns held*100/effectiveCap, or 0 when the effective cap is 0.
func (d Details) HeldPercent() decimal.Decimal {
	return percent(d.Held, d.EffectiveCap)
}

// Missing returns how far held is below the effective cap, floored at 0.
func (d Details) Missing() uint32 {
	return missing(d.Held, d.EffectiveCap)
}

// LimitedCap returns the periodic cap, if any.
func (d Details) LimitedCap() (uint32, bool) {
	if d.Limited == nil {
		return 0, false
	}
	return d.Limited.Cap, true
}

// LimitedHeld returns the quantity acquired in the current period, if any.
func (d Details) LimitedHeld() (uint32, bool) {
	if d.Limited == nil {
		return 0, false
	}
	return d.Limited.Held, true
}

// LimitedHeldPercent returns the periodic percentage, if any.
func (d Details) LimitedHeldPercent() (decimal.Decimal, bool) {
	if d.Limited == nil {
		return decimal.Zero, false
	}
	return percent(d.Limited.Held, d.Limited.Cap), true
}

// LimitedMissing returns the remaining periodic allowance, if any.
func (d Details) LimitedMissing() (uint32, bool) {
	if d.Limited == nil {
		return 0, false
	}
	return missing(d.Limited.Held, d.Limited.Cap), true
}

func percent(held, cap uint32) decimal.Decimal {
	if cap == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(held)).Mul(hundred).Div(decimal.NewFromInt(int64(cap)))
}

func missing(held, cap uint32) uint32 {
	if held >= cap {
		return 0
	}
	return cap - held
}
