package resolver

import (
	"errors"
	"testing"

	"github.com/nebel/CurrencyWatchdog/internal/database"
	"github.com/nebel/CurrencyWatchdog/internal/expr"
	"github.com/nebel/CurrencyWatchdog/internal/inventory"
	"github.com/nebel/CurrencyWatchdog/internal/subject"
)

func newCatalog() *FakeCatalog {
	return &FakeCatalog{
		Items: map[uint32]database.Item{
			21:                       {ItemID: 21, Name: "Serpent Seal", IconID: 65005, StackSize: 999999},
			28:                       {ItemID: 28, Name: "Allagan Tomestone of Poetics", IconID: 65023, StackSize: 2000},
			48:                       {ItemID: 48, Name: "Allagan Tomestone of Mathematics", IconID: 65090, StackSize: 2000},
			5057:                     {ItemID: 5057, Name: "Iron Ingot", IconID: 20801, StackSize: 9999, CanBeHQ: true},
			CurrentCraftersScripID:   {ItemID: CurrentCraftersScripID, Name: "Orange Crafters' Scrip", IconID: 65110, StackSize: 4000},
			PreviousGatherersScripID: {ItemID: PreviousGatherersScripID, Name: "Purple Gatherers' Scrip", IconID: 65087, StackSize: 4000},
		},
		Tomes: database.Tomestones{Evergreen: 28, Limited: 48, WeeklyLimit: 450},
	}
}

func capOf(n uint32) *uint32 { return &n }

func TestResolver_Resolve(t *testing.T) {
	inv := inventory.New()
	inv.SetCount(5057, subject.QualityNormal, 30)
	inv.SetCount(5057, subject.QualityHigh, 12)
	inv.SetCurrency(28, 1500, 2000)
	inv.SetCurrency(48, 300, 2000)
	inv.SetCurrency(CurrentCraftersScripID, 3800, 4000)
	inv.SetCurrency(21, 42000, 90000)
	inv.SetWeeklyAcquired(250)
	inv.SetGrandCompany(2, 90000)

	r := New(newCatalog(), inv)

	tests := []struct {
		name        string
		subject     subject.Subject
		wantOK      bool
		wantName    string
		wantHeld    uint32
		wantCap     uint32
		wantEff     uint32
		wantLimited *subject.Limited
		wantHQIcon  bool
	}{
		{
			name:     "plain item any quality",
			subject:  subject.Item(5057),
			wantOK:   true,
			wantName: "Iron Ingot", wantHeld: 42, wantCap: 9999, wantEff: 9999,
		},
		{
			name:     "high quality filter",
			subject:  subject.Subject{Type: subject.TypeItem, ID: 5057, Quality: subject.QualityHigh, Enabled: true},
			wantOK:   true,
			wantName: "Iron Ingot", wantHeld: 12, wantCap: 9999, wantEff: 9999, wantHQIcon: true,
		},
		{
			name:     "cap override",
			subject:  subject.Subject{Type: subject.TypeItem, ID: 5057, CapOverride: capOf(50), Enabled: true},
			wantOK:   true,
			wantName: "Iron Ingot", wantHeld: 42, wantCap: 9999, wantEff: 50,
		},
		{
			name:    "unknown item",
			subject: subject.Item(404),
			wantOK:  false,
		},
		{
			name:     "scrip kind maps to constant id",
			subject:  subject.Subject{Type: subject.TypeCurrentCraftersScrip, Enabled: true},
			wantOK:   true,
			wantName: "Orange Crafters' Scrip", wantHeld: 3800, wantCap: 4000, wantEff: 4000,
		},
		{
			name:     "scrip without currency entry",
			subject:  subject.Subject{Type: subject.TypePreviousGatherersScrip, Enabled: true},
			wantOK:   true,
			wantName: "Purple Gatherers' Scrip", wantHeld: 0, wantCap: 4000, wantEff: 4000,
		},
		{
			name:     "evergreen tomestone",
			subject:  subject.Subject{Type: subject.TypeEvergreenTomestone, Enabled: true},
			wantOK:   true,
			wantName: "Allagan Tomestone of Poetics", wantHeld: 1500, wantCap: 2000, wantEff: 2000,
		},
		{
			name:     "limited tomestone carries weekly limit",
			subject:  subject.Subject{Type: subject.TypeLimitedTomestone, Enabled: true},
			wantOK:   true,
			wantName: "Allagan Tomestone of Mathematics", wantHeld: 300, wantCap: 2000, wantEff: 2000,
			wantLimited: &subject.Limited{Cap: 450, Held: 250},
		},
		{
			name:     "limited tomestone as plain item",
			subject:  subject.Item(48),
			wantOK:   true,
			wantName: "Allagan Tomestone of Mathematics", wantHeld: 300, wantCap: 2000, wantEff: 2000,
			wantLimited: &subject.Limited{Cap: 450, Held: 250},
		},
		{
			name:     "unreleased tomestone",
			subject:  subject.Subject{Type: subject.TypeStandardTomestone, Alias: "Next", Enabled: true},
			wantOK:   true,
			wantName: UnreleasedTomestoneName, wantHeld: 0, wantCap: UnreleasedTomestoneCap, wantEff: UnreleasedTomestoneCap,
		},
		{
			name:     "grand company seal uses rank cap",
			subject:  subject.Subject{Type: subject.TypeGrandCompanySeal, Enabled: true},
			wantOK:   true,
			wantName: "Serpent Seal", wantHeld: 42000, wantCap: 90000, wantEff: 90000,
		},
		{
			name:     "grand company seal cap override wins",
			subject:  subject.Subject{Type: subject.TypeGrandCompanySeal, CapOverride: capOf(50000), Enabled: true},
			wantOK:   true,
			wantName: "Serpent Seal", wantHeld: 42000, wantCap: 90000, wantEff: 50000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := r.Resolve(tt.subject)
			if ok != tt.wantOK {
				t.Fatalf("Resolve() ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if d.Name != tt.wantName || d.Held != tt.wantHeld || d.Cap != tt.wantCap || d.EffectiveCap != tt.wantEff {
				t.Errorf("Resolve() = %s held %d cap %d eff %d, want %s held %d cap %d eff %d",
					d.Name, d.Held, d.Cap, d.EffectiveCap, tt.wantName, tt.wantHeld, tt.wantCap, tt.wantEff)
			}
			if d.HQIcon != tt.wantHQIcon {
				t.Errorf("HQIcon = %v, want %v", d.HQIcon, tt.wantHQIcon)
			}
			if d.Alias != tt.subject.Alias {
				t.Errorf("Alias = %q, want %q", d.Alias, tt.subject.Alias)
			}
			switch {
			case tt.wantLimited == nil && d.Limited != nil:
				t.Errorf("Limited = %+v, want nil", *d.Limited)
			case tt.wantLimited != nil && (d.Limited == nil || *d.Limited != *tt.wantLimited):
				t.Errorf("Limited = %v, want %+v", d.Limited, *tt.wantLimited)
			}
		})
	}
}

func TestResolver_GenericSeal(t *testing.T) {
	tests := []struct {
		name     string
		gc       uint8
		maxSeals uint32
	}{
		{name: "no grand company", gc: 0, maxSeals: 0},
		{name: "unknown grand company", gc: 9, maxSeals: 10000},
		{name: "rank cap unknown", gc: 2, maxSeals: 0},
		{name: "seal item missing from catalog", gc: 1, maxSeals: 10000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := inventory.New()
			inv.SetGrandCompany(tt.gc, tt.maxSeals)
			d, ok := New(newCatalog(), inv).Resolve(subject.Subject{Type: subject.TypeGrandCompanySeal, Enabled: true})
			if !ok {
				t.Fatal("Resolve() ok = false, want placeholder")
			}
			if d.Name != GenericSealName || d.IconID != GenericSealIconID || d.Cap != GenericSealCap || d.Held != 0 {
				t.Errorf("Resolve() = %+v, want generic seal", d)
			}
		})
	}
}

func TestResolver_UnknownTypePanics(t *testing.T) {
	r := New(newCatalog(), inventory.New())

	defer func() {
		rec := recover()
		err, ok := rec.(error)
		var ce *expr.ContractError
		if !ok || !errors.As(err, &ce) {
			t.Fatalf("recovered %v, want *expr.ContractError", rec)
		}
		if ce.Kind != "subject type" || ce.Value != 99 {
			t.Errorf("ContractError = %+v", ce)
		}
	}()
	r.Resolve(subject.Subject{Type: subject.Type(99), Enabled: true})
}
