package zone

import (
	"testing"
)

func TestWatcher_LoginNotZoning(t *testing.T) {
	host := NewFakeHost()
	w := NewWatcher(host)
	got := record(w)

	host.Login()

	want := []recorded{
		{change: ChangeLogin, state: StateNone},
		{change: ChangeLoginZoned, state: StateComplete},
	}
	assertChanges(t, *got, want)
	if w.LoginState() != StateComplete {
		t.Errorf("LoginState() = %v, want complete", w.LoginState())
	}
	if w.Waiting() {
		t.Error("watcher armed a wait without a transition in flight")
	}
}

func TestWatcher_LoginWhileZoning(t *testing.T) {
	host := NewFakeHost()
	host.zoning = true
	w := NewWatcher(host)
	got := record(w)

	host.Login()

	assertChanges(t, *got, []recorded{{change: ChangeLogin, state: StateNone}})
	if w.LoginState() != StateZoning {
		t.Fatalf("LoginState() = %v, want zoning", w.LoginState())
	}
	if host.transition.Len() != 1 {
		t.Fatalf("transition subscribers = %d, want 1", host.transition.Len())
	}

	// Still zoning: nothing settles.
	host.SetZoning(true)
	if len(*got) != 1 {
		t.Fatalf("changes after zoning=true: %v", *got)
	}

	host.SetZoning(false)

	assertChanges(t, *got, []recorded{
		{change: ChangeLogin, state: StateNone},
		{change: ChangeLoginZoned, state: StateResolving},
	})
	if w.LoginState() != StateComplete {
		t.Errorf("LoginState() = %v, want complete", w.LoginState())
	}
	if host.transition.Len() != 0 {
		t.Errorf("transition subscribers = %d after settle, want 0", host.transition.Len())
	}
}

func TestWatcher_TerritoryChange(t *testing.T) {
	host := NewFakeHost()
	w := NewWatcher(host)
	host.Login()
	got := record(w)

	host.Territory(132)
	assertChanges(t, *got, []recorded{
		{change: ChangeTerritory, state: StateComplete},
		{change: ChangeTerritoryZoned, state: StateComplete},
	})

	*got = nil
	host.zoning = true
	host.Territory(133)
	assertChanges(t, *got, []recorded{{change: ChangeTerritory, state: StateComplete}})

	host.SetZoning(false)
	assertChanges(t, *got, []recorded{
		{change: ChangeTerritory, state: StateComplete},
		{change: ChangeTerritoryZoned, state: StateComplete},
	})
}

func TestWatcher_IndependentWaitsSingleSubscription(t *testing.T) {
	host := NewFakeHost()
	host.zoning = true
	w := NewWatcher(host)
	got := record(w)

	host.Login()
	host.Territory(1)
	host.Territory(2)

	if host.transition.Len() != 1 {
		t.Fatalf("transition subscribers = %d, want exactly 1", host.transition.Len())
	}

	host.SetZoning(false)

	assertChanges(t, *got, []recorded{
		{change: ChangeLogin, state: StateNone},
		{change: ChangeTerritory, state: StateZoning},
		{change: ChangeTerritory, state: StateZoning},
		{change: ChangeLoginZoned, state: StateResolving},
		{change: ChangeTerritoryZoned, state: StateComplete},
	})

	// A second transition end must not replay settled changes.
	*got = nil
	host.SetZoning(false)
	if len(*got) != 0 {
		t.Errorf("unexpected changes after settle: %v", *got)
	}
}

func TestWatcher_LogoutAbandonsWaits(t *testing.T) {
	host := NewFakeHost()
	host.zoning = true
	w := NewWatcher(host)
	got := record(w)

	host.Login()
	host.Territory(7)
	host.Logout()

	if w.LoginState() != StateNone {
		t.Errorf("LoginState() = %v, want none", w.LoginState())
	}
	if w.Waiting() || host.transition.Len() != 0 {
		t.Error("logout left the transition wait armed")
	}

	*got = nil
	host.SetZoning(false)
	if len(*got) != 0 {
		t.Errorf("abandoned waits emitted %v", *got)
	}
}

func TestWatcher_Close(t *testing.T) {
	host := NewFakeHost()
	host.zoning = true
	w := NewWatcher(host)
	got := record(w)

	host.Login()
	w.Close()

	if host.login.Len() != 0 || host.logout.Len() != 0 || host.territory.Len() != 0 || host.transition.Len() != 0 {
		t.Error("Close() left host subscriptions behind")
	}

	*got = nil
	host.Login()
	host.SetZoning(false)
	if len(*got) != 0 {
		t.Errorf("closed watcher emitted %v", *got)
	}
}

func TestStrings(t *testing.T) {
	if StateResolving.String() != "resolving" || LoginState(42).String() != "LoginState(42)" {
		t.Error("LoginState.String() mismatch")
	}
	if ChangeTerritoryZoned.String() != "territory_change_zoned" || Change(9).String() != "Change(9)" {
		t.Error("Change.String() mismatch")
	}
}

func assertChanges(t *testing.T, got, want []recorded) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("changes = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("change[%d] = %v/%v, want %v/%v", i, got[i].change, got[i].state, want[i].change, want[i].state)
		}
	}
}
