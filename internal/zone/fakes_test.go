package zone

import (
	"context"

	"github.com/nebel/CurrencyWatchdog/internal/signal"
)

// FakeHost is a controllable Host.
type FakeHost struct {
	zoning      bool
	territoryID uint32
	login       *signal.Signal[struct{}]
	logout      *signal.Signal[struct{}]
	territory   *signal.Signal[uint32]
	transition  *signal.Signal[bool]
}

func NewFakeHost() *FakeHost {
	return &FakeHost{
		login:      signal.New[struct{}](),
		logout:     signal.New[struct{}](),
		territory:  signal.New[uint32](),
		transition: signal.New[bool](),
	}
}

func (h *FakeHost) Zoning() bool                            { return h.zoning }
func (h *FakeHost) TerritoryID() uint32                     { return h.territoryID }
func (h *FakeHost) LoginSignal() *signal.Signal[struct{}]   { return h.login }
func (h *FakeHost) LogoutSignal() *signal.Signal[struct{}]  { return h.logout }
func (h *FakeHost) TerritorySignal() *signal.Signal[uint32] { return h.territory }
func (h *FakeHost) TransitionSignal() *signal.Signal[bool]  { return h.transition }

func (h *FakeHost) Login()  { h.login.Emit(context.Background(), struct{}{}) }
func (h *FakeHost) Logout() { h.logout.Emit(context.Background(), struct{}{}) }
func (h *FakeHost) Territory(id uint32) {
	h.territoryID = id
	h.territory.Emit(context.Background(), id)
}

// SetZoning changes the between-areas flag and emits the transition signal.
func (h *FakeHost) SetZoning(v bool) {
	h.zoning = v
	h.transition.Emit(context.Background(), v)
}

// recorded is one observed change with the login state at emission time.
type recorded struct {
	change Change
	state  LoginState
}

func record(w *Watcher) *[]recorded {
	var got []recorded
	w.Changes().Subscribe(func(_ context.Context, c Change) {
		got = append(got, recorded{change: c, state: w.LoginState()})
	})
	return &got
}
