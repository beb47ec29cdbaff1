package processor

import (
	"context"
	"time"

	"github.com/nebel/CurrencyWatchdog/internal/alert"
	"github.com/nebel/CurrencyWatchdog/internal/payload"
	"github.com/nebel/CurrencyWatchdog/internal/settings"
	"github.com/nebel/CurrencyWatchdog/internal/signal"
	"github.com/nebel/CurrencyWatchdog/internal/subject"
	"github.com/nebel/CurrencyWatchdog/internal/zone"
)

// FakeResolver returns mutable details per item id.
type FakeResolver struct {
	Items map[uint32]subject.Details
}

func (f *FakeResolver) Resolve(s subject.Subject) (subject.Details, bool) {
	d, ok := f.Items[s.ID]
	return d, ok
}

// FakeSession is a settable SessionState.
type FakeSession struct {
	LoggedIn bool
	Loaded   bool
}

func (f *FakeSession) IsLoggedIn() bool    { return f.LoggedIn }
func (f *FakeSession) IsFullyLoaded() bool { return f.Loaded }

// FakeLogin is a settable LoginStater.
type FakeLogin struct {
	State zone.LoginState
}

func (f *FakeLogin) LoginState() zone.LoginState { return f.State }

// FakeChat records every batch it receives.
type FakeChat struct {
	Batches [][]alert.Alert
	Err     error
}

func (f *FakeChat) Send(_ context.Context, _ *settings.Settings, alerts []alert.Alert) error {
	f.Batches = append(f.Batches, alerts)
	return f.Err
}

// FakeOverlay records redraws and clears.
type FakeOverlay struct {
	Redraws [][]alert.Alert
	Clears  int
	Err     error
}

func (f *FakeOverlay) Redraw(_ context.Context, _ *settings.Settings, alerts []alert.Alert) error {
	f.Redraws = append(f.Redraws, alerts)
	return f.Err
}

func (f *FakeOverlay) Clear(context.Context) error {
	f.Clears++
	return f.Err
}

// FakeMetrics counts calls.
type FakeMetrics struct {
	Received  int
	Published int
	Errors    int
	Processed int
	Custom    map[string]uint64
}

func NewFakeMetrics() *FakeMetrics {
	return &FakeMetrics{Custom: map[string]uint64{}}
}

func (f *FakeMetrics) RecordReceived()               { f.Received++ }
func (f *FakeMetrics) RecordPublished()              { f.Published++ }
func (f *FakeMetrics) RecordError()                  { f.Errors++ }
func (f *FakeMetrics) RecordProcessed(time.Duration) { f.Processed++ }
func (f *FakeMetrics) IncrementCustom(name string)   { f.Custom[name]++ }
func (f *FakeMetrics) AddCustom(name string, v uint64) {
	f.Custom[name] += v
}

// zoneHost drives a real zone.Watcher.
type zoneHost struct {
	zoning     bool
	login      *signal.Signal[struct{}]
	logout     *signal.Signal[struct{}]
	territory  *signal.Signal[uint32]
	transition *signal.Signal[bool]
}

func newZoneHost() *zoneHost {
	return &zoneHost{
		login:      signal.New[struct{}](),
		logout:     signal.New[struct{}](),
		territory:  signal.New[uint32](),
		transition: signal.New[bool](),
	}
}

func (h *zoneHost) Zoning() bool                            { return h.zoning }
func (h *zoneHost) TerritoryID() uint32                     { return 0 }
func (h *zoneHost) LoginSignal() *signal.Signal[struct{}]   { return h.login }
func (h *zoneHost) LogoutSignal() *signal.Signal[struct{}]  { return h.logout }
func (h *zoneHost) TerritorySignal() *signal.Signal[uint32] { return h.territory }
func (h *zoneHost) TransitionSignal() *signal.Signal[bool]  { return h.transition }

// HangingChatSender is a chat strategy that does not return until Release is
// closed.
type HangingChatSender struct {
	Release chan struct{}
	Started chan struct{}
}

func (h *HangingChatSender) Type() string { return "slack" }

func (h *HangingChatSender) Send(ctx context.Context, _ string, _ *payload.ChatBatch) error {
	select {
	case h.Started <- struct{}{}:
	default:
	}
	select {
	case <-h.Release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
