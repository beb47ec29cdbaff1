package server

import (
	"context"
	"net/http"
	"sync"

	"github.com/nebel/CurrencyWatchdog/internal/database"
	"github.com/nebel/CurrencyWatchdog/internal/events"
	"github.com/nebel/CurrencyWatchdog/internal/metrics"
	"github.com/nebel/CurrencyWatchdog/internal/overlay"
)

// FakeSubmitter records submitted events.
type FakeSubmitter struct {
	Events []*events.HostEvent
	Err    error
}

func (f *FakeSubmitter) Submit(_ context.Context, ev *events.HostEvent) error {
	if f.Err != nil {
		return f.Err
	}
	f.Events = append(f.Events, ev)
	return nil
}

// FakeHistory returns fixed entries and records the requested limit.
type FakeHistory struct {
	Entries []database.HistoryEntry
	Limit   int
	Err     error
}

func (f *FakeHistory) ListAlertHistory(_ context.Context, limit int) ([]database.HistoryEntry, error) {
	f.Limit = limit
	return f.Entries, f.Err
}

// FakeOverlay serves a fixed frame.
type FakeOverlay struct {
	Frame       overlay.Frame
	Err         error
	Served      int
	ClientCount int
}

func (f *FakeOverlay) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	f.Served++
	w.WriteHeader(http.StatusSwitchingProtocols)
}

func (f *FakeOverlay) LastFrame() (overlay.Frame, error) { return f.Frame, f.Err }
func (f *FakeOverlay) Clients() int                      { return f.ClientCount }
func (f *FakeOverlay) PanelCount() int                   { return len(f.Frame.Panels) }

// FakeMetrics returns a fixed snapshot.
type FakeMetrics struct {
	Snap *metrics.Snapshot
}

func (f *FakeMetrics) Snapshot() *metrics.Snapshot { return f.Snap }

// FakeRecorder counts custom increments.
type FakeRecorder struct {
	mu     sync.Mutex
	Counts map[string]int
}

func (f *FakeRecorder) IncrementCustom(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Counts == nil {
		f.Counts = map[string]int{}
	}
	f.Counts[name]++
}
