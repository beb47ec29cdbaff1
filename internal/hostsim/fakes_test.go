package hostsim

import (
	"context"

	"github.com/nebel/CurrencyWatchdog/internal/events"
)

// FakePublisher collects published events.
type FakePublisher struct {
	Events []*events.HostEvent
	Err    error
}

func (f *FakePublisher) Publish(ctx context.Context, ev *events.HostEvent) error {
	if f.Err != nil {
		return f.Err
	}
	f.Events = append(f.Events, ev)
	return nil
}

func (f *FakePublisher) Close() error { return nil }
