package main

import (
	"context"
	"sync"

	"github.com/nebel/CurrencyWatchdog/internal/command"
	"github.com/nebel/CurrencyWatchdog/internal/events"
	"github.com/nebel/CurrencyWatchdog/internal/settings"
)

// FakeDispatcher records dispatched events and signals each one on Seen.
type FakeDispatcher struct {
	mu     sync.Mutex
	Events []*events.HostEvent
	Err    error
	Seen   chan struct{}
}

func NewFakeDispatcher() *FakeDispatcher {
	return &FakeDispatcher{Seen: make(chan struct{}, 16)}
}

func (f *FakeDispatcher) Dispatch(ctx context.Context, ev *events.HostEvent) error {
	f.mu.Lock()
	f.Events = append(f.Events, ev)
	f.mu.Unlock()
	f.Seen <- struct{}{}
	return f.Err
}

// FakeApplier records applied settings.
type FakeApplier struct {
	Applied chan *settings.Settings
}

func (f *FakeApplier) HandleConfigChange(ctx context.Context, s *settings.Settings) error {
	f.Applied <- s
	return nil
}

// FakeCommands returns a canned result.
type FakeCommands struct {
	Inputs []string
	Result command.Result
	Err    error
}

func (f *FakeCommands) Handle(ctx context.Context, input string) (command.Result, error) {
	f.Inputs = append(f.Inputs, input)
	return f.Result, f.Err
}
