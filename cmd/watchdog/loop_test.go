package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nebel/CurrencyWatchdog/internal/command"
	"github.com/nebel/CurrencyWatchdog/internal/events"
	"github.com/nebel/CurrencyWatchdog/internal/settings"
)

func TestEventLoop_Submit(t *testing.T) {
	loop := newEventLoop(NewFakeDispatcher(), &FakeApplier{}, &FakeCommands{}, nil, 1)
	ctx := context.Background()

	if err := loop.Submit(ctx, &events.HostEvent{Type: "bogus"}); err == nil {
		t.Error("Submit() accepted an invalid event")
	}
	if err := loop.Submit(ctx, &events.HostEvent{Type: events.TypeResendAlerts}); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if err := loop.Submit(ctx, &events.HostEvent{Type: events.TypeResendAlerts}); !errors.Is(err, errQueueFull) {
		t.Errorf("Submit() on full queue error = %v, want %v", err, errQueueFull)
	}
}

func TestEventLoop_Run(t *testing.T) {
	dispatcher := NewFakeDispatcher()
	dispatcher.Err = errors.New("rejected")
	applier := &FakeApplier{Applied: make(chan *settings.Settings, 1)}
	updates := make(chan *settings.Settings, 1)
	loop := newEventLoop(dispatcher, applier, &FakeCommands{}, updates, 4)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		loop.Run(ctx)
		close(done)
	}()

	loop.Events() <- &events.HostEvent{Type: events.TypeLogout}
	select {
	case <-dispatcher.Seen:
	case <-time.After(time.Second):
		t.Fatal("event was not dispatched")
	}

	snap := settings.Default()
	updates <- snap
	select {
	case got := <-applier.Applied:
		if got != snap {
			t.Error("applied a different settings snapshot")
		}
	case <-time.After(time.Second):
		t.Fatal("settings update was not applied")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}

func TestEventLoop_RunCommand(t *testing.T) {
	tests := []struct {
		name   string
		result command.Result
		err    error
	}{
		{name: "help", result: command.Result{Help: command.Help}},
		{name: "changed", result: command.Result{Changed: true, Version: 3}},
		{name: "unchanged"},
		{name: "unknown", err: command.ErrUnknownCommand},
		{name: "failed", err: errors.New("redis down")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			commands := &FakeCommands{Result: tt.result, Err: tt.err}
			loop := newEventLoop(NewFakeDispatcher(), &FakeApplier{}, commands, nil, 1)

			loop.runCommand(context.Background(), "/cdog overlay on")
			if len(commands.Inputs) != 1 || commands.Inputs[0] != "/cdog overlay on" {
				t.Errorf("Handle() inputs = %v", commands.Inputs)
			}
		})
	}
}
