package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/nebel/CurrencyWatchdog/internal/command"
	"github.com/nebel/CurrencyWatchdog/internal/events"
	"github.com/nebel/CurrencyWatchdog/internal/settings"
)

var errQueueFull = errors.New("event queue full")

// Dispatcher applies a host event to the session state.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev *events.HostEvent) error
}

// ConfigApplier installs a settings snapshot.
type ConfigApplier interface {
	HandleConfigChange(ctx context.Context, s *settings.Settings) error
}

// CommandRunner executes a /cdog command.
type CommandRunner interface {
	Handle(ctx context.Context, input string) (command.Result, error)
}

// eventLoop owns the engine state. Everything that touches the bridge, the
// zone watcher or the updater runs on the goroutine executing Run.
type eventLoop struct {
	events   chan *events.HostEvent
	updates  <-chan *settings.Settings
	bridge   Dispatcher
	applier  ConfigApplier
	commands CommandRunner
}

func newEventLoop(bridge Dispatcher, applier ConfigApplier, commands CommandRunner, updates <-chan *settings.Settings, buffer int) *eventLoop {
	return &eventLoop{
		events:   make(chan *events.HostEvent, buffer),
		updates:  updates,
		bridge:   bridge,
		applier:  applier,
		commands: commands,
	}
}

// Events is the channel host events are fed into.
func (l *eventLoop) Events() chan<- *events.HostEvent {
	return l.events
}

// Submit queues ev without blocking. It is safe to call from any goroutine.
func (l *eventLoop) Submit(ctx context.Context, ev *events.HostEvent) error {
	if err := ev.Validate(); err != nil {
		return err
	}
	select {
	case l.events <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return errQueueFull
	}
}

// Run processes events and settings updates until ctx is done.
func (l *eventLoop) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-l.events:
			if err := l.bridge.Dispatch(ctx, ev); err != nil {
				slog.Warn("Rejected host event", "type", ev.Type, "error", err)
			}
		case snap := <-l.updates:
			slog.Info("Settings changed, applying", "burdens", len(snap.Burdens), "enabled", snap.Enabled)
			if err := l.applier.HandleConfigChange(ctx, snap); err != nil {
				slog.Error("Failed to apply settings", "error", err)
			}
		}
	}
}

// runCommand is subscribed to the bridge's command signal.
func (l *eventLoop) runCommand(ctx context.Context, input string) {
	result, err := l.commands.Handle(ctx, input)
	switch {
	case errors.Is(err, command.ErrUnknownCommand):
		slog.Warn("Invalid subcommand", "input", input, "error", err)
	case err != nil:
		slog.Error("Command failed", "input", input, "error", err)
	case result.Help != "":
		slog.Info("Command help", "usage", result.Help)
	case result.Changed:
		slog.Info("Command applied", "input", input, "version", result.Version)
	default:
		slog.Debug("Command left settings unchanged", "input", input)
	}
}
