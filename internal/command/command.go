// Package command handles the /cdog chat command, which switches the engine,
// the overlay and chat alerts on or off.
package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nebel/CurrencyWatchdog/internal/settings"
)

// Name is the command prefix.
const Name = "/cdog"

// ErrUnknownCommand is returned for arguments that are not a known subcommand.
var ErrUnknownCommand = errors.New("unknown subcommand")

// Help lists the subcommands.
const Help = Name + " plugin on|off|toggle: enable, disable or toggle the plugin\n" +
	Name + " overlay on|off|toggle: enable, disable or toggle the overlay\n" +
	Name + " chat on|off|toggle: enable, disable or toggle chat alerts"

// Store persists a settings snapshot and returns its new version.
type Store interface {
	Save(ctx context.Context, snap *settings.Settings) (int64, error)
}

// Applier owns the settings in effect.
type Applier interface {
	Settings() *settings.Settings
	HandleConfigChange(ctx context.Context, s *settings.Settings) error
}

// VersionTracker records versions written locally so the poller does not
// apply them a second time. RecordSave runs save and records its version as
// one step.
type VersionTracker interface {
	RecordSave(save func() (int64, error)) (int64, error)
}

// Result describes what a command did.
type Result struct {
	// Help is set when the command only asked for usage.
	Help    string
	Changed bool
	Version int64
}

// Handler executes commands. Calls must come from the event loop goroutine.
type Handler struct {
	store    Store
	applier  Applier
	versions VersionTracker
}

// NewHandler creates a command handler. versions may be nil.
func NewHandler(store Store, applier Applier, versions VersionTracker) *Handler {
	return &Handler{store: store, applier: applier, versions: versions}
}

type action int

const (
	actionOn action = iota
	actionOff
	actionToggle
)

// Handle runs one command. The leading command name is optional and runs of
// whitespace are collapsed. A command that leaves the settings unchanged is
// not saved.
func (h *Handler) Handle(ctx context.Context, input string) (Result, error) {
	fields := strings.Fields(input)
	if len(fields) > 0 && fields[0] == Name {
		fields = fields[1:]
	}
	if len(fields) == 0 {
		return Result{Help: Help}, nil
	}
	args := strings.Join(fields, " ")

	if len(fields) != 2 {
		return Result{}, fmt.Errorf("%w %q", ErrUnknownCommand, args)
	}

	var act action
	switch fields[1] {
	case "on":
		act = actionOn
	case "off":
		act = actionOff
	case "toggle":
		act = actionToggle
	default:
		return Result{}, fmt.Errorf("%w %q", ErrUnknownCommand, args)
	}

	next := h.applier.Settings().Copy()
	var target *bool
	switch fields[0] {
	case "plugin":
		target = &next.Enabled
	case "overlay":
		target = &next.Panel.Enabled
	case "chat":
		target = &next.Chat.Enabled
	default:
		return Result{}, fmt.Errorf("%w %q", ErrUnknownCommand, args)
	}

	if !apply(target, act) {
		return Result{}, nil
	}

	save := func() (int64, error) { return h.store.Save(ctx, next) }
	var version int64
	var err error
	if h.versions != nil {
		version, err = h.versions.RecordSave(save)
	} else {
		version, err = save()
	}
	if err != nil {
		return Result{}, fmt.Errorf("failed to save settings: %w", err)
	}

	slog.Info("Settings changed by command",
		"command", args,
		"version", version,
	)

	if err := h.applier.HandleConfigChange(ctx, next); err != nil {
		return Result{Changed: true, Version: version}, fmt.Errorf("failed to apply settings: %w", err)
	}
	return Result{Changed: true, Version: version}, nil
}

// apply updates *flag and reports whether it changed.
func apply(flag *bool, act action) bool {
	want := *flag
	switch act {
	case actionOn:
		want = true
	case actionOff:
		want = false
	case actionToggle:
		want = !*flag
	}
	if want == *flag {
		return false
	}
	*flag = want
	return true
}
