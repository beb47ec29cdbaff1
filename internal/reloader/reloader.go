// Package reloader polls the settings store for version changes and delivers
// fresh snapshots to the event loop.
package reloader

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/nebel/CurrencyWatchdog/internal/settings"
)

// Loader reads versioned settings snapshots.
type Loader interface {
	Version(ctx context.Context) (int64, error)
	Load(ctx context.Context) (*settings.Settings, error)
}

// Reloader delivers a snapshot on Updates whenever the stored version moves.
// Only the newest undelivered snapshot is kept.
type Reloader struct {
	loader       Loader
	pollInterval time.Duration
	updates      chan *settings.Settings

	mu             sync.Mutex
	currentVersion int64
}

// NewReloader creates a new reloader with the given dependencies.
func NewReloader(loader Loader, pollInterval time.Duration) *Reloader {
	return &Reloader{
		loader:       loader,
		pollInterval: pollInterval,
		updates:      make(chan *settings.Settings, 1),
	}
}

// Updates carries the config-changed snapshots.
func (r *Reloader) Updates() <-chan *settings.Settings {
	return r.updates
}

// Start records the current version and begins polling in a background
// goroutine that exits when ctx is cancelled.
func (r *Reloader) Start(ctx context.Context) error {
	version, err := r.loader.Version(ctx)
	if err != nil {
		return err
	}
	r.SetVersion(version)

	slog.Info("Starting settings version poller",
		"poll_interval", r.pollInterval,
		"initial_version", version,
	)

	go r.pollLoop(ctx)
	return nil
}

// SetVersion marks version as already applied. It never moves backwards.
func (r *Reloader) SetVersion(version int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if version > r.currentVersion {
		r.currentVersion = version
	}
}

// RecordSave runs save, which writes a snapshot and returns its version, and
// marks that version as applied. Polling is held off while save runs, so the
// poller never delivers the saved snapshot back to this process.
func (r *Reloader) RecordSave(save func() (int64, error)) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	version, err := save()
	if err != nil {
		return 0, err
	}
	if version > r.currentVersion {
		r.currentVersion = version
	}
	return version, nil
}

// Version returns the last applied version.
func (r *Reloader) Version() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.currentVersion
}

func (r *Reloader) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Settings version poller stopped")
			return
		case <-ticker.C:
			if err := r.ReloadNow(ctx); err != nil {
				slog.Error("Failed to check/reload settings", "error", err)
			}
		}
	}
}

// ReloadNow checks the version immediately and delivers the snapshot when it
// is newer than the applied one. Versions only grow, so an older version read
// before a concurrent save is ignored.
func (r *Reloader) ReloadNow(ctx context.Context) error {
	version, err := r.loader.Version(ctx)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if version <= r.currentVersion {
		return nil
	}

	slog.Info("Settings version changed, reloading",
		"old_version", r.currentVersion,
		"new_version", version,
	)

	snap, err := r.loader.Load(ctx)
	if err != nil {
		return err
	}
	r.currentVersion = version
	r.deliver(snap)
	return nil
}

// deliver replaces any snapshot the event loop has not picked up yet.
// Callers hold r.mu.
func (r *Reloader) deliver(snap *settings.Settings) {
	select {
	case <-r.updates:
	default:
	}
	r.updates <- snap
}
