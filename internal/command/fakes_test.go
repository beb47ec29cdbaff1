package command

import (
	"context"

	"github.com/nebel/CurrencyWatchdog/internal/settings"
)

// FakeStore records saved snapshots and hands out increasing versions.
type FakeStore struct {
	Saved []*settings.Settings
	Err   error
}

func (f *FakeStore) Save(_ context.Context, snap *settings.Settings) (int64, error) {
	if f.Err != nil {
		return 0, f.Err
	}
	f.Saved = append(f.Saved, snap)
	return int64(len(f.Saved)), nil
}

// FakeApplier holds the settings in effect.
type FakeApplier struct {
	Current *settings.Settings
	Applied int
	Err     error
}

func (f *FakeApplier) Settings() *settings.Settings { return f.Current }

func (f *FakeApplier) HandleConfigChange(_ context.Context, s *settings.Settings) error {
	f.Applied++
	f.Current = s
	return f.Err
}

// FakeVersions records the version of the last save it ran.
type FakeVersions struct {
	Version int64
	Saves   int
}

func (f *FakeVersions) RecordSave(save func() (int64, error)) (int64, error) {
	f.Saves++
	v, err := save()
	if err != nil {
		return 0, err
	}
	f.Version = v
	return v, nil
}
