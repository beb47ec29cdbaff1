package reloader

import (
	"context"

	"github.com/nebel/CurrencyWatchdog/internal/settings"
)

// FakeLoader serves a settable version and snapshot.
type FakeLoader struct {
	VersionValue int64
	Snapshot     *settings.Settings
	VersionErr   error
	LoadErr      error
	Loads        int
}

func (f *FakeLoader) Version(ctx context.Context) (int64, error) {
	return f.VersionValue, f.VersionErr
}

func (f *FakeLoader) Load(ctx context.Context) (*settings.Settings, error) {
	f.Loads++
	if f.LoadErr != nil {
		return nil, f.LoadErr
	}
	return f.Snapshot, nil
}
