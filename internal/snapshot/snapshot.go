// Package snapshot persists settings snapshots in Redis. Each profile has a
// JSON document and a version counter bumped on every save.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/nebel/CurrencyWatchdog/internal/settings"
)

// KeyPrefix prefixes every key the store writes.
const KeyPrefix = "watchdog:settings:"

// ErrNotFound is returned by Load when the profile has no stored snapshot.
var ErrNotFound = errors.New("settings snapshot not found")

// Store reads and writes the settings of one profile.
type Store struct {
	client  *redis.Client
	profile string
}

// NewStore creates a store for profile.
func NewStore(client *redis.Client, profile string) *Store {
	return &Store{
		client:  client,
		profile: profile,
	}
}

// SnapshotKey is the Redis key holding the settings document.
func (s *Store) SnapshotKey() string {
	return KeyPrefix + s.profile
}

// VersionKey is the Redis key holding the version counter.
func (s *Store) VersionKey() string {
	return KeyPrefix + s.profile + ":version"
}

// Load reads and decodes the stored snapshot.
func (s *Store) Load(ctx context.Context) (*settings.Settings, error) {
	data, err := s.client.Get(ctx, s.SnapshotKey()).Bytes()
	if err == redis.Nil {
		return nil, fmt.Errorf("%w (key: %s)", ErrNotFound, s.SnapshotKey())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settings from Redis: %w", err)
	}

	snap, err := settings.Decode(data)
	if err != nil {
		return nil, err
	}

	slog.Info("Loaded settings snapshot from Redis",
		"profile", s.profile,
		"burdens_count", len(snap.Burdens),
		"enabled", snap.Enabled,
	)
	return snap, nil
}

// LoadOrDefault is Load with the default settings standing in for a missing
// snapshot.
func (s *Store) LoadOrDefault(ctx context.Context) (*settings.Settings, error) {
	snap, err := s.Load(ctx)
	if errors.Is(err, ErrNotFound) {
		slog.Info("No stored settings, using defaults", "profile", s.profile)
		return settings.Default(), nil
	}
	return snap, err
}

// Save validates and stores snap, and bumps the version in the same
// transaction. It returns the new version.
func (s *Store) Save(ctx context.Context, snap *settings.Settings) (int64, error) {
	if err := snap.Validate(); err != nil {
		return 0, fmt.Errorf("invalid settings: %w", err)
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal settings: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.SnapshotKey(), data, 0)
	incr := pipe.Incr(ctx, s.VersionKey())
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to write settings to Redis: %w", err)
	}

	slog.Info("Settings snapshot written to Redis",
		"profile", s.profile,
		"burdens_count", len(snap.Burdens),
		"version", incr.Val(),
	)
	return incr.Val(), nil
}

// Version returns the current version, 0 when nothing was saved yet.
func (s *Store) Version(ctx context.Context) (int64, error) {
	version, err := s.client.Get(ctx, s.VersionKey()).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get settings version from Redis: %w", err)
	}
	return version, nil
}

// Import loads a JSON or YAML settings file and saves it.
func (s *Store) Import(ctx context.Context, path string) (int64, error) {
	snap, err := settings.LoadFile(path)
	if err != nil {
		return 0, err
	}
	return s.Save(ctx, snap)
}
