package database

import (
	"context"
	"fmt"
	"log/slog"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS items (
		item_id     BIGINT PRIMARY KEY,
		name        TEXT NOT NULL,
		icon_id     BIGINT NOT NULL DEFAULT 0,
		stack_size  BIGINT NOT NULL DEFAULT 0,
		can_be_hq   BOOLEAN NOT NULL DEFAULT FALSE
	);`,

	`CREATE TABLE IF NOT EXISTS tomestones (
		item_id      BIGINT PRIMARY KEY REFERENCES items(item_id),
		kind         SMALLINT NOT NULL,
		weekly_limit BIGINT NOT NULL DEFAULT 0
	);`,

	`CREATE TABLE IF NOT EXISTS alert_history (
		history_id    BIGSERIAL PRIMARY KEY,
		batch_id      UUID NOT NULL,
		alert_id      TEXT NOT NULL,
		rule_id       UUID NOT NULL,
		subject_index INT NOT NULL,
		subject_name  TEXT NOT NULL,
		held          BIGINT NOT NULL,
		cap           BIGINT NOT NULL,
		message       TEXT NOT NULL,
		channels      TEXT[] NOT NULL DEFAULT '{}',
		sent_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (batch_id, alert_id)
	);
	CREATE INDEX IF NOT EXISTS idx_alert_history_sent_at ON alert_history(sent_at DESC);`,
}

// Migrate applies the schema migrations that have not run yet.
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.conn.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_version (version INT NOT NULL)`); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	var current int
	if err := db.conn.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&current); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	for i := current; i < len(migrations); i++ {
		tx, err := db.conn.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin migration %d: %w", i+1, err)
		}
		if _, err := tx.ExecContext(ctx, migrations[i]); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to apply migration %d: %w", i+1, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO schema_version (version) VALUES ($1)`, i+1); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", i+1, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", i+1, err)
		}
		slog.Info("Applied database migration", "version", i+1)
	}
	return nil
}
