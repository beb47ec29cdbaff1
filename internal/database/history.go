package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/lib/pq"
)

// InsertAlertHistory records a delivered chat alert. Re-inserting the same
// alert of the same batch is a no-op and returns nil.
func (db *DB) InsertAlertHistory(ctx context.Context, e *HistoryEntry) (*int64, error) {
	query := `
		INSERT INTO alert_history (batch_id, alert_id, rule_id, subject_index, subject_name, held, cap, message, channels, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (batch_id, alert_id) DO NOTHING
		RETURNING history_id
	`

	var historyID int64
	err := db.conn.QueryRowContext(ctx, query,
		e.BatchID,
		e.AlertID,
		e.RuleID,
		e.SubjectIndex,
		e.SubjectName,
		e.Held,
		e.Cap,
		e.Message,
		pq.Array(e.Channels),
		e.SentAt,
	).Scan(&historyID)
	if err != nil {
		if err == sql.ErrNoRows {
			slog.Debug("Alert history entry already exists, skipping",
				"batch_id", e.BatchID,
				"alert_id", e.AlertID,
			)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to insert alert history: %w", err)
	}
	return &historyID, nil
}

// ListAlertHistory retrieves the most recent history entries, newest first.
func (db *DB) ListAlertHistory(ctx context.Context, limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT history_id, batch_id, alert_id, rule_id, subject_index, subject_name, held, cap, message, channels, sent_at
		FROM alert_history
		ORDER BY sent_at DESC, history_id DESC
		LIMIT $1
	`
	rows, err := db.conn.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list alert history: %w", err)
	}
	defer rows.Close()

	entries := []HistoryEntry{}
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(
			&e.HistoryID,
			&e.BatchID,
			&e.AlertID,
			&e.RuleID,
			&e.SubjectIndex,
			&e.SubjectName,
			&e.Held,
			&e.Cap,
			&e.Message,
			pq.Array(&e.Channels),
			&e.SentAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan alert history: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
