package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrItemNotFound is returned when an item id is not in the catalog.
var ErrItemNotFound = errors.New("item not found")

// ListItems retrieves the whole item catalog.
func (db *DB) ListItems(ctx context.Context) ([]Item, error) {
	query := `
		SELECT item_id, name, icon_id, stack_size, can_be_hq
		FROM items
		ORDER BY item_id
	`
	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.ItemID, &item.Name, &item.IconID, &item.StackSize, &item.CanBeHQ); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// GetItem retrieves one catalog item.
func (db *DB) GetItem(ctx context.Context, itemID uint32) (*Item, error) {
	query := `
		SELECT item_id, name, icon_id, stack_size, can_be_hq
		FROM items
		WHERE item_id = $1
	`
	var item Item
	err := db.conn.QueryRowContext(ctx, query, itemID).Scan(&item.ItemID, &item.Name, &item.IconID, &item.StackSize, &item.CanBeHQ)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %d", ErrItemNotFound, itemID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return &item, nil
}

// UpsertItem inserts or replaces a catalog item.
func (db *DB) UpsertItem(ctx context.Context, item Item) error {
	query := `
		INSERT INTO items (item_id, name, icon_id, stack_size, can_be_hq)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (item_id) DO UPDATE
		SET name = EXCLUDED.name, icon_id = EXCLUDED.icon_id,
			stack_size = EXCLUDED.stack_size, can_be_hq = EXCLUDED.can_be_hq
	`
	if _, err := db.conn.ExecContext(ctx, query, item.ItemID, item.Name, item.IconID, item.StackSize, item.CanBeHQ); err != nil {
		return fmt.Errorf("failed to upsert item %d: %w", item.ItemID, err)
	}
	return nil
}

// ListTomestones assigns the tomestone rows to their roles. A row with a
// weekly limit is the limited tomestone regardless of its kind.
func (db *DB) ListTomestones(ctx context.Context) (Tomestones, error) {
	query := `
		SELECT item_id, kind, weekly_limit
		FROM tomestones
		ORDER BY item_id
	`
	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return Tomestones{}, fmt.Errorf("failed to list tomestones: %w", err)
	}
	defer rows.Close()

	var t Tomestones
	for rows.Next() {
		var itemID, weeklyLimit uint32
		var kind int
		if err := rows.Scan(&itemID, &kind, &weeklyLimit); err != nil {
			return Tomestones{}, fmt.Errorf("failed to scan tomestone: %w", err)
		}
		switch {
		case weeklyLimit > 0:
			t.Limited = itemID
			t.WeeklyLimit = weeklyLimit
		case kind == TomestoneKindEvergreen:
			t.Evergreen = itemID
		case kind == TomestoneKindStandard:
			t.Standard = itemID
		case kind == TomestoneKindDiscontinued:
			t.Discontinued = itemID
		}
	}
	return t, rows.Err()
}

// UpsertTomestone records the role of a tomestone item. weeklyLimit is zero
// for every tomestone except the limited one.
func (db *DB) UpsertTomestone(ctx context.Context, itemID uint32, kind int, weeklyLimit uint32) error {
	query := `
		INSERT INTO tomestones (item_id, kind, weekly_limit)
		VALUES ($1, $2, $3)
		ON CONFLICT (item_id) DO UPDATE
		SET kind = EXCLUDED.kind, weekly_limit = EXCLUDED.weekly_limit
	`
	if _, err := db.conn.ExecContext(ctx, query, itemID, kind, weeklyLimit); err != nil {
		return fmt.Errorf("failed to upsert tomestone %d: %w", itemID, err)
	}
	return nil
}

// ClearTomestones removes every tomestone role so a new set can be written.
func (db *DB) ClearTomestones(ctx context.Context) error {
	if _, err := db.conn.ExecContext(ctx, `DELETE FROM tomestones`); err != nil {
		return fmt.Errorf("failed to clear tomestones: %w", err)
	}
	return nil
}
