package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mmynk/mochiyoru/internal/models"
	"github.com/mmynk/mochiyoru/internal/storage"
)

// ListItems retrieves all items for a group in insertion order.
func (s *SQLiteStore) ListItems(ctx context.Context, groupID string) ([]models.Item, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT item_name, quantity, assignee FROM items WHERE group_id = ? ORDER BY id`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list items by group: %w", err)
	}
	defer rows.Close()

	items := []models.Item{}
	for rows.Next() {
		item := models.Item{GroupID: groupID}
		var quantity sql.NullInt64

		if err := rows.Scan(&item.Name, &quantity, &item.Assignee); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}

		if quantity.Valid {
			item.Quantity = models.IntPtr(int(quantity.Int64))
		}

		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}

	return items, nil
}

// UpsertItem inserts an item or replaces quantity and assignee of the existing row.
// The row keeps its original position on replace.
func (s *SQLiteStore) UpsertItem(ctx context.Context, item models.Item) error {
	var quantity interface{} = nil
	if item.Quantity != nil {
		quantity = *item.Quantity
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO items (group_id, item_name, quantity, assignee)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (group_id, item_name)
		 DO UPDATE SET quantity = excluded.quantity, assignee = excluded.assignee`,
		item.GroupID, item.Name, quantity, item.Assignee,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert item: %w", err)
	}

	return nil
}

// DeleteItem removes an item by group ID and name.
func (s *SQLiteStore) DeleteItem(ctx context.Context, groupID, name string) error {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM items WHERE group_id = ? AND item_name = ?",
		groupID, name,
	)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("item %q in group %s: %w", name, groupID, storage.ErrNotFound)
	}

	return nil
}
