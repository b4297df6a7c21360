// Package mysql provides a MySQL-backed implementation of the storage.Store interface,
// for deployments where groups and items live in a hosted database.
package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"github.com/mmynk/mochiyoru/internal/models"
	"github.com/mmynk/mochiyoru/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// `groups` is a reserved word since MySQL 8.0.2 and must stay quoted.
// Keys use a binary collation: "Camera" and "camera" are different items.
var schema = []string{
	"CREATE TABLE IF NOT EXISTS `groups` (" +
		"id VARCHAR(64) COLLATE utf8mb4_bin PRIMARY KEY," +
		"name VARCHAR(255) NOT NULL," +
		"members JSON NOT NULL," +
		"created_at BIGINT NOT NULL" +
		") CHARACTER SET utf8mb4",
	"CREATE TABLE IF NOT EXISTS items (" +
		"id BIGINT AUTO_INCREMENT PRIMARY KEY," +
		"group_id VARCHAR(64) COLLATE utf8mb4_bin NOT NULL," +
		"item_name VARCHAR(255) COLLATE utf8mb4_bin NOT NULL," +
		"quantity INT NULL," +
		"assignee VARCHAR(255) NOT NULL DEFAULT ''," +
		"UNIQUE KEY uq_items_group_name (group_id, item_name)" +
		") CHARACTER SET utf8mb4",
	// Tables created before the keys were binary.
	"ALTER TABLE `groups` MODIFY id VARCHAR(64) COLLATE utf8mb4_bin NOT NULL",
	"ALTER TABLE items MODIFY group_id VARCHAR(64) COLLATE utf8mb4_bin NOT NULL," +
		" MODIFY item_name VARCHAR(255) COLLATE utf8mb4_bin NOT NULL",
}

type Store struct {
	db *sql.DB
}

// Open connects to MySQL, verifies the connection and creates missing tables.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}

	s := New(db)
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}

	members, err := json.Marshal(nonNil(group.Members))
	if err != nil {
		return fmt.Errorf("encode members: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO `groups` (id, name, members, created_at) VALUES (?, ?, ?, ?)",
		group.ID, group.Name, members, group.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert group: %w", err)
	}
	return nil
}

func (s *Store) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	var group models.Group
	var members []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, members, created_at FROM `groups` WHERE id = ?", groupID,
	).Scan(&group.ID, &group.Name, &members, &group.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query group: %w", err)
	}

	if err := json.Unmarshal(members, &group.Members); err != nil {
		return nil, fmt.Errorf("decode members: %w", err)
	}
	return &group, nil
}

func (s *Store) UpdateGroup(ctx context.Context, group *models.Group) error {
	members, err := json.Marshal(nonNil(group.Members))
	if err != nil {
		return fmt.Errorf("encode members: %w", err)
	}

	// RowsAffected is 0 for an unchanged row too, so existence is checked separately.
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, "SELECT 1 FROM `groups` WHERE id = ? FOR UPDATE", group.ID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("group %s: %w", group.ID, storage.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("check group: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE `groups` SET name = ?, members = ? WHERE id = ?",
		group.Name, members, group.ID,
	)
	if err != nil {
		return fmt.Errorf("update group: %w", err)
	}

	return tx.Commit()
}

func (s *Store) ListItems(ctx context.Context, groupID string) ([]models.Item, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT item_name, quantity, assignee FROM items WHERE group_id = ? ORDER BY id", groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	items := []models.Item{}
	for rows.Next() {
		item := models.Item{GroupID: groupID}
		var quantity sql.NullInt64
		if err := rows.Scan(&item.Name, &quantity, &item.Assignee); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		if quantity.Valid {
			item.Quantity = models.IntPtr(int(quantity.Int64))
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return items, nil
}

func (s *Store) UpsertItem(ctx context.Context, item models.Item) error {
	var quantity sql.NullInt64
	if item.Quantity != nil {
		quantity = sql.NullInt64{Int64: int64(*item.Quantity), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO items (group_id, item_name, quantity, assignee)
		VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE quantity = VALUES(quantity), assignee = VALUES(assignee)`,
		item.GroupID, item.Name, quantity, item.Assignee,
	)
	if err != nil {
		return fmt.Errorf("upsert item: %w", err)
	}
	return nil
}

func (s *Store) DeleteItem(ctx context.Context, groupID, name string) error {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM items WHERE group_id = ? AND item_name = ?", groupID, name,
	)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("item %q in group %s: %w", name, groupID, storage.ErrNotFound)
	}
	return nil
}

func nonNil(members []string) []string {
	if members == nil {
		return []string{}
	}
	return members
}
