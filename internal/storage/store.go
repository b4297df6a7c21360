// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/mochiyoru/internal/models"
)

// ErrNotFound is returned when the requested group or item does not exist.
var ErrNotFound = errors.New("not found")

// GroupStore is the group table: one row per group, keyed by group ID.
type GroupStore interface {
	// CreateGroup persists a new group.
	// The group.ID and group.CreatedAt fields are populated by the store when empty.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group by its ID.
	// Returns ErrNotFound if the group does not exist.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// UpdateGroup overwrites the name and members of an existing group.
	// Returns ErrNotFound if the group does not exist; it never creates one.
	UpdateGroup(ctx context.Context, group *models.Group) error
}

// ItemStore is the item table: one row per (group ID, item name).
type ItemStore interface {
	// ListItems returns all items of a group in insertion order.
	// A group without items (or an unknown group) yields an empty slice.
	ListItems(ctx context.Context, groupID string) ([]models.Item, error)

	// UpsertItem inserts the item or replaces quantity and assignee of the
	// existing row with the same (GroupID, Name). It is a whole-row replace.
	UpsertItem(ctx context.Context, item models.Item) error

	// DeleteItem removes one item.
	// Returns ErrNotFound if no such item exists.
	DeleteItem(ctx context.Context, groupID, name string) error
}

// Store defines the interface for all storage operations.
// This abstraction allows swapping storage backends (SQLite, MySQL)
// without changing the service layer.
type Store interface {
	GroupStore
	ItemStore

	// Close releases any resources held by the store.
	Close() error
}
