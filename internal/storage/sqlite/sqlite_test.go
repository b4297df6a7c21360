package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mmynk/mochiyoru/internal/models"
	"github.com/mmynk/mochiyoru/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "mochiyoru-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

func TestSQLiteStore_Groups(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("CreateGroup generates ID and CreatedAt", func(t *testing.T) {
		group := &models.Group{Name: "Trip", Members: []string{"Rik", "Marin"}}

		if err := store.CreateGroup(ctx, group); err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}

		if group.ID == "" {
			t.Error("Expected group ID to be generated")
		}
		if group.CreatedAt == 0 {
			t.Error("Expected CreatedAt to be set")
		}
	})

	t.Run("GetGroup keeps member order", func(t *testing.T) {
		original := &models.Group{Name: "Camp", Members: []string{"Zed", "Amy", "Kai"}}
		if err := store.CreateGroup(ctx, original); err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}

		retrieved, err := store.GetGroup(ctx, original.ID)
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}

		if retrieved.Name != "Camp" {
			t.Errorf("Name mismatch: got %s, want Camp", retrieved.Name)
		}
		if len(retrieved.Members) != 3 {
			t.Fatalf("Members count mismatch: got %d, want 3", len(retrieved.Members))
		}
		for i, want := range original.Members {
			if retrieved.Members[i] != want {
				t.Errorf("Member %d: got %s, want %s", i, retrieved.Members[i], want)
			}
		}
		if retrieved.CreatedAt != original.CreatedAt {
			t.Errorf("CreatedAt mismatch: got %d, want %d", retrieved.CreatedAt, original.CreatedAt)
		}
	})

	t.Run("GetGroup returns ErrNotFound for nonexistent group", func(t *testing.T) {
		_, err := store.GetGroup(ctx, "nonexistent-id")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("UpdateGroup overwrites name and members", func(t *testing.T) {
		group := &models.Group{Name: "Before", Members: []string{"A"}}
		if err := store.CreateGroup(ctx, group); err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}

		err := store.UpdateGroup(ctx, &models.Group{ID: group.ID, Name: "After", Members: []string{"A", "B"}})
		if err != nil {
			t.Fatalf("UpdateGroup failed: %v", err)
		}

		retrieved, err := store.GetGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		if retrieved.Name != "After" {
			t.Errorf("Name not updated: got %s", retrieved.Name)
		}
		if len(retrieved.Members) != 2 {
			t.Errorf("Members not updated: got %v", retrieved.Members)
		}
		if retrieved.CreatedAt != group.CreatedAt {
			t.Errorf("CreatedAt changed: got %d, want %d", retrieved.CreatedAt, group.CreatedAt)
		}
	})

	t.Run("UpdateGroup does not create missing group", func(t *testing.T) {
		err := store.UpdateGroup(ctx, &models.Group{ID: "missing", Name: "X", Members: []string{"A"}})
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}

		if _, err := store.GetGroup(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected group to stay missing, got %v", err)
		}
	})
}

func TestSQLiteStore_Items(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("ListItems returns empty slice for group without items", func(t *testing.T) {
		items, err := store.ListItems(ctx, "empty-group")
		if err != nil {
			t.Fatalf("ListItems failed: %v", err)
		}
		if items == nil {
			t.Error("Expected non-nil empty slice")
		}
		if len(items) != 0 {
			t.Errorf("Expected 0 items, got %d", len(items))
		}
	})

	t.Run("UpsertItem treats names case-sensitively", func(t *testing.T) {
		if err := store.UpsertItem(ctx, models.Item{GroupID: "g-case", Name: "Camera", Assignee: "Rik"}); err != nil {
			t.Fatalf("UpsertItem failed: %v", err)
		}
		if err := store.UpsertItem(ctx, models.Item{GroupID: "g-case", Name: "camera", Assignee: "Marin"}); err != nil {
			t.Fatalf("UpsertItem failed: %v", err)
		}

		items, err := store.ListItems(ctx, "g-case")
		if err != nil {
			t.Fatalf("ListItems failed: %v", err)
		}
		if len(items) != 2 {
			t.Fatalf("Expected 2 items, got %d", len(items))
		}
		if items[0].Assignee != "Rik" {
			t.Errorf("Expected Camera to keep its assignee, got %+v", items[0])
		}
	})

	t.Run("UpsertItem replaces instead of duplicating", func(t *testing.T) {
		if err := store.UpsertItem(ctx, models.Item{GroupID: "g1", Name: "Camera"}); err != nil {
			t.Fatalf("UpsertItem failed: %v", err)
		}
		if err := store.UpsertItem(ctx, models.Item{GroupID: "g1", Name: "Camera", Quantity: models.IntPtr(1), Assignee: "Rik"}); err != nil {
			t.Fatalf("UpsertItem failed: %v", err)
		}

		items, err := store.ListItems(ctx, "g1")
		if err != nil {
			t.Fatalf("ListItems failed: %v", err)
		}
		if len(items) != 1 {
			t.Fatalf("Expected 1 item, got %d", len(items))
		}
		if items[0].Quantity == nil || *items[0].Quantity != 1 {
			t.Errorf("Quantity mismatch: got %v", items[0].Quantity)
		}
		if items[0].Assignee != "Rik" {
			t.Errorf("Assignee mismatch: got %s", items[0].Assignee)
		}
	})

	t.Run("UpsertItem is a whole-row replace", func(t *testing.T) {
		store.UpsertItem(ctx, models.Item{GroupID: "g2", Name: "Tent", Quantity: models.IntPtr(2), Assignee: "Amy"})
		store.UpsertItem(ctx, models.Item{GroupID: "g2", Name: "Tent", Assignee: "Kai"})

		items, err := store.ListItems(ctx, "g2")
		if err != nil {
			t.Fatalf("ListItems failed: %v", err)
		}
		if items[0].Quantity != nil {
			t.Errorf("Expected quantity cleared, got %d", *items[0].Quantity)
		}
	})

	t.Run("ListItems keeps insertion order across updates", func(t *testing.T) {
		for _, name := range []string{"Passport", "Wallet", "Charger"} {
			if err := store.UpsertItem(ctx, models.Item{GroupID: "g3", Name: name}); err != nil {
				t.Fatalf("UpsertItem failed: %v", err)
			}
		}
		store.UpsertItem(ctx, models.Item{GroupID: "g3", Name: "Passport", Assignee: models.AssigneeEveryone})

		items, err := store.ListItems(ctx, "g3")
		if err != nil {
			t.Fatalf("ListItems failed: %v", err)
		}
		want := []string{"Passport", "Wallet", "Charger"}
		for i, name := range want {
			if items[i].Name != name {
				t.Errorf("Position %d: got %s, want %s", i, items[i].Name, name)
			}
		}
	})

	t.Run("Items are scoped by group", func(t *testing.T) {
		store.UpsertItem(ctx, models.Item{GroupID: "g4", Name: "Map"})
		store.UpsertItem(ctx, models.Item{GroupID: "g5", Name: "Map"})

		items, _ := store.ListItems(ctx, "g4")
		if len(items) != 1 {
			t.Errorf("Expected 1 item in g4, got %d", len(items))
		}
	})

	t.Run("DeleteItem removes the row", func(t *testing.T) {
		store.UpsertItem(ctx, models.Item{GroupID: "g6", Name: "Stove"})

		if err := store.DeleteItem(ctx, "g6", "Stove"); err != nil {
			t.Fatalf("DeleteItem failed: %v", err)
		}

		items, _ := store.ListItems(ctx, "g6")
		if len(items) != 0 {
			t.Errorf("Expected item deleted, got %d items", len(items))
		}
	})

	t.Run("DeleteItem returns ErrNotFound for missing item", func(t *testing.T) {
		err := store.DeleteItem(ctx, "g6", "Nothing")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})
}
