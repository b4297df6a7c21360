package mysql

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"

	"github.com/mmynk/mochiyoru/internal/models"
	"github.com/mmynk/mochiyoru/internal/storage"
)

func getStore(t *testing.T) *Store {
	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		dsn = "root:root@tcp(localhost:3306)/mochiyoru?parseTime=true"
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Skipf("MySQL not available: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("MySQL not available: %v", err)
	}

	store := New(db)
	if err := store.Migrate(context.Background()); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestGroupRoundTrip(t *testing.T) {
	store := getStore(t)
	ctx := context.Background()

	group := &models.Group{Name: "Trip", Members: []string{"Rik", "Marin"}}
	if err := store.CreateGroup(ctx, group); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := store.GetGroup(ctx, group.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Trip" || len(got.Members) != 2 || got.Members[0] != "Rik" {
		t.Errorf("unexpected group: %+v", got)
	}

	// Same values again: must not be reported as missing.
	if err := store.UpdateGroup(ctx, group); err != nil {
		t.Errorf("update unchanged: %v", err)
	}
}

func TestUpdateGroup_NotFound(t *testing.T) {
	store := getStore(t)

	err := store.UpdateGroup(context.Background(), &models.Group{ID: uuid.NewString(), Name: "X"})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpsertItem_NoDuplicates(t *testing.T) {
	store := getStore(t)
	ctx := context.Background()
	groupID := uuid.NewString()

	store.UpsertItem(ctx, models.Item{GroupID: groupID, Name: "Camera"})
	if err := store.UpsertItem(ctx, models.Item{GroupID: groupID, Name: "Camera", Quantity: models.IntPtr(1), Assignee: "Rik"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	items, err := store.ListItems(ctx, groupID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].Assignee != "Rik" || items[0].Quantity == nil || *items[0].Quantity != 1 {
		t.Errorf("unexpected item: %+v", items[0])
	}

	if err := store.DeleteItem(ctx, groupID, "Camera"); err != nil {
		t.Errorf("delete: %v", err)
	}
	if err := store.DeleteItem(ctx, groupID, "Camera"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestUpsertItem_CaseSensitiveNames(t *testing.T) {
	store := getStore(t)
	ctx := context.Background()
	groupID := uuid.NewString()

	if err := store.UpsertItem(ctx, models.Item{GroupID: groupID, Name: "Camera", Assignee: "Rik"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := store.UpsertItem(ctx, models.Item{GroupID: groupID, Name: "camera", Assignee: "Marin"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	items, err := store.ListItems(ctx, groupID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d: %+v", len(items), items)
	}
	if items[0].Name != "Camera" || items[0].Assignee != "Rik" {
		t.Errorf("first row was overwritten: %+v", items[0])
	}

	if err := store.DeleteItem(ctx, groupID, "camera"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	items, _ = store.ListItems(ctx, groupID)
	if len(items) != 1 || items[0].Name != "Camera" {
		t.Errorf("expected only Camera left, got %+v", items)
	}
}
