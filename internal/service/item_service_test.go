package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"

	"github.com/mmynk/mochiyoru/internal/models"
)

func listItems(t *testing.T, items *ItemService, groupID string) []models.Item {
	t.Helper()

	resp, err := items.ListItems(context.Background(), connect.NewRequest(&ListItemsRequest{GroupId: groupID}))
	if err != nil {
		t.Fatalf("ListItems failed: %v", err)
	}
	return resp.Msg.Items
}

func TestListItems_Empty(t *testing.T) {
	_, items := setupServices(t)

	got := listItems(t, items, "group-without-items")
	if got == nil {
		t.Error("expected empty list, got nil")
	}
	if len(got) != 0 {
		t.Errorf("expected 0 items, got %d", len(got))
	}
}

func TestSaveItem_Upsert(t *testing.T) {
	_, items := setupServices(t)
	ctx := context.Background()

	resp, err := items.SaveItem(ctx, connect.NewRequest(&SaveItemRequest{GroupId: "g", Name: "Camera"}))
	if err != nil {
		t.Fatalf("SaveItem failed: %v", err)
	}
	if resp.Msg.Message != "saved" {
		t.Errorf("message: expected 'saved', got '%s'", resp.Msg.Message)
	}

	got := listItems(t, items, "g")
	if len(got) != 1 || got[0].Quantity != nil || got[0].Assignee != "" {
		t.Fatalf("unexpected items after first save: %+v", got)
	}

	_, err = items.SaveItem(ctx, connect.NewRequest(&SaveItemRequest{
		GroupId:  "g",
		Name:     "Camera",
		Quantity: models.IntPtr(1),
		Assignee: "Rik",
	}))
	if err != nil {
		t.Fatalf("SaveItem failed: %v", err)
	}

	got = listItems(t, items, "g")
	if len(got) != 1 {
		t.Fatalf("expected 1 row, got %d", len(got))
	}
	if got[0].Quantity == nil || *got[0].Quantity != 1 || got[0].Assignee != "Rik" {
		t.Errorf("expected overwritten row, got %+v", got[0])
	}
}

func TestSaveItem_Validation(t *testing.T) {
	_, items := setupServices(t)
	ctx := context.Background()

	_, err := items.SaveItem(ctx, connect.NewRequest(&SaveItemRequest{GroupId: "g"}))
	assertCode(t, err, connect.CodeInvalidArgument)

	_, err = items.SaveItem(ctx, connect.NewRequest(&SaveItemRequest{GroupId: "g", Name: "Tent", Quantity: models.IntPtr(0)}))
	assertCode(t, err, connect.CodeInvalidArgument)
}

func TestDeleteItem(t *testing.T) {
	_, items := setupServices(t)
	ctx := context.Background()

	items.SaveItem(ctx, connect.NewRequest(&SaveItemRequest{GroupId: "g", Name: "Stove"}))

	resp, err := items.DeleteItem(ctx, connect.NewRequest(&DeleteItemRequest{GroupId: "g", Name: "Stove"}))
	if err != nil {
		t.Fatalf("DeleteItem failed: %v", err)
	}
	if resp.Msg.Message != "deleted" {
		t.Errorf("message: expected 'deleted', got '%s'", resp.Msg.Message)
	}

	if got := listItems(t, items, "g"); len(got) != 0 {
		t.Errorf("expected no items, got %d", len(got))
	}

	_, err = items.DeleteItem(ctx, connect.NewRequest(&DeleteItemRequest{GroupId: "g", Name: "Stove"}))
	assertCode(t, err, connect.CodeNotFound)
}
