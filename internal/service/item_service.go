package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/mochiyoru/internal/models"
	"github.com/mmynk/mochiyoru/internal/storage"
)

var (
	ErrItemNameRequired = errors.New("item name required")
	ErrInvalidQuantity  = errors.New("quantity must be a positive integer")
	ErrItemNotFound     = errors.New("item not found")
)

const (
	msgSaved   = "saved"
	msgDeleted = "deleted"
)

// ItemService lists, saves and deletes the items of a group.
// It does not check that the group exists.
type ItemService struct {
	store storage.ItemStore
}

// NewItemService creates a new ItemService with the given storage backend.
func NewItemService(store storage.ItemStore) *ItemService {
	return &ItemService{store: store}
}

// ListItems returns every item of the group. No items is an empty list, not an error.
func (s *ItemService) ListItems(ctx context.Context, req *connect.Request[ListItemsRequest]) (*connect.Response[ListItemsResponse], error) {
	groupID := req.Msg.GroupId
	slog.Info("ListItems request received", "group_id", groupID)

	if groupID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, ErrGroupIDRequired)
	}

	items, err := s.store.ListItems(ctx, groupID)
	if err != nil {
		slog.Error("ListItems failed", "group_id", groupID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, ErrInternal)
	}
	if items == nil {
		items = []models.Item{}
	}

	slog.Info("ListItems successful", "group_id", groupID, "count", len(items))

	return connect.NewResponse(&ListItemsResponse{Items: items}), nil
}

// SaveItem upserts one item keyed by (group, name).
// The stored row is replaced as a whole: omitted quantity or assignee are stored as unset.
func (s *ItemService) SaveItem(ctx context.Context, req *connect.Request[SaveItemRequest]) (*connect.Response[SaveItemResponse], error) {
	msg := req.Msg
	slog.Info("SaveItem request received",
		"group_id", msg.GroupId,
		"name", msg.Name,
		"quantity", msg.Quantity,
		"assignee", msg.Assignee,
	)

	if msg.GroupId == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, ErrGroupIDRequired)
	}
	if msg.Name == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, ErrItemNameRequired)
	}
	if msg.Quantity != nil && *msg.Quantity < 1 {
		return nil, connect.NewError(connect.CodeInvalidArgument, ErrInvalidQuantity)
	}

	item := models.Item{
		GroupID:  msg.GroupId,
		Name:     msg.Name,
		Quantity: msg.Quantity,
		Assignee: msg.Assignee,
	}
	if err := s.store.UpsertItem(ctx, item); err != nil {
		slog.Error("SaveItem failed", "group_id", msg.GroupId, "name", msg.Name, "error", err)
		return nil, connect.NewError(connect.CodeInternal, ErrInternal)
	}

	slog.Info("Item saved", "group_id", msg.GroupId, "name", msg.Name)

	return connect.NewResponse(&SaveItemResponse{Message: msgSaved}), nil
}

// DeleteItem removes one item.
func (s *ItemService) DeleteItem(ctx context.Context, req *connect.Request[DeleteItemRequest]) (*connect.Response[DeleteItemResponse], error) {
	msg := req.Msg
	slog.Info("DeleteItem request received", "group_id", msg.GroupId, "name", msg.Name)

	if msg.GroupId == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, ErrGroupIDRequired)
	}
	if msg.Name == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, ErrItemNameRequired)
	}

	err := s.store.DeleteItem(ctx, msg.GroupId, msg.Name)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, connect.NewError(connect.CodeNotFound, ErrItemNotFound)
	}
	if err != nil {
		slog.Error("DeleteItem failed", "group_id", msg.GroupId, "name", msg.Name, "error", err)
		return nil, connect.NewError(connect.CodeInternal, ErrInternal)
	}

	slog.Info("Item deleted", "group_id", msg.GroupId, "name", msg.Name)

	return connect.NewResponse(&DeleteItemResponse{Message: msgDeleted}), nil
}
