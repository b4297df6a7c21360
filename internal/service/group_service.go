package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/mochiyoru/internal/models"
	"github.com/mmynk/mochiyoru/internal/storage"
)

var (
	ErrInvalidPayload  = errors.New("invalid payload")
	ErrGroupIDRequired = errors.New("group ID is required")
	ErrGroupNotFound   = errors.New("group not found")
	ErrGroupCreate     = errors.New("failed to create group")
	ErrGroupUpdate     = errors.New("failed to update group")
	ErrInternal        = errors.New("internal server error")
)

const msgGroupUpdated = "Group updated successfully"

// GroupService creates, reads and updates groups.
type GroupService struct {
	store storage.GroupStore
}

// NewGroupService creates a new GroupService with the given storage backend.
func NewGroupService(store storage.GroupStore) *GroupService {
	return &GroupService{store: store}
}

// CreateGroup validates the payload shape, stores a new group and returns its ID.
// Only the shape is checked here: a non-empty name and a member list.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[CreateGroupRequest]) (*connect.Response[CreateGroupResponse], error) {
	slog.Info("CreateGroup request received",
		"name", req.Msg.GroupName,
		"members_count", len(req.Msg.Members),
	)

	if req.Msg.GroupName == "" || req.Msg.Members == nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, ErrInvalidPayload)
	}

	group := &models.Group{
		Name:    req.Msg.GroupName,
		Members: []string(req.Msg.Members),
	}

	// Save to storage (generates ID and CreatedAt)
	if err := s.store.CreateGroup(ctx, group); err != nil {
		slog.Error("CreateGroup failed", "error", err)
		return nil, connect.NewError(connect.CodeInternal, ErrGroupCreate)
	}

	slog.Info("Group created", "group_id", group.ID)

	return connect.NewResponse(&CreateGroupResponse{GroupId: group.ID}), nil
}

// GetGroup retrieves a group by ID.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[GetGroupRequest]) (*connect.Response[GetGroupResponse], error) {
	slog.Info("GetGroup request received", "group_id", req.Msg.GroupId)

	if req.Msg.GroupId == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, ErrGroupIDRequired)
	}

	group, err := s.store.GetGroup(ctx, req.Msg.GroupId)
	if errors.Is(err, storage.ErrNotFound) {
		slog.Warn("GetGroup: group not found", "group_id", req.Msg.GroupId)
		return nil, connect.NewError(connect.CodeNotFound, ErrGroupNotFound)
	}
	if err != nil {
		slog.Error("GetGroup failed", "group_id", req.Msg.GroupId, "error", err)
		return nil, connect.NewError(connect.CodeInternal, ErrInternal)
	}

	slog.Info("GetGroup successful", "group_id", group.ID, "name", group.Name)

	return connect.NewResponse(&GetGroupResponse{
		GroupId:   group.ID,
		GroupName: group.Name,
		Members:   nonNilMembers(group.Members),
		CreatedAt: time.Unix(group.CreatedAt, 0).UTC().Format(time.RFC3339),
	}), nil
}

// UpdateGroup overwrites the name and members of an existing group.
// It never creates a group: an unknown ID is CodeNotFound.
func (s *GroupService) UpdateGroup(ctx context.Context, req *connect.Request[UpdateGroupRequest]) (*connect.Response[UpdateGroupResponse], error) {
	slog.Info("UpdateGroup request received",
		"group_id", req.Msg.GroupId,
		"name", req.Msg.GroupName,
		"members_count", len(req.Msg.Members),
	)

	if req.Msg.GroupId == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, ErrGroupIDRequired)
	}
	if req.Msg.GroupName == "" || req.Msg.Members == nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, ErrInvalidPayload)
	}

	group := &models.Group{
		ID:      req.Msg.GroupId,
		Name:    req.Msg.GroupName,
		Members: []string(req.Msg.Members),
	}

	err := s.store.UpdateGroup(ctx, group)
	if errors.Is(err, storage.ErrNotFound) {
		slog.Warn("UpdateGroup: group not found", "group_id", group.ID)
		return nil, connect.NewError(connect.CodeNotFound, ErrGroupNotFound)
	}
	if err != nil {
		slog.Error("UpdateGroup failed", "group_id", group.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, ErrGroupUpdate)
	}

	slog.Info("Group updated", "group_id", group.ID)

	return connect.NewResponse(&UpdateGroupResponse{
		Message:   msgGroupUpdated,
		GroupId:   group.ID,
		GroupName: group.Name,
		Members:   nonNilMembers(group.Members),
	}), nil
}

func nonNilMembers(members []string) []string {
	if members == nil {
		return []string{}
	}
	return members
}
