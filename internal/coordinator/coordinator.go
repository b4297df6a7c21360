package coordinator

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mmynk/mochiyoru/internal/models"
)

// ErrNotFound is returned by a Backend when the group or item does not exist.
var ErrNotFound = errors.New("not found")

// Backend is the group and item API as seen from the pages.
type Backend interface {
	CreateGroup(ctx context.Context, name string, members []string) (string, error)
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)
	UpdateGroup(ctx context.Context, groupID, name string, members []string) error
	ListItems(ctx context.Context, groupID string) ([]models.Item, error)
	SaveItem(ctx context.Context, groupID string, item models.Item) error
	DeleteItem(ctx context.Context, groupID, name string) error
}

// Notices shown after a background call failed.
const (
	noticeCreateFailed = "The group could not be saved to the server. You can keep going, but the share link will not work."
	noticeUpdateFailed = "Your changes to the group could not be saved to the server."
	noticeSaveFailed   = "An item could not be saved to the server."
	noticeDeleteFailed = "An item could not be removed on the server."
)

type Options struct {
	DefaultGroupName string
	MaxQuantity      int
}

// Coordinator applies page actions to a Model and the backend.
//
// Every mutating method stores the resulting snapshot in the given State and
// queues a notice there when a backend call fails. Local changes are never
// rolled back.
type Coordinator struct {
	backend Backend
	opts    Options
	newID   func() string
}

// ItemEdit describes a change to one item. Fields with Set* false are kept.
type ItemEdit struct {
	SetAssignee bool
	Assignee    string
	SetQuantity bool
	Quantity    *int
}

func New(backend Backend, opts Options) *Coordinator {
	if opts.MaxQuantity <= 0 {
		opts.MaxQuantity = 10
	}
	return &Coordinator{
		backend: backend,
		opts:    opts,
		newID:   func() string { return FallbackID(time.Now()) },
	}
}

func (c *Coordinator) Defaults() Defaults {
	return Defaults{GroupName: c.opts.DefaultGroupName}
}

func (c *Coordinator) MaxQuantity() int {
	return c.opts.MaxQuantity
}

// SubmitGroup validates the group and saves it.
//
// In edit mode the known group is updated; a failed update becomes a notice.
// Otherwise a new group is created, dropping any items carried over, and a
// failed create falls back to a local ID.
func (c *Coordinator) SubmitGroup(ctx context.Context, st *models.State, m Model, editing bool) (Model, error) {
	if err := ValidateGroup(m.GroupName, m.Members); err != nil {
		return m, err
	}

	if editing && m.GroupID != "" {
		if err := c.backend.UpdateGroup(ctx, m.GroupID, m.GroupName, m.Members); err != nil {
			slog.Warn("Group update failed", "group_id", m.GroupID, "error", err)
			st.Notify(models.NoticeWarning, noticeUpdateFailed)
		}
	} else {
		m.GroupID = c.createGroup(ctx, st, m.GroupName, m.Members)
		m.Items = []models.Item{}
	}

	st.Remember(m.Snapshot())
	return m, nil
}

// EnsureGroup creates the group when m has no ID yet.
func (c *Coordinator) EnsureGroup(ctx context.Context, st *models.State, m Model) Model {
	if m.GroupID == "" {
		m.GroupID = c.createGroup(ctx, st, m.GroupName, m.Members)
	}
	st.Remember(m.Snapshot())
	return m
}

func (c *Coordinator) createGroup(ctx context.Context, st *models.State, name string, members []string) string {
	id, err := c.backend.CreateGroup(ctx, name, members)
	if err == nil && id != "" {
		return id
	}

	id = c.newID()
	slog.Warn("Group creation failed, continuing with a local ID", "group_id", id, "error", err)
	st.Notify(models.NoticeWarning, noticeCreateFailed)
	return id
}

// LoadItems refreshes m.Items from the backend.
//
// Any failure, including an unknown group, is treated as an empty server list.
// Server rows come first; local rows the server does not have yet are kept after them.
func (c *Coordinator) LoadItems(ctx context.Context, st *models.State, m Model) Model {
	var remote []models.Item
	if m.GroupID != "" {
		items, err := c.backend.ListItems(ctx, m.GroupID)
		if err != nil {
			slog.Warn("Listing items failed, treating as empty", "group_id", m.GroupID, "error", err)
		} else {
			remote = items
		}
	}

	m.Items = MergeItems(remote, m.Items)
	st.Remember(m.Snapshot())
	return m
}

// MergeItems returns remote followed by the local rows whose names remote lacks.
func MergeItems(remote, local []models.Item) []models.Item {
	out := make([]models.Item, 0, len(remote)+len(local))
	out = append(out, remote...)
	for _, it := range local {
		if indexOf(remote, it.Name) < 0 {
			out = append(out, it)
		}
	}
	return out
}

// AddItem appends an unassigned item and saves it.
func (c *Coordinator) AddItem(ctx context.Context, st *models.State, m Model, name string) (Model, error) {
	if err := ValidateItemName(name, m.Items); err != nil {
		return m, err
	}

	item := models.Item{Name: name}
	m.Items = append(slices.Clone(m.Items), item)
	st.Remember(m.Snapshot())

	c.saveItem(ctx, st, m.GroupID, item)
	return m, nil
}

// UpdateItem merges edit into the named item and saves the full row,
// since the backend replaces rows as a whole.
func (c *Coordinator) UpdateItem(ctx context.Context, st *models.State, m Model, name string, edit ItemEdit) (Model, error) {
	i := indexOf(m.Items, name)
	if i < 0 {
		return m, ErrUnknownItem
	}

	item := m.Items[i]
	if edit.SetAssignee {
		item.Assignee = edit.Assignee
	}
	if edit.SetQuantity {
		item.Quantity = edit.Quantity
	}
	if err := ValidateAssignment(item.Assignee, item.Quantity, m.Members, c.opts.MaxQuantity); err != nil {
		return m, err
	}

	m.Items = slices.Clone(m.Items)
	m.Items[i] = item
	st.Remember(m.Snapshot())

	c.saveItem(ctx, st, m.GroupID, item)
	return m, nil
}

func (c *Coordinator) saveItem(ctx context.Context, st *models.State, groupID string, item models.Item) {
	if err := c.backend.SaveItem(ctx, groupID, item); err != nil {
		slog.Warn("Saving item failed", "group_id", groupID, "name", item.Name, "error", err)
		st.Notify(models.NoticeWarning, noticeSaveFailed)
	}
}

// RemoveItem drops the named item locally and deletes it on the backend.
// An item the backend never had is not a failure.
func (c *Coordinator) RemoveItem(ctx context.Context, st *models.State, m Model, name string) Model {
	i := indexOf(m.Items, name)
	if i < 0 {
		return m
	}

	m.Items = slices.Delete(slices.Clone(m.Items), i, i+1)
	st.Remember(m.Snapshot())

	err := c.backend.DeleteItem(ctx, m.GroupID, name)
	if err != nil && !errors.Is(err, ErrNotFound) {
		slog.Warn("Deleting item failed", "group_id", m.GroupID, "name", name, "error", err)
		st.Notify(models.NoticeWarning, noticeDeleteFailed)
	}
	return m
}

// RenameGroup changes the group name and saves the group.
func (c *Coordinator) RenameGroup(ctx context.Context, st *models.State, m Model, name string) (Model, error) {
	if name == "" {
		return m, ErrEmptyGroupName
	}

	m.GroupName = name
	st.Remember(m.Snapshot())

	if m.GroupID == "" {
		return m, nil
	}
	if err := c.backend.UpdateGroup(ctx, m.GroupID, m.GroupName, m.Members); err != nil {
		slog.Warn("Group rename failed", "group_id", m.GroupID, "error", err)
		st.Notify(models.NoticeWarning, noticeUpdateFailed)
	}
	return m, nil
}

// LoadSummary fetches the group and its items concurrently. Whatever the
// backend returns replaces the snapshot values; failed calls keep them.
func (c *Coordinator) LoadSummary(ctx context.Context, st *models.State, m Model) Model {
	if m.GroupID == "" {
		return m
	}

	var (
		g        errgroup.Group
		group    *models.Group
		items    []models.Item
		groupErr error
		itemsErr error
	)
	g.Go(func() error {
		group, groupErr = c.backend.GetGroup(ctx, m.GroupID)
		return groupErr
	})
	g.Go(func() error {
		items, itemsErr = c.backend.ListItems(ctx, m.GroupID)
		return itemsErr
	})
	if err := g.Wait(); err != nil {
		slog.Warn("Summary partly loaded from the snapshot", "group_id", m.GroupID, "error", err)
	}

	if groupErr == nil {
		m.GroupName = group.Name
		m.Members = slices.Clone(group.Members)
	}
	if itemsErr == nil {
		m.Items = items
	}

	st.Remember(m.Snapshot())
	return m
}

// OpenGroup loads a group and its items from the backend into the session,
// as when following a share link. It returns the backend error, which wraps
// ErrNotFound for an unknown group.
func (c *Coordinator) OpenGroup(ctx context.Context, st *models.State, groupID string) (Model, error) {
	group, err := c.backend.GetGroup(ctx, groupID)
	if err != nil {
		return Model{}, err
	}

	u := URLState{GroupID: group.ID, GroupName: group.Name, Members: group.Members}
	m := Reconcile(u, SnapshotFor(st, group.ID), c.Defaults())
	return c.LoadItems(ctx, st, m), nil
}
