package coordinator

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/mmynk/mochiyoru/internal/models"
)

var errUnavailable = errors.New("backend unavailable")

// fakeBackend is an in-memory Backend. Setting down makes every call fail.
type fakeBackend struct {
	mu      sync.Mutex
	down    bool
	nextID  int
	groups  map[string]*models.Group
	items   map[string][]models.Item
	saved   []models.Item
	deleted []string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		groups: make(map[string]*models.Group),
		items:  make(map[string][]models.Item),
	}
}

func (f *fakeBackend) CreateGroup(ctx context.Context, name string, members []string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return "", errUnavailable
	}
	f.nextID++
	id := fmt.Sprintf("g%d", f.nextID)
	f.groups[id] = &models.Group{ID: id, Name: name, Members: slices.Clone(members)}
	return id, nil
}

func (f *fakeBackend) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return nil, errUnavailable
	}
	g, ok := f.groups[groupID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *g
	return &cp, nil
}

func (f *fakeBackend) UpdateGroup(ctx context.Context, groupID, name string, members []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return errUnavailable
	}
	g, ok := f.groups[groupID]
	if !ok {
		return ErrNotFound
	}
	g.Name = name
	g.Members = slices.Clone(members)
	return nil
}

func (f *fakeBackend) ListItems(ctx context.Context, groupID string) ([]models.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return nil, errUnavailable
	}
	return slices.Clone(f.items[groupID]), nil
}

func (f *fakeBackend) SaveItem(ctx context.Context, groupID string, item models.Item) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, item)
	if f.down {
		return errUnavailable
	}
	list := f.items[groupID]
	for i := range list {
		if list[i].Name == item.Name {
			list[i] = item
			return nil
		}
	}
	f.items[groupID] = append(list, item)
	return nil
}

func (f *fakeBackend) DeleteItem(ctx context.Context, groupID, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, name)
	if f.down {
		return errUnavailable
	}
	list := f.items[groupID]
	for i := range list {
		if list[i].Name == name {
			f.items[groupID] = slices.Delete(list, i, i+1)
			return nil
		}
	}
	return ErrNotFound
}
