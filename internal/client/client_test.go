package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/mochiyoru/internal/api"
	"github.com/mmynk/mochiyoru/internal/coordinator"
	"github.com/mmynk/mochiyoru/internal/models"
	"github.com/mmynk/mochiyoru/internal/service"
	"github.com/mmynk/mochiyoru/internal/storage/sqlite"
)

func setupClient(t *testing.T) *Client {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "test-*.db")
	require.NoError(t, err)
	tmpFile.Close()

	store, err := sqlite.New(tmpFile.Name())
	require.NoError(t, err)

	mux := http.NewServeMux()
	api.NewHTTPHandler(service.NewGroupService(store), service.NewItemService(store)).Register(mux)
	server := httptest.NewServer(mux)

	t.Cleanup(func() {
		server.Close()
		store.Close()
		os.Remove(tmpFile.Name())
	})

	return New(server.URL+"/", nil)
}

func TestClient_Groups(t *testing.T) {
	c := setupClient(t)
	ctx := context.Background()

	id, err := c.CreateGroup(ctx, "Trip", []string{"Rik", "Marin"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	group, err := c.GetGroup(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Trip", group.Name)
	assert.Equal(t, []string{"Rik", "Marin"}, group.Members)
	assert.NotZero(t, group.CreatedAt)

	require.NoError(t, c.UpdateGroup(ctx, id, "Camping", []string{"Rik"}))
	group, err = c.GetGroup(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Camping", group.Name)

	_, err = c.GetGroup(ctx, "missing")
	assert.ErrorIs(t, err, coordinator.ErrNotFound)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "Group not found", apiErr.Message)
}

func TestClient_Items(t *testing.T) {
	c := setupClient(t)
	ctx := context.Background()

	items, err := c.ListItems(ctx, "g1")
	require.NoError(t, err)
	assert.Empty(t, items)

	require.NoError(t, c.SaveItem(ctx, "g1", models.Item{Name: "Sleeping bag"}))
	require.NoError(t, c.SaveItem(ctx, "g1", models.Item{Name: "Sleeping bag", Quantity: models.IntPtr(2), Assignee: models.AssigneeEveryone}))

	items, err = c.ListItems(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, models.Item{GroupID: "g1", Name: "Sleeping bag", Quantity: models.IntPtr(2), Assignee: models.AssigneeEveryone}, items[0])

	require.NoError(t, c.DeleteItem(ctx, "g1", "Sleeping bag"))
	assert.ErrorIs(t, c.DeleteItem(ctx, "g1", "Sleeping bag"), coordinator.ErrNotFound)
}

func TestClient_ValidationError(t *testing.T) {
	c := setupClient(t)

	err := c.SaveItem(context.Background(), "g1", models.Item{})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.NotErrorIs(t, err, coordinator.ErrNotFound)
}

func TestClient_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := New(url, nil).ListItems(context.Background(), "g1")
	assert.Error(t, err)
}
