// Package client calls the group and item JSON API over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmynk/mochiyoru/internal/coordinator"
	"github.com/mmynk/mochiyoru/internal/models"
	"github.com/mmynk/mochiyoru/internal/service"
)

var _ coordinator.Backend = (*Client)(nil)

const defaultTimeout = 10 * time.Second

// APIError is a non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.StatusCode, e.Message)
}

// Unwrap maps 404 to coordinator.ErrNotFound.
func (e *APIError) Unwrap() error {
	if e.StatusCode == http.StatusNotFound {
		return coordinator.ErrNotFound
	}
	return nil
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New returns a client for the API rooted at baseURL. A nil httpClient uses
// one with a 10 second timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

func (c *Client) CreateGroup(ctx context.Context, name string, members []string) (string, error) {
	var resp service.CreateGroupResponse
	err := c.do(ctx, http.MethodPost, "/groups", service.CreateGroupRequest{
		GroupName: name,
		Members:   nonNil(members),
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.GroupId, nil
}

func (c *Client) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	var resp service.GetGroupResponse
	if err := c.do(ctx, http.MethodGet, groupPath(groupID), nil, &resp); err != nil {
		return nil, err
	}

	group := &models.Group{
		ID:      resp.GroupId,
		Name:    resp.GroupName,
		Members: resp.Members,
	}
	if t, err := time.Parse(time.RFC3339, resp.CreatedAt); err == nil {
		group.CreatedAt = t.Unix()
	}
	return group, nil
}

func (c *Client) UpdateGroup(ctx context.Context, groupID, name string, members []string) error {
	return c.do(ctx, http.MethodPost, groupPath(groupID), service.UpdateGroupRequest{
		GroupName: name,
		Members:   nonNil(members),
	}, nil)
}

func (c *Client) ListItems(ctx context.Context, groupID string) ([]models.Item, error) {
	var items []models.Item
	if err := c.do(ctx, http.MethodGet, groupPath(groupID)+"/items", nil, &items); err != nil {
		return nil, err
	}
	for i := range items {
		items[i].GroupID = groupID
	}
	return items, nil
}

// SaveItem sends the full row.
func (c *Client) SaveItem(ctx context.Context, groupID string, item models.Item) error {
	return c.do(ctx, http.MethodPost, groupPath(groupID)+"/items", item, nil)
}

func (c *Client) DeleteItem(ctx context.Context, groupID, name string) error {
	return c.do(ctx, http.MethodDelete, groupPath(groupID)+"/items/"+url.PathEscape(name), nil, nil)
}

func nonNil(members []string) models.MemberList {
	if members == nil {
		return models.MemberList{}
	}
	return models.MemberList(members)
}

func groupPath(groupID string) string {
	return "/groups/" + url.PathEscape(groupID)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var errBody struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&errBody) == nil && errBody.Error != "" {
			apiErr.Message = errBody.Error
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}
