// Package rpc exposes the group and item services as Connect procedures.
//
// Messages are plain Go structs, so the default protobuf codecs are replaced by
// a JSON codec registered under the "json" name (Content-Type application/json).
package rpc

import (
	"context"
	"encoding/json"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/mochiyoru/internal/service"
)

const (
	GroupServiceName = "mochiyoru.v1.GroupService"
	ItemServiceName  = "mochiyoru.v1.ItemService"
)

const (
	CreateGroupProcedure = "/" + GroupServiceName + "/CreateGroup"
	GetGroupProcedure    = "/" + GroupServiceName + "/GetGroup"
	UpdateGroupProcedure = "/" + GroupServiceName + "/UpdateGroup"
	ListItemsProcedure   = "/" + ItemServiceName + "/ListItems"
	SaveItemProcedure    = "/" + ItemServiceName + "/SaveItem"
	DeleteItemProcedure  = "/" + ItemServiceName + "/DeleteItem"
)

type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// Codec returns the option that installs the JSON codec on a handler or client.
func Codec() connect.Option {
	return connect.WithCodec(jsonCodec{})
}

// NewGroupServiceHandler builds an HTTP handler for GroupService and returns the
// path prefix it should be mounted on.
func NewGroupServiceHandler(svc *service.GroupService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{Codec()}, opts...)

	mux := http.NewServeMux()
	mux.Handle(CreateGroupProcedure, connect.NewUnaryHandler(CreateGroupProcedure, svc.CreateGroup, opts...))
	mux.Handle(GetGroupProcedure, connect.NewUnaryHandler(GetGroupProcedure, svc.GetGroup, opts...))
	mux.Handle(UpdateGroupProcedure, connect.NewUnaryHandler(UpdateGroupProcedure, svc.UpdateGroup, opts...))

	return "/" + GroupServiceName + "/", mux
}

// NewItemServiceHandler builds an HTTP handler for ItemService and returns the
// path prefix it should be mounted on.
func NewItemServiceHandler(svc *service.ItemService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{Codec()}, opts...)

	mux := http.NewServeMux()
	mux.Handle(ListItemsProcedure, connect.NewUnaryHandler(ListItemsProcedure, svc.ListItems, opts...))
	mux.Handle(SaveItemProcedure, connect.NewUnaryHandler(SaveItemProcedure, svc.SaveItem, opts...))
	mux.Handle(DeleteItemProcedure, connect.NewUnaryHandler(DeleteItemProcedure, svc.DeleteItem, opts...))

	return "/" + ItemServiceName + "/", mux
}

// GroupServiceClient calls GroupService procedures.
type GroupServiceClient struct {
	createGroup *connect.Client[service.CreateGroupRequest, service.CreateGroupResponse]
	getGroup    *connect.Client[service.GetGroupRequest, service.GetGroupResponse]
	updateGroup *connect.Client[service.UpdateGroupRequest, service.UpdateGroupResponse]
}

func NewGroupServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *GroupServiceClient {
	opts = append([]connect.ClientOption{Codec()}, opts...)
	return &GroupServiceClient{
		createGroup: connect.NewClient[service.CreateGroupRequest, service.CreateGroupResponse](httpClient, baseURL+CreateGroupProcedure, opts...),
		getGroup:    connect.NewClient[service.GetGroupRequest, service.GetGroupResponse](httpClient, baseURL+GetGroupProcedure, opts...),
		updateGroup: connect.NewClient[service.UpdateGroupRequest, service.UpdateGroupResponse](httpClient, baseURL+UpdateGroupProcedure, opts...),
	}
}

func (c *GroupServiceClient) CreateGroup(ctx context.Context, req *connect.Request[service.CreateGroupRequest]) (*connect.Response[service.CreateGroupResponse], error) {
	return c.createGroup.CallUnary(ctx, req)
}

func (c *GroupServiceClient) GetGroup(ctx context.Context, req *connect.Request[service.GetGroupRequest]) (*connect.Response[service.GetGroupResponse], error) {
	return c.getGroup.CallUnary(ctx, req)
}

func (c *GroupServiceClient) UpdateGroup(ctx context.Context, req *connect.Request[service.UpdateGroupRequest]) (*connect.Response[service.UpdateGroupResponse], error) {
	return c.updateGroup.CallUnary(ctx, req)
}

// ItemServiceClient calls ItemService procedures.
type ItemServiceClient struct {
	listItems  *connect.Client[service.ListItemsRequest, service.ListItemsResponse]
	saveItem   *connect.Client[service.SaveItemRequest, service.SaveItemResponse]
	deleteItem *connect.Client[service.DeleteItemRequest, service.DeleteItemResponse]
}

func NewItemServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *ItemServiceClient {
	opts = append([]connect.ClientOption{Codec()}, opts...)
	return &ItemServiceClient{
		listItems:  connect.NewClient[service.ListItemsRequest, service.ListItemsResponse](httpClient, baseURL+ListItemsProcedure, opts...),
		saveItem:   connect.NewClient[service.SaveItemRequest, service.SaveItemResponse](httpClient, baseURL+SaveItemProcedure, opts...),
		deleteItem: connect.NewClient[service.DeleteItemRequest, service.DeleteItemResponse](httpClient, baseURL+DeleteItemProcedure, opts...),
	}
}

func (c *ItemServiceClient) ListItems(ctx context.Context, req *connect.Request[service.ListItemsRequest]) (*connect.Response[service.ListItemsResponse], error) {
	return c.listItems.CallUnary(ctx, req)
}

func (c *ItemServiceClient) SaveItem(ctx context.Context, req *connect.Request[service.SaveItemRequest]) (*connect.Response[service.SaveItemResponse], error) {
	return c.saveItem.CallUnary(ctx, req)
}

func (c *ItemServiceClient) DeleteItem(ctx context.Context, req *connect.Request[service.DeleteItemRequest]) (*connect.Response[service.DeleteItemResponse], error) {
	return c.deleteItem.CallUnary(ctx, req)
}
