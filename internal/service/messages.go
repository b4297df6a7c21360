package service

import "github.com/mmynk/mochiyoru/internal/models"

// Request and response messages shared by the REST and Connect surfaces.
// Field names follow the JSON API (camelCase).

type CreateGroupRequest struct {
	GroupName string            `json:"groupName"`
	Members   models.MemberList `json:"members"`
}

type CreateGroupResponse struct {
	GroupId string `json:"groupId"`
}

type GetGroupRequest struct {
	GroupId string `json:"groupId"`
}

type GetGroupResponse struct {
	GroupId   string   `json:"groupId"`
	GroupName string   `json:"groupName"`
	Members   []string `json:"members"`
	CreatedAt string   `json:"createdAt"`
}

type UpdateGroupRequest struct {
	GroupId   string            `json:"groupId"`
	GroupName string            `json:"groupName"`
	Members   models.MemberList `json:"members"`
}

type UpdateGroupResponse struct {
	Message   string   `json:"message"`
	GroupId   string   `json:"groupId"`
	GroupName string   `json:"groupName"`
	Members   []string `json:"members"`
}

type ListItemsRequest struct {
	GroupId string `json:"groupId"`
}

type ListItemsResponse struct {
	Items []models.Item `json:"items"`
}

// SaveItemRequest carries the full row; omitted fields are stored as unset.
type SaveItemRequest struct {
	GroupId  string `json:"groupId"`
	Name     string `json:"name"`
	Quantity *int   `json:"quantity"`
	Assignee string `json:"assignee"`
}

type SaveItemResponse struct {
	Message string `json:"message"`
}

type DeleteItemRequest struct {
	GroupId string `json:"groupId"`
	Name    string `json:"name"`
}

type DeleteItemResponse struct {
	Message string `json:"message"`
}
