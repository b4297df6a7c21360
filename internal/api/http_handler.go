// Package api serves the group and item services as a JSON-over-HTTP API.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/mochiyoru/internal/service"
)

type HTTPHandler struct {
	groups *service.GroupService
	items  *service.ItemService
}

type errorResponse struct {
	Error string `json:"error"`
}

// itemHTTPRequest is the body of POST /groups/{groupId}/items.
type itemHTTPRequest struct {
	Name     string `json:"name"`
	Quantity *int   `json:"quantity"`
	Assignee string `json:"assignee"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func NewHTTPHandler(groups *service.GroupService, items *service.ItemService) *HTTPHandler {
	return &HTTPHandler{groups: groups, items: items}
}

// Register mounts every route on mux.
func (h *HTTPHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/health", h.HealthCheck)
	mux.HandleFunc("/groups", h.Groups)
	mux.HandleFunc("/groups/{groupId}", h.Group)
	mux.HandleFunc("/groups/{groupId}/items", h.Items)
	mux.HandleFunc("/groups/{groupId}/items/{itemName}", h.Item)
}

// Groups handles POST /groups.
func (h *HTTPHandler) Groups(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req service.CreateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: wireMessage(service.ErrInvalidPayload)})
		return
	}

	resp, err := h.groups.CreateGroup(r.Context(), connect.NewRequest(&req))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp.Msg)
}

// Group handles GET (read) and POST/PUT (update) on /groups/{groupId}.
func (h *HTTPHandler) Group(w http.ResponseWriter, r *http.Request) {
	groupID := r.PathValue("groupId")

	switch r.Method {
	case http.MethodGet:
		resp, err := h.groups.GetGroup(r.Context(), connect.NewRequest(&service.GetGroupRequest{GroupId: groupID}))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp.Msg)

	case http.MethodPost, http.MethodPut:
		var req service.UpdateGroupRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: wireMessage(service.ErrInvalidPayload)})
			return
		}
		// The path is authoritative; a groupId in the body is ignored.
		req.GroupId = groupID

		resp, err := h.groups.UpdateGroup(r.Context(), connect.NewRequest(&req))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp.Msg)

	default:
		methodNotAllowed(w)
	}
}

// Items handles GET (list) and POST (upsert) on /groups/{groupId}/items.
func (h *HTTPHandler) Items(w http.ResponseWriter, r *http.Request) {
	groupID := r.PathValue("groupId")

	switch r.Method {
	case http.MethodGet:
		resp, err := h.items.ListItems(r.Context(), connect.NewRequest(&service.ListItemsRequest{GroupId: groupID}))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp.Msg.Items)

	case http.MethodPost:
		var body itemHTTPRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: wireMessage(service.ErrInvalidPayload)})
			return
		}

		resp, err := h.items.SaveItem(r.Context(), connect.NewRequest(&service.SaveItemRequest{
			GroupId:  groupID,
			Name:     body.Name,
			Quantity: body.Quantity,
			Assignee: body.Assignee,
		}))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, messageResponse{Message: resp.Msg.Message})

	default:
		methodNotAllowed(w)
	}
}

// Item handles DELETE /groups/{groupId}/items/{itemName}.
func (h *HTTPHandler) Item(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		methodNotAllowed(w)
		return
	}

	resp, err := h.items.DeleteItem(r.Context(), connect.NewRequest(&service.DeleteItemRequest{
		GroupId: r.PathValue("groupId"),
		Name:    r.PathValue("itemName"),
	}))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: resp.Msg.Message})
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HTTPStatus maps a Connect error code to the HTTP status used by this API.
func HTTPStatus(code connect.Code) int {
	switch code {
	case connect.CodeInvalidArgument:
		return http.StatusBadRequest
	case connect.CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// wireMessages are the error bodies the group endpoints have always sent.
var wireMessages = map[error]string{
	service.ErrInvalidPayload:  "Invalid payload",
	service.ErrGroupIDRequired: "Group ID is required",
	service.ErrGroupNotFound:   "Group not found",
	service.ErrGroupCreate:     "Failed to create group",
	service.ErrGroupUpdate:     "Failed to update group",
	service.ErrInternal:        "Internal server error",
}

func wireMessage(err error) string {
	for sentinel, msg := range wireMessages {
		if errors.Is(err, sentinel) {
			return msg
		}
	}
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return connectErr.Message()
	}
	return err.Error()
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, HTTPStatus(connect.CodeOf(err)), errorResponse{Error: wireMessage(err)})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "Method not allowed"})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Warn("Failed to encode response", "error", err)
	}
}
