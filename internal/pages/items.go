package pages

import (
	"errors"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/flosch/pongo2/v6"

	"github.com/mmynk/mochiyoru/internal/coordinator"
	"github.com/mmynk/mochiyoru/internal/models"
)

type option struct {
	Value string
	Label string
}

type itemRow struct {
	Name     string
	Assignee string
	Quantity int // 0 when unset
}

// Share shows the shareable link of the current group.
func (h *Handler) Share(w http.ResponseWriter, r *http.Request) {
	st := h.loadState(r)
	m := h.load(r, st)
	if m.GroupID == "" {
		h.redirect(w, r, st, "/group")
		return
	}
	st.Remember(m.Snapshot())

	h.render(w, r, st, http.StatusOK, "share.html", pongo2.Context{
		"model":    m,
		"shareURL": h.baseURL + "/g/" + m.GroupID,
		"nextURL":  coordinator.NextURL("/items", m, false),
	})
}

// Items shows the item list. A visit without a group creates one first.
func (h *Handler) Items(w http.ResponseWriter, r *http.Request) {
	st := h.loadState(r)
	m := h.load(r, st)
	m = h.coord.EnsureGroup(r.Context(), st, m)
	m = h.coord.LoadItems(r.Context(), st, m)

	h.renderItems(w, r, st, http.StatusOK, m, nil)
}

// ItemsSubmit handles add, assign, delete, edit-members and done.
// A select changed with scripts on posts no action, which means assign.
func (h *Handler) ItemsSubmit(w http.ResponseWriter, r *http.Request) {
	st := h.loadState(r)
	m := h.current(r, st)
	name := strings.TrimSpace(r.PostFormValue("item"))

	var err error
	switch r.PostFormValue("action") {
	case "add":
		m, err = h.coord.AddItem(r.Context(), st, m, name)

	case "", "assign":
		var edit coordinator.ItemEdit
		edit, err = parseItemEdit(r)
		if err == nil {
			m = h.withItem(r, st, m, name)
			m, err = h.coord.UpdateItem(r.Context(), st, m, name, edit)
		}

	case "delete":
		m = h.withItem(r, st, m, name)
		m = h.coord.RemoveItem(r.Context(), st, m, name)

	case "edit-members":
		st.Remember(m.Snapshot())
		st.EditMode = models.EditModeMembers
		h.redirect(w, r, st, "/group")
		return

	case "done":
		st.Remember(m.Snapshot())
		h.redirect(w, r, st, coordinator.NextURL("/summary", m, true))
		return

	default:
		err = errors.New("unknown action")
	}

	if err != nil {
		h.renderItems(w, r, st, http.StatusBadRequest, m, err)
		return
	}
	h.redirect(w, r, st, coordinator.NextURL("/items", m, false))
}

// withItem merges the server rows into m when the session copy lacks the named item.
func (h *Handler) withItem(r *http.Request, st *models.State, m coordinator.Model, name string) coordinator.Model {
	if slices.ContainsFunc(m.Items, func(it models.Item) bool { return it.Name == name }) {
		return m
	}
	return h.coord.LoadItems(r.Context(), st, m)
}

// parseItemEdit reads the assignee and quantity fields. A field missing from
// the form is left unchanged; an empty one clears the value.
func parseItemEdit(r *http.Request) (coordinator.ItemEdit, error) {
	var edit coordinator.ItemEdit
	if err := r.ParseForm(); err != nil {
		return edit, err
	}

	if _, ok := r.PostForm["assignee"]; ok {
		edit.SetAssignee = true
		edit.Assignee = r.PostFormValue("assignee")
	}
	if _, ok := r.PostForm["quantity"]; ok {
		edit.SetQuantity = true
		if raw := r.PostFormValue("quantity"); raw != "" {
			q, err := strconv.Atoi(raw)
			if err != nil {
				return edit, coordinator.ErrInvalidQuantity
			}
			edit.Quantity = &q
		}
	}
	return edit, nil
}

func (h *Handler) renderItems(w http.ResponseWriter, r *http.Request, st *models.State, status int, m coordinator.Model, err error) {
	rows := make([]itemRow, 0, len(m.Items))
	for _, it := range m.Items {
		row := itemRow{Name: it.Name, Assignee: it.Assignee}
		if it.Quantity != nil {
			row.Quantity = *it.Quantity
		}
		rows = append(rows, row)
	}

	assignees := []option{{Value: "", Label: "Choose"}, {Value: models.AssigneeEveryone, Label: "Everyone"}}
	for _, member := range m.Members {
		assignees = append(assignees, option{Value: member, Label: member})
	}

	quantities := make([]int, h.coord.MaxQuantity())
	for i := range quantities {
		quantities[i] = i + 1
	}

	ctx := pongo2.Context{
		"model":      m,
		"rows":       rows,
		"assignees":  assignees,
		"quantities": quantities,
	}
	if err != nil {
		ctx["error"] = err.Error()
	}
	h.render(w, r, st, status, "items.html", ctx)
}
