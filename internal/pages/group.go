package pages

import (
	"net/http"
	"slices"
	"strings"

	"github.com/flosch/pongo2/v6"

	"github.com/mmynk/mochiyoru/internal/coordinator"
	"github.com/mmynk/mochiyoru/internal/models"
)

const (
	modeEdit   = "edit"
	modeCreate = "create"
)

// Group renders the group form. It honors the edit-members flag once.
func (h *Handler) Group(w http.ResponseWriter, r *http.Request) {
	st := h.loadState(r)
	editing := coordinator.ConsumeEditMode(st)

	m := h.load(r, st)
	st.Remember(m.Snapshot())

	h.renderGroup(w, r, st, http.StatusOK, m, editing, nil)
}

// GroupSubmit handles the add, remove and submit actions. The typed group
// name is kept on every post so a refresh does not lose it.
func (h *Handler) GroupSubmit(w http.ResponseWriter, r *http.Request) {
	st := h.loadState(r)
	m := coordinator.Reconcile(coordinator.URLState{}, st.Current, h.coord.Defaults())
	m.GroupName = strings.TrimSpace(r.PostFormValue("groupName"))
	editing := r.PostFormValue("mode") == modeEdit && m.GroupID != ""

	action := r.PostFormValue("action")
	if r.PostFormValue("remove") != "" {
		action = "remove"
	}

	switch action {
	case "remove":
		name := r.PostFormValue("remove")
		m.Members = slices.DeleteFunc(m.Members, func(s string) bool { return s == name })

	case "submit":
		saved, err := h.coord.SubmitGroup(r.Context(), st, m, editing)
		if err != nil {
			st.Remember(m.Snapshot())
			h.renderGroup(w, r, st, http.StatusBadRequest, m, editing, err)
			return
		}
		h.redirect(w, r, st, coordinator.NextURL("/share", saved, false))
		return

	default:
		// An empty name is ignored so Enter in the group name field only saves it.
		if name := strings.TrimSpace(r.PostFormValue("member")); name != "" {
			if err := coordinator.ValidateMemberName(name, m.Members); err != nil {
				st.Remember(m.Snapshot())
				h.renderGroup(w, r, st, http.StatusBadRequest, m, editing, err)
				return
			}
			m.Members = append(m.Members, name)
		}
	}

	st.Remember(m.Snapshot())
	h.renderGroup(w, r, st, http.StatusOK, m, editing, nil)
}

func (h *Handler) renderGroup(w http.ResponseWriter, r *http.Request, st *models.State, status int, m coordinator.Model, editing bool, err error) {
	ctx := pongo2.Context{
		"model":            m,
		"editing":          editing,
		"maxMembers":       coordinator.MaxMembers,
		"maxMemberNameLen": coordinator.MaxMemberNameLen,
	}
	if err != nil {
		ctx["error"] = err.Error()
	}
	h.render(w, r, st, status, "group.html", ctx)
}
