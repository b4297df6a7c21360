package pages

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/flosch/pongo2/v6"

	"github.com/mmynk/mochiyoru/internal/coordinator"
	"github.com/mmynk/mochiyoru/internal/models"
	"github.com/mmynk/mochiyoru/internal/summary"
)

// Summary renders the read-only packing list.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	st := h.loadState(r)
	m := h.load(r, st)
	m = h.coord.LoadSummary(r.Context(), st, m)

	h.render(w, r, st, http.StatusOK, "summary.html", summaryContext(m))
}

// SummarySubmit handles rename and edit-list.
func (h *Handler) SummarySubmit(w http.ResponseWriter, r *http.Request) {
	st := h.loadState(r)
	m := h.current(r, st)

	switch r.PostFormValue("action") {
	case "rename":
		renamed, err := h.coord.RenameGroup(r.Context(), st, m, strings.TrimSpace(r.PostFormValue("groupName")))
		if err != nil {
			ctx := summaryContext(m)
			ctx["error"] = err.Error()
			h.render(w, r, st, http.StatusBadRequest, "summary.html", ctx)
			return
		}
		st.Notify(models.NoticeInfo, "Renamed the group to "+renamed.GroupName+".")
		h.redirect(w, r, st, coordinator.NextURL("/summary", renamed, true))

	case "edit-list":
		st.Remember(m.Snapshot())
		h.redirect(w, r, st, coordinator.NextURL("/items", m, false))

	default:
		ctx := summaryContext(m)
		ctx["error"] = "unknown action"
		h.render(w, r, st, http.StatusBadRequest, "summary.html", ctx)
	}
}

func summaryContext(m coordinator.Model) pongo2.Context {
	return pongo2.Context{
		"model":     m,
		"summary":   summary.Build(m.Members, m.Items),
		"exportURL": coordinator.NextURL("/summary/export", m, false),
	}
}

// Export downloads the list as JSON.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	st := h.loadState(r)
	m := h.load(r, st)
	m = h.coord.LoadSummary(r.Context(), st, m)
	h.saveState(w, r, st)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="packing-list.json"`)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary.NewExport(m.GroupName, m.Items, h.now())); err != nil {
		slog.Warn("Failed to encode export", "group_id", m.GroupID, "error", err)
	}
}

// SharedLink opens a group from its share link and continues on the items page.
func (h *Handler) SharedLink(w http.ResponseWriter, r *http.Request) {
	st := h.loadState(r)
	groupID := r.PathValue("groupId")

	m, err := h.coord.OpenGroup(r.Context(), st, groupID)
	if errors.Is(err, coordinator.ErrNotFound) {
		h.render(w, r, st, http.StatusNotFound, "notfound.html", nil)
		return
	}
	if err != nil {
		slog.Warn("Opening shared group failed", "group_id", groupID, "error", err)
		st.Notify(models.NoticeWarning, "The group could not be loaded from the server.")
		h.redirect(w, r, st, "/items?"+url.Values{coordinator.ParamGroupID: {groupID}}.Encode())
		return
	}

	h.redirect(w, r, st, coordinator.NextURL("/items", m, false))
}
