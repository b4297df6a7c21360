// Package pages serves the five server-rendered pages of the packing flow:
// start, group, share, items and summary.
package pages

import (
	"embed"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/flosch/pongo2/v6"

	"github.com/mmynk/mochiyoru/internal/coordinator"
	"github.com/mmynk/mochiyoru/internal/models"
	"github.com/mmynk/mochiyoru/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Handler renders the pages. Each request loads the browser's state from
// the session store, works on it through the coordinator and saves it back
// before responding.
type Handler struct {
	coord     *coordinator.Coordinator
	sessions  session.Store
	templates *pongo2.TemplateSet
	baseURL   string
	now       func() time.Time
}

// NewHandler returns the page handler. baseURL is the public origin used in share links.
func NewHandler(coord *coordinator.Coordinator, sessions session.Store, baseURL string) (*Handler, error) {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, err
	}

	return &Handler{
		coord:     coord,
		sessions:  sessions,
		templates: pongo2.NewSet("pages", pongo2.NewFSLoader(sub)),
		baseURL:   strings.TrimRight(baseURL, "/"),
		now:       time.Now,
	}, nil
}

// Register mounts every page route on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.Start)
	mux.HandleFunc("POST /start", h.StartSubmit)
	mux.HandleFunc("GET /group", h.Group)
	mux.HandleFunc("POST /group", h.GroupSubmit)
	mux.HandleFunc("GET /share", h.Share)
	mux.HandleFunc("GET /items", h.Items)
	mux.HandleFunc("POST /items", h.ItemsSubmit)
	mux.HandleFunc("GET /summary", h.Summary)
	mux.HandleFunc("POST /summary", h.SummarySubmit)
	mux.HandleFunc("GET /summary/export", h.Export)
	mux.HandleFunc("GET /g/{groupId}", h.SharedLink)

	static, _ := fs.Sub(staticFS, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))
}

// loadState never fails: an unreadable session starts over with an empty state.
func (h *Handler) loadState(r *http.Request) *models.State {
	st, err := h.sessions.Load(r)
	if err != nil {
		slog.Error("Failed to load session", "error", err)
		return &models.State{}
	}
	return st
}

func (h *Handler) saveState(w http.ResponseWriter, r *http.Request, st *models.State) error {
	err := h.sessions.Save(w, r, st)
	if err != nil {
		slog.Error("Failed to save session", "path", r.URL.Path, "error", err)
	}
	return err
}

// load reconciles the URL with the session. A malformed parameter is
// reported as a notice and otherwise ignored.
func (h *Handler) load(r *http.Request, st *models.State) coordinator.Model {
	m, err := coordinator.Load(r.URL.Query(), st, h.coord.Defaults())
	if err != nil {
		slog.Warn("Ignoring malformed page parameters", "path", r.URL.Path, "error", err)
		st.Notify(models.NoticeWarning, "Some link parameters could not be read and were ignored.")
	}
	return m
}

// current returns the working model for a form post on the group named by the form.
func (h *Handler) current(r *http.Request, st *models.State) coordinator.Model {
	u := coordinator.URLState{GroupID: strings.TrimSpace(r.PostFormValue("groupId"))}
	return coordinator.Reconcile(u, coordinator.SnapshotFor(st, u.GroupID), h.coord.Defaults())
}

const noticeSessionNotSaved = "Your latest changes could not be kept in this browser. Reloading may lose them."

// render saves st, then writes the named template with ctx plus the pending notices.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, st *models.State, status int, name string, ctx pongo2.Context) {
	notices := st.TakeNotices()
	if err := h.saveState(w, r, st); err != nil {
		notices = append(notices, models.Notice{Level: models.NoticeWarning, Message: noticeSessionNotSaved})
	}
	page := pongo2.Context{"notices": notices}
	page.Update(ctx)

	tpl, err := h.templates.FromCache(name)
	if err != nil {
		slog.Error("Failed to load template", "template", name, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	body, err := tpl.ExecuteBytes(page)
	if err != nil {
		slog.Error("Failed to render template", "template", name, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(body)
}

// redirect saves st and sends the browser to url with a GET.
func (h *Handler) redirect(w http.ResponseWriter, r *http.Request, st *models.State, url string) {
	h.saveState(w, r, st)
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// Start renders the landing page.
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, h.loadState(r), http.StatusOK, "start.html", nil)
}

// StartSubmit begins a fresh flow: the current snapshot, group pointer and
// edit flag are cleared. Cached copies of other groups survive.
func (h *Handler) StartSubmit(w http.ResponseWriter, r *http.Request) {
	st := h.loadState(r)
	st.Reset()
	h.redirect(w, r, st, "/group")
}
