// Package session persists the per-browser models.State between page loads.
package session

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"time"

	"github.com/gorilla/sessions"

	"github.com/mmynk/mochiyoru/internal/models"
)

const (
	DefaultCookieName = "mochiyoru-session"
	stateKey          = "state"
)

// Store loads and saves the state of the browser making r.
type Store interface {
	// Load never fails on a missing, expired or tampered session: it returns
	// an empty state instead.
	Load(r *http.Request) (*models.State, error)
	Save(w http.ResponseWriter, r *http.Request, st *models.State) error
}

type Options struct {
	CookieName string
	Secret     string
	TTL        time.Duration
	Secure     bool
	// Dir holds states too large for the cookie. Empty means os.TempDir().
	Dir string
}

// newCookieStore returns a signed cookie store. The cookie itself lives until
// the browser session ends; TTL bounds how old a signed value may be.
func newCookieStore(opts Options) *sessions.CookieStore {
	cs := sessions.NewCookieStore([]byte(opts.Secret))
	cs.MaxAge(int(opts.TTL.Seconds()))
	cs.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   0,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	return cs
}

func cookieName(opts Options) string {
	if opts.CookieName == "" {
		return DefaultCookieName
	}
	return opts.CookieName
}

// getSession decodes the cookie. An undecodable cookie yields a new session.
func getSession(cs *sessions.CookieStore, r *http.Request, name string) *sessions.Session {
	sess, err := cs.New(r, name)
	if err != nil {
		slog.Debug("Discarding unreadable session cookie", "error", err)
	}
	return sess
}

// decodeState restores the cached copy of the current group, which
// encodeState leaves out.
func decodeState(raw interface{}) *models.State {
	st := &models.State{}
	data, ok := raw.(string)
	if !ok || data == "" {
		return st
	}
	if err := json.Unmarshal([]byte(data), st); err != nil {
		slog.Warn("Discarding malformed session state", "error", err)
		return &models.State{}
	}
	if id := st.Current.GroupID; id != "" {
		if st.Groups == nil {
			st.Groups = make(map[string]models.Snapshot)
		}
		st.Groups[id] = st.Current
	}
	return st
}

// encodeState stores the current group once: State.Remember keeps
// Groups[Current.GroupID] equal to Current.
func encodeState(st *models.State) (string, error) {
	out := *st
	if id := st.Current.GroupID; id != "" {
		if _, ok := st.Groups[id]; ok {
			out.Groups = maps.Clone(st.Groups)
			delete(out.Groups, id)
		}
	}

	data, err := json.Marshal(&out)
	if err != nil {
		return "", fmt.Errorf("failed to encode session state: %w", err)
	}
	return string(data), nil
}
