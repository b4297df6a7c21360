package session

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/sessions"

	"github.com/mmynk/mochiyoru/internal/models"
)

const (
	overflowKey    = "overflow"
	overflowSuffix = "-data"
)

// CookieStore keeps the whole state in a signed cookie. A state that does not
// fit is written to a session file instead and the cookie only marks it.
type CookieStore struct {
	store    *sessions.CookieStore
	overflow *sessions.FilesystemStore
	name     string
}

func NewCookieStore(opts Options) *CookieStore {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	fs := sessions.NewFilesystemStore(opts.Dir, []byte(opts.Secret))
	fs.MaxLength(0)
	fs.MaxAge(int(ttl.Seconds()))
	fs.Options.HttpOnly = true
	fs.Options.Secure = opts.Secure
	fs.Options.SameSite = http.SameSiteLaxMode

	return &CookieStore{store: newCookieStore(opts), overflow: fs, name: cookieName(opts)}
}

func (s *CookieStore) overflowName() string {
	return s.name + overflowSuffix
}

func (s *CookieStore) Load(r *http.Request) (*models.State, error) {
	sess := getSession(s.store, r, s.name)
	if spilled, _ := sess.Values[overflowKey].(bool); !spilled {
		return decodeState(sess.Values[stateKey]), nil
	}

	data, err := s.overflow.New(r, s.overflowName())
	if err != nil {
		slog.Debug("Discarding unreadable session file", "error", err)
		return &models.State{}, nil
	}
	return decodeState(data.Values[stateKey]), nil
}

// Save writes st to the cookie, or to the session file when the cookie
// would be too large.
func (s *CookieStore) Save(w http.ResponseWriter, r *http.Request, st *models.State) error {
	data, err := encodeState(st)
	if err != nil {
		return err
	}

	sess := s.newSession()
	sess.Values[stateKey] = data
	err = s.store.Save(r, w, sess)
	if err == nil {
		s.dropOverflow(w, r)
		return nil
	}

	slog.Debug("Session state too large for the cookie, using a session file", "bytes", len(data), "error", err)

	file, ferr := s.overflow.New(r, s.overflowName())
	if ferr != nil {
		slog.Debug("Starting a new session file", "error", ferr)
	}
	file.Values[stateKey] = data
	if ferr := s.overflow.Save(r, w, file); ferr != nil {
		return fmt.Errorf("failed to save session: %w", errors.Join(err, ferr))
	}

	marker := s.newSession()
	marker.Values[overflowKey] = true
	return s.store.Save(r, w, marker)
}

func (s *CookieStore) newSession() *sessions.Session {
	sess := sessions.NewSession(s.store, s.name)
	opts := *s.store.Options
	sess.Options = &opts
	return sess
}

// dropOverflow removes the session file of a browser whose state fits the cookie again.
func (s *CookieStore) dropOverflow(w http.ResponseWriter, r *http.Request) {
	if _, err := r.Cookie(s.overflowName()); err != nil {
		return
	}
	file, err := s.overflow.New(r, s.overflowName())
	if err != nil || file.ID == "" {
		return
	}
	file.Options.MaxAge = -1
	if err := s.overflow.Save(r, w, file); err != nil {
		slog.Warn("Failed to remove session file", "error", err)
	}
}
