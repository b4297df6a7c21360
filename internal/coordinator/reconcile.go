// Package coordinator reconciles the working group state of one browser
// session from the URL, the session snapshot and the backend, and drives the
// backend calls made by the page controllers.
package coordinator

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/mmynk/mochiyoru/internal/models"
)

// Query parameters carried between pages.
const (
	ParamGroupID   = "groupId"
	ParamGroupName = "groupName"
	ParamMembers   = "members"
	ParamItems     = "items"
)

// ErrInvalidItems is returned when the items parameter is not a JSON list of item rows.
var ErrInvalidItems = errors.New("items must be a list of {name, quantity, assignee} rows")

// URLState is what the query string says about the group.
// A nil Members or Items means the parameter was absent.
type URLState struct {
	GroupID   string
	GroupName string
	Members   []string
	Items     []models.Item
}

// Model is the reconciled working state a page renders and mutates.
// Its fields mirror models.Snapshot so the two convert directly.
type Model struct {
	GroupID   string
	GroupName string
	Members   []string
	Items     []models.Item
}

// Snapshot returns m in its persisted form.
func (m Model) Snapshot() models.Snapshot {
	return models.Snapshot(m)
}

// Defaults are used when neither the URL nor the snapshot has a value.
type Defaults struct {
	GroupName string
}

// ParseURL decodes the page parameters. Members are accepted in either wire form.
//
// A malformed members or items parameter is reported, and the returned state
// treats that parameter as absent so the rest can still be used.
func ParseURL(q url.Values) (URLState, error) {
	s := URLState{
		GroupID:   strings.TrimSpace(q.Get(ParamGroupID)),
		GroupName: strings.TrimSpace(q.Get(ParamGroupName)),
	}

	var errs []error
	if raw := q.Get(ParamMembers); raw != "" {
		members, err := models.DecodeMembers(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s parameter: %w", ParamMembers, err))
		} else {
			s.Members = members
		}
	}
	if raw := q.Get(ParamItems); raw != "" {
		var items []models.Item
		if err := json.Unmarshal([]byte(raw), &items); err != nil {
			errs = append(errs, fmt.Errorf("%s parameter: %w", ParamItems, ErrInvalidItems))
		} else {
			if items == nil {
				items = []models.Item{}
			}
			s.Items = items
		}
	}

	return s, errors.Join(errs...)
}

// Reconcile merges the sources field by field: the URL wins, then the
// snapshot, then the default. The result shares no slices with its inputs.
func Reconcile(u URLState, snap models.Snapshot, d Defaults) Model {
	m := Model{
		GroupID:   firstNonEmpty(u.GroupID, snap.GroupID),
		GroupName: firstNonEmpty(u.GroupName, snap.GroupName, d.GroupName),
		Members:   []string{},
		Items:     []models.Item{},
	}

	switch {
	case u.Members != nil:
		m.Members = slices.Clone(u.Members)
	case snap.Members != nil:
		m.Members = slices.Clone(snap.Members)
	}

	switch {
	case u.Items != nil:
		m.Items = slices.Clone(u.Items)
	case snap.Items != nil:
		m.Items = slices.Clone(snap.Items)
	}

	return m
}

// SnapshotFor picks the cached snapshot for groupID.
//
// With no group ID the current snapshot is used. Otherwise the current
// snapshot is used only if it belongs to that group, then the per-group
// copy; a group never seen in this session yields an empty snapshot.
func SnapshotFor(st *models.State, groupID string) models.Snapshot {
	if groupID == "" || st.Current.GroupID == groupID {
		return st.Current
	}
	if snap, ok := st.Groups[groupID]; ok {
		return snap
	}
	return models.Snapshot{}
}

// Load parses the URL and reconciles it with the matching snapshot in st.
func Load(q url.Values, st *models.State, d Defaults) (Model, error) {
	u, err := ParseURL(q)
	return Reconcile(u, SnapshotFor(st, u.GroupID), d), err
}

// ConsumeEditMode reports whether the group page should update the current
// group instead of creating a new one. The flag is always cleared: it only
// takes effect when set to models.EditModeMembers and a group ID is known.
func ConsumeEditMode(st *models.State) bool {
	flag := st.EditMode
	st.EditMode = ""
	return flag == models.EditModeMembers && knownGroupID(st) != ""
}

func knownGroupID(st *models.State) string {
	return firstNonEmpty(st.Current.GroupID, st.CurrentGroupID)
}

// NextURL builds the link to path carrying the group in the query string.
// Items are included only when withItems is set.
func NextURL(path string, m Model, withItems bool) string {
	q := url.Values{}
	if m.GroupID != "" {
		q.Set(ParamGroupID, m.GroupID)
	}
	if m.GroupName != "" {
		q.Set(ParamGroupName, m.GroupName)
	}
	members, _ := json.Marshal(nonNil(m.Members))
	q.Set(ParamMembers, string(members))
	if withItems {
		items := m.Items
		if items == nil {
			items = []models.Item{}
		}
		data, _ := json.Marshal(items)
		q.Set(ParamItems, string(data))
	}
	return path + "?" + q.Encode()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
