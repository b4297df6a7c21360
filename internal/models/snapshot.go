package models

// EditModeMembers is the only edit-mode flag value the group page honors.
const EditModeMembers = "members"

// Notice levels.
const (
	NoticeInfo    = "info"
	NoticeWarning = "warning"
)

// Snapshot is the cached copy of one group's working state.
type Snapshot struct {
	GroupID   string   `json:"groupId,omitempty"`
	GroupName string   `json:"groupName,omitempty"`
	Members   []string `json:"members,omitempty"`
	Items     []Item   `json:"items,omitempty"`
}

// Notice is a non-blocking message shown once on the next page render.
type Notice struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// State is everything persisted for one browser session between page loads.
//
// Current is the working snapshot, Groups holds per-group cached copies keyed by
// group ID, CurrentGroupID points at the group being worked on and EditMode is the
// transient flag consumed by the group page.
type State struct {
	Current        Snapshot            `json:"current"`
	CurrentGroupID string              `json:"currentGroupId,omitempty"`
	Groups         map[string]Snapshot `json:"groups,omitempty"`
	EditMode       string              `json:"editMode,omitempty"`
	Notices        []Notice            `json:"notices,omitempty"`
}

// Remember stores snap as the current snapshot and, when it has an ID,
// as the cached copy for its group.
func (s *State) Remember(snap Snapshot) {
	s.Current = snap
	if snap.GroupID == "" {
		return
	}
	s.CurrentGroupID = snap.GroupID
	if s.Groups == nil {
		s.Groups = make(map[string]Snapshot)
	}
	s.Groups[snap.GroupID] = snap
}

// Reset drops the current snapshot, the current group pointer and the edit flag.
// Per-group cached copies are kept.
func (s *State) Reset() {
	s.Current = Snapshot{}
	s.CurrentGroupID = ""
	s.EditMode = ""
}

// Notify queues a notice for the next render.
func (s *State) Notify(level, message string) {
	s.Notices = append(s.Notices, Notice{Level: level, Message: message})
}

// TakeNotices returns and clears pending notices.
func (s *State) TakeNotices() []Notice {
	n := s.Notices
	s.Notices = nil
	return n
}
