package models

// AssigneeEveryone is the reserved assignee meaning the item is shared by all members.
const AssigneeEveryone = "everyone"

// Item represents one row of a group's packing list.
// Items are keyed by (GroupID, Name); saving an existing name replaces the row.
type Item struct {
	// GroupID is the group this item belongs to.
	GroupID string `json:"-"`

	// Name is the item name, unique within the group.
	Name string `json:"name"`

	// Quantity is nil when unset.
	Quantity *int `json:"quantity"`

	// Assignee is empty when unset, a member name, or AssigneeEveryone.
	Assignee string `json:"assignee"`
}

// IsAssigned reports whether the item has both an assignee and a quantity.
func (i Item) IsAssigned() bool {
	return i.Assignee != "" && i.Quantity != nil
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int {
	return &v
}
