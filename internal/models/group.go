package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Group represents a packing list group and its members.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	// Assigned once on creation and never changed.
	ID string

	// Name is the display name of the group (e.g., "Trip", "Camping").
	Name string

	// Members is the ordered list of member display names.
	Members []string

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// ErrInvalidMembers is returned when a member list is neither a list of
// names nor a list of {"name": ...} objects.
var ErrInvalidMembers = errors.New("members must be a list of names or {name} objects")

// MemberList is the canonical member representation.
//
// It decodes both legacy wire formats, ["A","B"] and [{"name":"A"},{"name":"B"}],
// and always encodes as a plain list of strings.
type MemberList []string

// UnmarshalJSON decodes either member wire format.
func (m *MemberList) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return ErrInvalidMembers
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return ErrInvalidMembers
	}

	out := make(MemberList, 0, len(raw))
	for i, elem := range raw {
		name, err := decodeMember(elem)
		if err != nil {
			return fmt.Errorf("member %d: %w", i, err)
		}
		out = append(out, name)
	}
	*m = out
	return nil
}

func decodeMember(elem json.RawMessage) (string, error) {
	var name string
	if err := json.Unmarshal(elem, &name); err == nil {
		return name, nil
	}

	var obj struct {
		Name *string `json:"name"`
	}
	if err := json.Unmarshal(elem, &obj); err != nil || obj.Name == nil {
		return "", ErrInvalidMembers
	}
	return *obj.Name, nil
}

// DecodeMembers parses a JSON member list in either wire format.
func DecodeMembers(raw string) ([]string, error) {
	var m MemberList
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		if errors.Is(err, ErrInvalidMembers) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidMembers, err)
	}
	return []string(m), nil
}
