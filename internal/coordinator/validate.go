package coordinator

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mmynk/mochiyoru/internal/models"
)

// Group limits.
const (
	MinMembers       = 1
	MaxMembers       = 10
	MaxMemberNameLen = 20
)

// Validation errors. Each names one rule so the page can show which was violated.
var (
	ErrEmptyGroupName    = errors.New("group name is required")
	ErrNoMembers         = errors.New("add at least one member")
	ErrTooManyMembers    = fmt.Errorf("a group can have at most %d members", MaxMembers)
	ErrMemberNameTooLong = fmt.Errorf("member names can be at most %d characters", MaxMemberNameLen)
	ErrDuplicateMember   = errors.New("member names must be unique")
	ErrEmptyMemberName   = errors.New("member name is required")
	ErrEmptyItemName     = errors.New("item name is required")
	ErrDuplicateItem     = errors.New("item is already on the list")
	ErrUnknownItem       = errors.New("item is not on the list")
	ErrUnknownAssignee   = errors.New("assignee must be a member or everyone")
	ErrInvalidQuantity   = errors.New("quantity is out of range")
)

// ValidateGroup checks a group before it is created or updated.
// Nothing is trimmed or deduplicated: the first violated rule is returned.
func ValidateGroup(name string, members []string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyGroupName
	}
	if len(members) < MinMembers {
		return ErrNoMembers
	}
	if len(members) > MaxMembers {
		return ErrTooManyMembers
	}

	seen := make(map[string]struct{}, len(members))
	for _, m := range members {
		if err := checkMemberName(m); err != nil {
			return err
		}
		if _, ok := seen[m]; ok {
			return fmt.Errorf("%q: %w", m, ErrDuplicateMember)
		}
		seen[m] = struct{}{}
	}
	return nil
}

// ValidateMemberName checks a name about to be added to members.
func ValidateMemberName(name string, members []string) error {
	if err := checkMemberName(name); err != nil {
		return err
	}
	for _, m := range members {
		if m == name {
			return fmt.Errorf("%q: %w", name, ErrDuplicateMember)
		}
	}
	if len(members) >= MaxMembers {
		return ErrTooManyMembers
	}
	return nil
}

func checkMemberName(name string) error {
	if name == "" {
		return ErrEmptyMemberName
	}
	if utf8.RuneCountInString(name) > MaxMemberNameLen {
		return fmt.Errorf("%q: %w", name, ErrMemberNameTooLong)
	}
	return nil
}

// ValidateItemName checks a name about to be added to items.
func ValidateItemName(name string, items []models.Item) error {
	if name == "" {
		return ErrEmptyItemName
	}
	if indexOf(items, name) >= 0 {
		return fmt.Errorf("%q: %w", name, ErrDuplicateItem)
	}
	return nil
}

// ValidateAssignment checks an item's assignee against members and its quantity against 1..maxQuantity.
// An empty assignee and a nil quantity mean unset and are always valid.
func ValidateAssignment(assignee string, quantity *int, members []string, maxQuantity int) error {
	if assignee != "" && assignee != models.AssigneeEveryone && !contains(members, assignee) {
		return fmt.Errorf("%q: %w", assignee, ErrUnknownAssignee)
	}
	if quantity != nil && (*quantity < 1 || *quantity > maxQuantity) {
		return fmt.Errorf("%d: %w", *quantity, ErrInvalidQuantity)
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func indexOf(items []models.Item, name string) int {
	for i, it := range items {
		if it.Name == name {
			return i
		}
	}
	return -1
}
