// Package summary builds the read-only packing overview of a group.
package summary

import (
	"time"

	"github.com/mmynk/mochiyoru/internal/models"
)

// Row is one assigned item as shown on the summary table.
type Row struct {
	Assignee string
	Item     string
	Quantity int
	Everyone bool
}

// MemberItem is one thing a member has to bring.
type MemberItem struct {
	Name     string
	Quantity int
	Shared   bool // assigned to everyone rather than to this member alone
}

// MemberLoad is everything one member has to bring.
type MemberLoad struct {
	Member        string
	Items         []MemberItem
	TotalQuantity int
}

type Summary struct {
	Rows       []Row
	Members    []MemberLoad
	Unassigned []string
}

// Build computes the summary of items for members.
//
// Only items with both an assignee and a quantity become rows; the others are
// listed as unassigned. An item assigned to everyone counts its full quantity
// for each member. Rows naming someone who is no longer a member are kept but
// attributed to nobody.
func Build(members []string, items []models.Item) Summary {
	s := Summary{
		Rows:       []Row{},
		Members:    make([]MemberLoad, len(members)),
		Unassigned: []string{},
	}

	index := make(map[string]int, len(members))
	for i, m := range members {
		s.Members[i] = MemberLoad{Member: m, Items: []MemberItem{}}
		index[m] = i
	}

	for _, item := range items {
		if !item.IsAssigned() {
			s.Unassigned = append(s.Unassigned, item.Name)
			continue
		}

		qty := *item.Quantity
		everyone := item.Assignee == models.AssigneeEveryone
		s.Rows = append(s.Rows, Row{
			Assignee: item.Assignee,
			Item:     item.Name,
			Quantity: qty,
			Everyone: everyone,
		})

		if everyone {
			for i := range s.Members {
				s.Members[i].add(MemberItem{Name: item.Name, Quantity: qty, Shared: true})
			}
			continue
		}
		if i, ok := index[item.Assignee]; ok {
			s.Members[i].add(MemberItem{Name: item.Name, Quantity: qty})
		}
	}

	return s
}

func (m *MemberLoad) add(item MemberItem) {
	m.Items = append(m.Items, item)
	m.TotalQuantity += item.Quantity
}

// Export is the downloadable form of a group's list.
type Export struct {
	GroupName   string        `json:"groupName"`
	Assignments []models.Item `json:"assignments"`
	ExportedAt  string        `json:"exportedAt"`
}

// NewExport returns the export of items taken at now.
func NewExport(groupName string, items []models.Item, now time.Time) Export {
	if items == nil {
		items = []models.Item{}
	}
	return Export{
		GroupName:   groupName,
		Assignments: items,
		ExportedAt:  now.UTC().Format(time.RFC3339),
	}
}
