// Package viewstate holds the small state machines an admin screen keeps
// next to a collection: the edit mode, the active sort and the image viewer.
package viewstate

import (
	"github.com/eventstock/eventstock/internal/core/query"
)

type ModeKind int

const (
	Listing ModeKind = iota
	Creating
	Editing
)

func (k ModeKind) String() string {
	switch k {
	case Creating:
		return "creating"
	case Editing:
		return "editing"
	default:
		return "listing"
	}
}

// Mode is what the record form is doing. Only Editing carries a record.
type Mode struct {
	kind   ModeKind
	record query.Record
}

func ListingMode() Mode  { return Mode{kind: Listing} }
func CreatingMode() Mode { return Mode{kind: Creating} }

func EditingMode(r query.Record) Mode {
	return Mode{kind: Editing, record: r.Clone()}
}

func (m Mode) Kind() ModeKind { return m.kind }

// Record returns the record under edit.
func (m Mode) Record() (query.Record, bool) {
	if m.kind != Editing {
		return nil, false
	}
	return m.record.Clone(), true
}

// FormOpen reports whether the create/edit form is shown.
func (m Mode) FormOpen() bool {
	return m.kind != Listing
}

// SortState is the column sort of a table header.
type SortState struct {
	Key       string
	Direction query.Direction
}

// Toggle flips the direction when key is already active, otherwise sorts
// by key ascending.
func (s SortState) Toggle(key string) SortState {
	if s.Key == key {
		return SortState{Key: key, Direction: s.Direction.Opposite()}
	}
	return SortState{Key: key, Direction: query.Ascending}
}

// Apply sets the sort on q.
func (s SortState) Apply(q query.Query) query.Query {
	q.SortKey = s.Key
	q.Direction = s.Direction
	return q
}
