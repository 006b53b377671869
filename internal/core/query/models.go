package query

import (
	"strings"

	"github.com/spf13/cast"
)

// Record is one entity of a named collection as decoded from its JSON document.
type Record map[string]any

// ID returns the record identity normalised to a string ("" when absent).
func (r Record) ID() string {
	return Format(r["id"])
}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// ParseDirection accepts asc/desc in any case; anything else is ascending.
func ParseDirection(s string) Direction {
	if strings.EqualFold(strings.TrimSpace(s), string(Descending)) {
		return Descending
	}
	return Ascending
}

func (d Direction) Opposite() Direction {
	if d == Descending {
		return Ascending
	}
	return Descending
}

// Query describes how to derive the visible list from a collection.
type Query struct {
	SearchText string         `json:"searchText"`
	Equality   map[string]any `json:"filters,omitempty"`
	SortKey    string         `json:"sortKey,omitempty"`
	Direction  Direction      `json:"sortDirection,omitempty"`
}

// Page is a window over an ordered result.
type Page struct {
	Records []Record `json:"records"`
	Total   int      `json:"total"`
	Limit   int      `json:"limit"`
	Offset  int      `json:"offset"`
}

// Paginate slices records; limit <= 0 returns everything from offset on.
func Paginate(records []Record, limit, offset int) Page {
	total := len(records)
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}

	page := make([]Record, end-offset)
	copy(page, records[offset:end])
	return Page{Records: page, Total: total, Limit: limit, Offset: offset}
}

// Format renders a field value for text search and identity comparison.
// Integral numbers print without a fraction so JSON ids 3 and "3" match;
// nested values render as "".
func Format(v any) string {
	return cast.ToString(v)
}
