package collection

import "github.com/eventstock/eventstock/internal/core/query"

// Result describes a completed mutation. Persisted is false when the change
// is kept in memory but the store rejected the save.
type Result struct {
	Record    query.Record   `json:"record,omitempty"`
	Records   []query.Record `json:"records,omitempty"`
	Persisted bool           `json:"-"`
}

type SearchRequest struct {
	query.Query
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

type ListResponse struct {
	Collection string         `json:"collection"`
	Records    []query.Record `json:"records"`
	Total      int            `json:"total"`
	Limit      int            `json:"limit"`
	Offset     int            `json:"offset"`
	Query      query.Query    `json:"query"`
}

// Modifier derives the new version of a record. Returning an error leaves
// the collection untouched.
type Modifier func(current query.Record) (query.Record, error)

// Builder derives a new record from the records already stored.
type Builder func(existing []query.Record) (query.Record, error)
