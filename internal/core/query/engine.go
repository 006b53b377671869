package query

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Engine derives ordered, filtered views of record collections. It is
// configured once per view and is safe for concurrent use; Apply never
// mutates its input.
type Engine struct {
	searchable  []string
	missingLast map[string]bool
	locale      language.Tag
}

type Option func(*Engine)

// WithSearchFields declares the fields searched by Query.SearchText.
func WithSearchFields(fields ...string) Option {
	return func(e *Engine) {
		e.searchable = append(e.searchable, fields...)
	}
}

// WithMissingLast makes absent or null values of the given sort keys order
// after present ones in both directions.
func WithMissingLast(fields ...string) Option {
	return func(e *Engine) {
		for _, f := range fields {
			e.missingLast[f] = true
		}
	}
}

// WithLocale sets the collation used for string sort keys.
func WithLocale(tag language.Tag) Option {
	return func(e *Engine) {
		e.locale = tag
	}
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		missingLast: make(map[string]bool),
		locale:      language.Polish,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) SearchFields() []string {
	return slices.Clone(e.searchable)
}

// Apply filters by equality, then by search text, then stable-sorts by
// q.SortKey. An empty sort key keeps input order.
func (e *Engine) Apply(records []Record, q Query) []Record {
	needle := strings.ToLower(q.SearchText)

	out := make([]Record, 0, len(records))
	for _, r := range records {
		if !matchesEquality(r, q.Equality) {
			continue
		}
		if needle != "" && !e.matchesSearch(r, needle) {
			continue
		}
		out = append(out, r)
	}

	if q.SortKey == "" {
		return out
	}

	cmp := e.comparator(q.SortKey, q.Direction)
	slices.SortStableFunc(out, cmp)
	return out
}

func matchesEquality(r Record, filter map[string]any) bool {
	for field, want := range filter {
		got, ok := r[field]
		if !ok || !Equal(got, want) {
			return false
		}
	}
	return true
}

func (e *Engine) matchesSearch(r Record, needle string) bool {
	for _, field := range e.searchable {
		if strings.Contains(strings.ToLower(Format(r[field])), needle) {
			return true
		}
	}
	return false
}

func (e *Engine) comparator(key string, dir Direction) func(a, b Record) int {
	// collate.Collator keeps internal buffers, so each Apply gets its own.
	col := collate.New(e.locale)
	nullsLast := e.missingLast[key]

	return func(a, b Record) int {
		av, bv := a[key], b[key]
		if nullsLast {
			am, bm := av == nil, bv == nil
			switch {
			case am && bm:
				return 0
			case am:
				return 1
			case bm:
				return -1
			}
		}

		c := Compare(col, av, bv)
		if dir == Descending {
			return -c
		}
		return c
	}
}

// Compare orders two field values: strings by collation, numbers
// numerically, anything else as equal.
func Compare(col *collate.Collator, a, b any) int {
	if as, ok := a.(string); ok {
		if bs, ok := b.(string); ok {
			return col.CompareString(as, bs)
		}
		return 0
	}
	an, aok := Number(a)
	bn, bok := Number(b)
	if !aok || !bok {
		return 0
	}
	switch {
	case an < bn:
		return -1
	case an > bn:
		return 1
	}
	return 0
}

// Equal reports exact equality of two field values of the same kind.
func Equal(a, b any) bool {
	switch at := a.(type) {
	case string:
		bt, ok := b.(string)
		return ok && at == bt
	case bool:
		bt, ok := b.(bool)
		return ok && at == bt
	case nil:
		return b == nil
	}
	an, aok := Number(a)
	bn, bok := Number(b)
	return aok && bok && an == bn
}

// Number reports the numeric value of v when it holds a Go number.
func Number(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint:
		return float64(t), true
	case uint32:
		return float64(t), true
	case uint64:
		return float64(t), true
	}
	return 0, false
}
