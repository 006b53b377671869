package view

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/spf13/cast"
	"golang.org/x/text/language"

	"github.com/eventstock/eventstock/internal/core/pricing"
	"github.com/eventstock/eventstock/internal/core/query"
)

var (
	ErrUnknownCollection = errors.New("unknown collection")
	ErrInvalidFilter     = errors.New("invalid filter value")
)

// FieldKind tells how a filter value arriving as text is coerced before it
// is compared with record values.
type FieldKind string

const (
	KindString FieldKind = "string"
	KindNumber FieldKind = "number"
	KindBool   FieldKind = "bool"
)

// Query string parameters with a fixed meaning; never treated as filters.
const (
	ParamSearch = "q"
	ParamSort   = "sort"
	ParamOrder  = "order"
	ParamLimit  = "limit"
	ParamOffset = "offset"
	ParamToggle = "toggle"
)

// CatalogFields maps record fields to the descriptive columns of an order
// sheet.
type CatalogFields struct {
	Name    string `json:"name"`
	Variant string `json:"variant"`
	Color   string `json:"color"`
	Height  string `json:"height"`
	Image   string `json:"image"`
}

func (f CatalogFields) Entry(r query.Record) pricing.CatalogEntry {
	return pricing.CatalogEntry{
		Name:     query.Format(r[f.Name]),
		Variant:  query.Format(r[f.Variant]),
		Color:    query.Format(r[f.Color]),
		Height:   query.Format(r[f.Height]),
		ImageRef: query.Format(r[f.Image]),
	}
}

// Definition is everything the admin UI and the query engine need to know
// about one collection.
type Definition struct {
	Name             string                 `json:"name"`
	Title            string                 `json:"title"`
	SearchFields     []string               `json:"searchFields"`
	Filters          map[string]FieldKind   `json:"filters"`
	DefaultSort      string                 `json:"defaultSort,omitempty"`
	DefaultDirection query.Direction        `json:"defaultDirection,omitempty"`
	MissingLast      []string               `json:"missingLast,omitempty"`
	Schema           map[string]interface{} `json:"schema"`
	Catalog          *CatalogFields         `json:"catalog,omitempty"`

	// Check enforces rules a JSON schema cannot express. It runs after
	// schema validation on every stored record.
	Check func(query.Record) error `json:"-"`
}

// Engine builds the query engine configured for this collection.
func (d *Definition) Engine(locale language.Tag) *query.Engine {
	return query.NewEngine(
		query.WithSearchFields(d.SearchFields...),
		query.WithMissingLast(d.MissingLast...),
		query.WithLocale(locale),
	)
}

// ParseQuery reads a listing query from URL parameters. Parameters naming a
// declared filter field become equality filters coerced to the field kind;
// other parameters are ignored. Without ?sort the default sort applies.
func (d *Definition) ParseQuery(values url.Values) (query.Query, error) {
	q := query.Query{
		SearchText: strings.TrimSpace(values.Get(ParamSearch)),
		SortKey:    d.DefaultSort,
		Direction:  d.DefaultDirection,
	}

	if sort := values.Get(ParamSort); sort != "" {
		q.SortKey = sort
		q.Direction = query.ParseDirection(values.Get(ParamOrder))
	} else if order := values.Get(ParamOrder); order != "" {
		q.Direction = query.ParseDirection(order)
	}

	for field, kind := range d.Filters {
		if !values.Has(field) {
			continue
		}
		v, err := coerce(kind, values.Get(field))
		if err != nil {
			return query.Query{}, fmt.Errorf("%w: %s: %v", ErrInvalidFilter, field, err)
		}
		if q.Equality == nil {
			q.Equality = make(map[string]any)
		}
		q.Equality[field] = v
	}

	if q.Direction == "" {
		q.Direction = query.Ascending
	}
	return q, nil
}

// NormalizeQuery coerces text filter values of declared fields in a query
// received as JSON. Values of undeclared fields pass through unchanged.
func (d *Definition) NormalizeQuery(q query.Query) (query.Query, error) {
	if q.Direction == "" {
		q.Direction = query.Ascending
	} else {
		q.Direction = query.ParseDirection(string(q.Direction))
	}
	if len(q.Equality) == 0 {
		return q, nil
	}

	filters := make(map[string]any, len(q.Equality))
	for field, v := range q.Equality {
		kind, declared := d.Filters[field]
		s, isText := v.(string)
		if !declared || !isText {
			filters[field] = v
			continue
		}
		coerced, err := coerce(kind, s)
		if err != nil {
			return query.Query{}, fmt.Errorf("%w: %s: %v", ErrInvalidFilter, field, err)
		}
		filters[field] = coerced
	}
	q.Equality = filters
	return q, nil
}

func coerce(kind FieldKind, s string) (any, error) {
	switch kind {
	case KindNumber:
		return cast.ToFloat64E(strings.TrimSpace(s))
	case KindBool:
		return cast.ToBoolE(strings.TrimSpace(s))
	}
	return s, nil
}

// FilterFields lists declared filter fields in name order.
func (d *Definition) FilterFields() []string {
	fields := make([]string, 0, len(d.Filters))
	for f := range d.Filters {
		fields = append(fields, f)
	}
	slices.Sort(fields)
	return fields
}
