package view

import (
	"fmt"

	"golang.org/x/text/language"

	"github.com/eventstock/eventstock/internal/core/query"
)

// Registry holds the definitions served by the API along with the query
// engine configured for each.
type Registry struct {
	order   []string
	defs    map[string]*Definition
	engines map[string]*query.Engine
}

func NewRegistry(locale language.Tag, defs ...*Definition) *Registry {
	r := &Registry{
		defs:    make(map[string]*Definition, len(defs)),
		engines: make(map[string]*query.Engine, len(defs)),
	}
	for _, d := range defs {
		if _, dup := r.defs[d.Name]; !dup {
			r.order = append(r.order, d.Name)
		}
		r.defs[d.Name] = d
		r.engines[d.Name] = d.Engine(locale)
	}
	return r
}

func (r *Registry) Get(name string) (*Definition, error) {
	d, ok := r.defs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCollection, name)
	}
	return d, nil
}

func (r *Registry) Engine(name string) (*query.Engine, error) {
	e, ok := r.engines[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCollection, name)
	}
	return e, nil
}

// List returns definitions in registration order.
func (r *Registry) List() []*Definition {
	out := make([]*Definition, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.defs[name])
	}
	return out
}

func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}
