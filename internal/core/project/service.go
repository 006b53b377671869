package project

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/mitchellh/mapstructure"

	"github.com/eventstock/eventstock/internal/core/collection"
	"github.com/eventstock/eventstock/internal/core/query"
	"github.com/eventstock/eventstock/internal/core/view"
)

var (
	ErrProductAlreadyAdded = errors.New("product already added to project")
	ErrProductNotAssigned  = errors.New("product not assigned to project")
	ErrUnknownProduct      = errors.New("unknown product")
	ErrInvalidQuantity     = errors.New("quantity must be at least 1")
	ErrMalformedProject    = errors.New("stored project products are malformed")
)

type Service struct {
	collections *collection.Service
}

func NewService(collections *collection.Service) *Service {
	return &Service{collections: collections}
}

func decodeAssignments(r query.Record) ([]Assignment, error) {
	raw, ok := r[productsField]
	if !ok || raw == nil {
		return []Assignment{}, nil
	}

	var out []Assignment
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &out,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedProject, err)
	}
	if out == nil {
		out = []Assignment{}
	}
	return out, nil
}

func encodeAssignments(list []Assignment) []any {
	out := make([]any, 0, len(list))
	for _, a := range list {
		out = append(out, map[string]any{
			"produktId": a.ProductID,
			"ilosc":     a.Quantity,
		})
	}
	return out
}

// AddProduct books a product for a project. A product can be assigned to a
// project only once.
func (s *Service) AddProduct(ctx context.Context, projectID string, req *AddProductRequest) (*Result, error) {
	if req.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	key := query.Format(req.ProductID)
	if key == "" {
		return nil, fmt.Errorf("%w: empty product id", ErrUnknownProduct)
	}
	product, err := s.collections.Get(ctx, view.Products, key)
	if err != nil {
		if errors.Is(err, collection.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownProduct, key)
		}
		return nil, err
	}

	res, err := s.collections.Modify(ctx, view.Projects, projectID, func(current query.Record) (query.Record, error) {
		list, err := decodeAssignments(current)
		if err != nil {
			return nil, err
		}
		if slices.ContainsFunc(list, func(a Assignment) bool { return a.Key() == key }) {
			return nil, fmt.Errorf("%w: %s", ErrProductAlreadyAdded, key)
		}

		list = append(list, Assignment{ProductID: product["id"], Quantity: req.Quantity})
		current[productsField] = encodeAssignments(list)
		return current, nil
	})
	if err != nil {
		return nil, err
	}
	return &Result{Project: res.Record, Persisted: res.Persisted}, nil
}

func (s *Service) RemoveProduct(ctx context.Context, projectID, productID string) (*Result, error) {
	res, err := s.collections.Modify(ctx, view.Projects, projectID, func(current query.Record) (query.Record, error) {
		list, err := decodeAssignments(current)
		if err != nil {
			return nil, err
		}
		i := slices.IndexFunc(list, func(a Assignment) bool { return a.Key() == productID })
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", ErrProductNotAssigned, productID)
		}

		current[productsField] = encodeAssignments(slices.Delete(list, i, i+1))
		return current, nil
	})
	if err != nil {
		return nil, err
	}
	return &Result{Project: res.Record, Persisted: res.Persisted}, nil
}

// Products lists a project's assignments with product names resolved.
func (s *Service) Products(ctx context.Context, projectID string) ([]AssignedProduct, error) {
	project, err := s.collections.Get(ctx, view.Projects, projectID)
	if err != nil {
		return nil, err
	}
	list, err := decodeAssignments(project)
	if err != nil {
		return nil, err
	}

	products, err := s.collections.All(ctx, view.Products)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(products))
	for _, p := range products {
		names[p.ID()] = query.Format(p["nazwa"])
	}

	out := make([]AssignedProduct, 0, len(list))
	for _, a := range list {
		name, known := names[a.Key()]
		out = append(out, AssignedProduct{
			ProductID: a.ProductID,
			Quantity:  a.Quantity,
			Name:      name,
			Known:     known,
		})
	}
	return out, nil
}
