package order

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/eventstock/eventstock/internal/core/collection"
	"github.com/eventstock/eventstock/internal/core/pricing"
	"github.com/eventstock/eventstock/internal/core/query"
	"github.com/eventstock/eventstock/internal/core/view"
)

var ErrMalformedOrder = pricing.ErrMalformedOrder

// orderFields are the record keys owned by pricing.Order. Other keys stored
// on an order record are preserved across updates.
var orderFields = []string{
	"id", "orderNumber", "status", "createdDate", "fulfillmentDate",
	"supplier", "project", "notes", "lineItems",
}

const dateLayout = "2006-01-02"

// Service applies the pricing model to records of the orders collection.
type Service struct {
	collections *collection.Service
	now         func() time.Time
}

func NewService(collections *collection.Service) *Service {
	return &Service{collections: collections, now: time.Now}
}

func decode(r query.Record) (pricing.Order, error) {
	doc := r.Clone()
	doc["id"] = r.ID()
	data, err := json.Marshal(doc)
	if err != nil {
		return pricing.Order{}, fmt.Errorf("%w: %v", ErrMalformedOrder, err)
	}
	return pricing.DecodeOrder(data)
}

// encode writes o over base, keeping keys the order model does not own.
func encode(base query.Record, o pricing.Order) (query.Record, error) {
	data, err := json.Marshal(o)
	if err != nil {
		return nil, err
	}
	var fields query.Record
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}

	out := base.Clone()
	for _, k := range orderFields {
		delete(out, k)
	}
	for k, v := range fields {
		out[k] = v
	}
	if id, ok := base["id"]; ok {
		out["id"] = id
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (pricing.Order, error) {
	r, err := s.collections.Get(ctx, view.Orders, id)
	if err != nil {
		return pricing.Order{}, err
	}
	return decode(r)
}

func (s *Service) Create(ctx context.Context, req *CreateOrderRequest) (*Result, error) {
	status := pricing.StatusNew
	if req.Status != "" {
		st, err := pricing.ParseStatus(req.Status)
		if err != nil {
			return nil, err
		}
		status = st
	}

	o := pricing.Order{
		ID:              uuid.NewString(),
		OrderNumber:     strings.TrimSpace(req.OrderNumber),
		Status:          status,
		CreatedDate:     req.CreatedDate,
		FulfillmentDate: req.FulfillmentDate,
		Supplier:        req.Supplier,
		Project:         req.Project,
		Notes:           req.Notes,
		LineItems:       []pricing.LineItem{},
	}
	if o.CreatedDate == "" {
		o.CreatedDate = s.now().Format(dateLayout)
	}

	// The number is picked under the collection lock so concurrent creates
	// never share one.
	res, err := s.collections.CreateWith(ctx, view.Orders, func(existing []query.Record) (query.Record, error) {
		if o.OrderNumber == "" {
			o.OrderNumber = nextOrderNumber(existing, s.now().Year())
		}
		return encode(query.Record{}, o)
	})
	if err != nil {
		return nil, err
	}
	created, err := decode(res.Record)
	if err != nil {
		return nil, err
	}
	return &Result{Order: created, Persisted: res.Persisted}, nil
}

// nextOrderNumber numbers orders per year: ZAM/2024/001, ZAM/2024/002, ...
func nextOrderNumber(records []query.Record, year int) string {
	prefix := fmt.Sprintf("ZAM/%d/", year)
	seq := 0
	for _, r := range records {
		var n int
		number := query.Format(r["orderNumber"])
		if rest, ok := strings.CutPrefix(number, prefix); ok {
			if _, err := fmt.Sscanf(rest, "%d", &n); err == nil && n > seq {
				seq = n
			}
		}
	}
	return fmt.Sprintf("%s%03d", prefix, seq+1)
}

// apply runs a pricing operation against the stored order under the
// collection lock.
func (s *Service) apply(ctx context.Context, id string, op func(pricing.Order) (pricing.Order, error)) (*Result, error) {
	res, err := s.collections.Modify(ctx, view.Orders, id, func(current query.Record) (query.Record, error) {
		o, err := decode(current)
		if err != nil {
			return nil, err
		}
		next, err := op(o)
		if err != nil {
			return nil, err
		}
		return encode(current, next)
	})
	if err != nil {
		return nil, err
	}

	o, err := decode(res.Record)
	if err != nil {
		return nil, err
	}
	return &Result{Order: o, Persisted: res.Persisted}, nil
}

func (s *Service) UpdateDetails(ctx context.Context, id string, req *UpdateOrderRequest) (*Result, error) {
	var status pricing.Status
	if req.Status != nil {
		st, err := pricing.ParseStatus(*req.Status)
		if err != nil {
			return nil, err
		}
		status = st
	}

	return s.apply(ctx, id, func(o pricing.Order) (pricing.Order, error) {
		if req.OrderNumber != nil {
			o.OrderNumber = strings.TrimSpace(*req.OrderNumber)
		}
		if req.Status != nil {
			o.Status = status
		}
		if req.CreatedDate != nil {
			o.CreatedDate = *req.CreatedDate
		}
		if req.FulfillmentDate != nil {
			o.FulfillmentDate = *req.FulfillmentDate
		}
		if req.Supplier != nil {
			o.Supplier = *req.Supplier
		}
		if req.Project != nil {
			o.Project = *req.Project
		}
		if req.Notes != nil {
			o.Notes = *req.Notes
		}
		return o, nil
	})
}

func (s *Service) AddLineItem(ctx context.Context, id string, ref pricing.ProductRef) (*Result, error) {
	return s.apply(ctx, id, func(o pricing.Order) (pricing.Order, error) {
		return o.AddLineItem(ref)
	})
}

func (s *Service) RemoveLineItem(ctx context.Context, id string, item int) (*Result, error) {
	return s.apply(ctx, id, func(o pricing.Order) (pricing.Order, error) {
		return o.RemoveLineItem(item)
	})
}

func (s *Service) updateLineItem(ctx context.Context, id string, item int, op func(pricing.LineItem) (pricing.LineItem, error)) (*Result, error) {
	return s.apply(ctx, id, func(o pricing.Order) (pricing.Order, error) {
		li, err := o.LineItem(item)
		if err != nil {
			return o, err
		}
		li, err = op(li)
		if err != nil {
			return o, err
		}
		return o.WithLineItem(item, li)
	})
}

func (s *Service) AddTier(ctx context.Context, id string, item int, tier pricing.PriceTier) (*Result, error) {
	return s.updateLineItem(ctx, id, item, func(li pricing.LineItem) (pricing.LineItem, error) {
		return li.AddTier(tier)
	})
}

func (s *Service) ReplaceTier(ctx context.Context, id string, item, index int, tier pricing.PriceTier) (*Result, error) {
	return s.updateLineItem(ctx, id, item, func(li pricing.LineItem) (pricing.LineItem, error) {
		return li.ReplaceTier(index, tier)
	})
}

func (s *Service) RemoveTier(ctx context.Context, id string, item, index int) (*Result, error) {
	return s.updateLineItem(ctx, id, item, func(li pricing.LineItem) (pricing.LineItem, error) {
		return li.RemoveTier(index)
	})
}

// Export builds the printable payload, resolving products against the
// flower catalog.
func (s *Service) Export(ctx context.Context, id string) (pricing.ExportPayload, error) {
	o, err := s.Get(ctx, id)
	if err != nil {
		return pricing.ExportPayload{}, err
	}
	lookup, err := s.catalogLookup(ctx)
	if err != nil {
		return pricing.ExportPayload{}, err
	}
	return pricing.Export(o, lookup), nil
}

func (s *Service) catalogLookup(ctx context.Context) (pricing.CatalogLookup, error) {
	def, err := s.collections.Views().Get(view.Flowers)
	if err != nil {
		return nil, err
	}
	records, err := s.collections.All(ctx, view.Flowers)
	if err != nil {
		return nil, err
	}

	byID := make(map[pricing.ProductRef]query.Record, len(records))
	for _, r := range records {
		if id := r.ID(); id != "" {
			byID[pricing.ProductRef(id)] = r
		}
	}

	fields := def.Catalog
	if fields == nil {
		fields = &view.CatalogFields{}
	}
	return func(ref pricing.ProductRef) (pricing.CatalogEntry, bool) {
		r, ok := byID[ref]
		if !ok {
			return pricing.CatalogEntry{}, false
		}
		return fields.Entry(r), true
	}, nil
}
