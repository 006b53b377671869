package pricing

import (
	"errors"
	"fmt"
	"slices"
)

var (
	ErrDuplicateLineItem = errors.New("product already has a line item in this order")
	ErrIndexOutOfRange   = errors.New("index out of range")
	ErrUnknownStatus     = errors.New("unknown order status")
	ErrEmptyProductRef   = errors.New("product reference is empty")
	ErrMalformedOrder    = errors.New("order document is malformed")

	ErrInvalidTier         = errors.New("invalid price tier")
	ErrNegativePrice       = fmt.Errorf("%w: price must not be negative", ErrInvalidTier)
	ErrInvertedRange       = fmt.Errorf("%w: price from exceeds price to", ErrInvalidTier)
	ErrNonPositiveQuantity = fmt.Errorf("%w: quantity must be at least 1", ErrInvalidTier)
)

// Validate checks the tier invariants: 0 <= PriceFrom <= PriceTo and Quantity >= 1.
func (t PriceTier) Validate() error {
	if t.PriceFrom.IsNegative() || t.PriceTo.IsNegative() {
		return ErrNegativePrice
	}
	if t.PriceFrom.GreaterThan(t.PriceTo) {
		return ErrInvertedRange
	}
	if t.Quantity < 1 {
		return ErrNonPositiveQuantity
	}
	return nil
}

// Validate checks a whole order: every line item names a distinct product
// and every tier is valid.
func (o Order) Validate() error {
	seen := make(map[ProductRef]bool, len(o.LineItems))
	for i, li := range o.LineItems {
		if li.ProductRef == "" {
			return fmt.Errorf("%w: line item %d", ErrEmptyProductRef, i)
		}
		if seen[li.ProductRef] {
			return fmt.Errorf("%w: %s", ErrDuplicateLineItem, li.ProductRef)
		}
		seen[li.ProductRef] = true
		for j, t := range li.Tiers {
			if err := t.Validate(); err != nil {
				return fmt.Errorf("line item %d tier %d: %w", i, j, err)
			}
		}
	}
	return nil
}

func (o Order) indexOf(ref ProductRef) int {
	return slices.IndexFunc(o.LineItems, func(li LineItem) bool {
		return li.ProductRef == ref
	})
}

// HasProduct reports whether ref already has a line item.
func (o Order) HasProduct(ref ProductRef) bool {
	return o.indexOf(ref) >= 0
}

// AddLineItem appends an empty line item for ref.
func (o Order) AddLineItem(ref ProductRef) (Order, error) {
	if ref == "" {
		return o, ErrEmptyProductRef
	}
	if o.HasProduct(ref) {
		return o, fmt.Errorf("%w: %s", ErrDuplicateLineItem, ref)
	}
	out := o
	out.LineItems = append(slices.Clone(o.LineItems), LineItem{ProductRef: ref, Tiers: []PriceTier{}})
	return out, nil
}

func (o Order) RemoveLineItem(index int) (Order, error) {
	if index < 0 || index >= len(o.LineItems) {
		return o, fmt.Errorf("%w: line item %d of %d", ErrIndexOutOfRange, index, len(o.LineItems))
	}
	out := o
	out.LineItems = slices.Delete(slices.Clone(o.LineItems), index, index+1)
	return out, nil
}

// LineItem returns a copy of the line item at index.
func (o Order) LineItem(index int) (LineItem, error) {
	if index < 0 || index >= len(o.LineItems) {
		return LineItem{}, fmt.Errorf("%w: line item %d of %d", ErrIndexOutOfRange, index, len(o.LineItems))
	}
	li := o.LineItems[index]
	li.Tiers = slices.Clone(li.Tiers)
	return li, nil
}

// WithLineItem replaces the line item at index. The product reference must
// not collide with another line item.
func (o Order) WithLineItem(index int, li LineItem) (Order, error) {
	if index < 0 || index >= len(o.LineItems) {
		return o, fmt.Errorf("%w: line item %d of %d", ErrIndexOutOfRange, index, len(o.LineItems))
	}
	if at := o.indexOf(li.ProductRef); at >= 0 && at != index {
		return o, fmt.Errorf("%w: %s", ErrDuplicateLineItem, li.ProductRef)
	}
	out := o
	out.LineItems = slices.Clone(o.LineItems)
	out.LineItems[index] = li
	return out, nil
}

func (li LineItem) AddTier(t PriceTier) (LineItem, error) {
	if err := t.Validate(); err != nil {
		return li, err
	}
	out := li
	out.Tiers = append(slices.Clone(li.Tiers), t)
	return out, nil
}

// ReplaceTier edits the tier at index, validating the new value first.
func (li LineItem) ReplaceTier(index int, t PriceTier) (LineItem, error) {
	if index < 0 || index >= len(li.Tiers) {
		return li, fmt.Errorf("%w: tier %d of %d", ErrIndexOutOfRange, index, len(li.Tiers))
	}
	if err := t.Validate(); err != nil {
		return li, err
	}
	out := li
	out.Tiers = slices.Clone(li.Tiers)
	out.Tiers[index] = t
	return out, nil
}

func (li LineItem) RemoveTier(index int) (LineItem, error) {
	if index < 0 || index >= len(li.Tiers) {
		return li, fmt.Errorf("%w: tier %d of %d", ErrIndexOutOfRange, index, len(li.Tiers))
	}
	out := li
	out.Tiers = slices.Delete(slices.Clone(li.Tiers), index, index+1)
	return out, nil
}

func (li LineItem) TotalQuantity() int {
	total := 0
	for _, t := range li.Tiers {
		total += t.Quantity
	}
	return total
}

// Export resolves every line item against the catalog, in order. Unknown
// products keep their tiers and print placeholders for catalog fields.
func Export(o Order, lookup CatalogLookup) ExportPayload {
	payload := ExportPayload{
		OrderNumber:     o.OrderNumber,
		Status:          o.Status,
		Supplier:        o.Supplier,
		Project:         o.Project,
		CreatedDate:     o.CreatedDate,
		FulfillmentDate: o.FulfillmentDate,
		Notes:           o.Notes,
		Rows:            make([]ExportRow, 0, len(o.LineItems)),
	}

	for i, li := range o.LineItems {
		row := ExportRow{
			Position:   i + 1,
			ProductRef: li.ProductRef,
			Name:       Placeholder,
			Variant:    Placeholder,
			Color:      Placeholder,
			Height:     Placeholder,
			Tiers:      make([]string, 0, len(li.Tiers)),
			Quantity:   li.TotalQuantity(),
		}
		if lookup != nil {
			if entry, ok := lookup(li.ProductRef); ok {
				row.Resolved = true
				row.Name = orPlaceholder(entry.Name)
				row.Variant = orPlaceholder(entry.Variant)
				row.Color = orPlaceholder(entry.Color)
				row.Height = orPlaceholder(entry.Height)
				row.ImageRef = entry.ImageRef
			}
		}
		for _, t := range li.Tiers {
			row.Tiers = append(row.Tiers, t.String())
		}
		payload.TotalQuantity += row.Quantity
		payload.Rows = append(payload.Rows, row)
	}
	return payload
}

func orPlaceholder(s string) string {
	if s == "" {
		return Placeholder
	}
	return s
}
