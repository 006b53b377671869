package pricing

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// Status is the conventional progression of an order. Any value may be set
// directly; the progression is not enforced.
type Status string

const (
	StatusNew        Status = "new"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

var statuses = []Status{StatusNew, StatusInProgress, StatusCompleted}

func Statuses() []Status {
	return append([]Status(nil), statuses...)
}

func ParseStatus(s string) (Status, error) {
	for _, st := range statuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
}

// Label is the Polish caption printed on order sheets.
func (s Status) Label() string {
	switch s {
	case StatusNew:
		return "Nowe"
	case StatusInProgress:
		return "W realizacji"
	case StatusCompleted:
		return "Zrealizowane"
	}
	return string(s)
}

// ProductRef identifies a catalog record. Catalog ids may be JSON numbers or
// strings; both decode to the same canonical text.
type ProductRef string

func (r *ProductRef) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return fmt.Errorf("product ref: %w", err)
	}
	*r = ProductRef(strings.TrimSpace(s))
	return nil
}

type PriceTier struct {
	PriceFrom decimal.Decimal `json:"priceFrom"`
	PriceTo   decimal.Decimal `json:"priceTo"`
	Quantity  int             `json:"quantity"`
}

func NewPriceTier(from, to float64, quantity int) PriceTier {
	return PriceTier{
		PriceFrom: decimal.NewFromFloat(from),
		PriceTo:   decimal.NewFromFloat(to),
		Quantity:  quantity,
	}
}

// MarshalJSON writes prices as plain JSON numbers, the way order documents
// store them.
func (t PriceTier) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		PriceFrom json.Number `json:"priceFrom"`
		PriceTo   json.Number `json:"priceTo"`
		Quantity  int         `json:"quantity"`
	}{
		PriceFrom: json.Number(t.PriceFrom.String()),
		PriceTo:   json.Number(t.PriceTo.String()),
		Quantity:  t.Quantity,
	})
}

// String renders the tier as printed on the order sheet: "5 - 10 / 3".
func (t PriceTier) String() string {
	return fmt.Sprintf("%s - %s / %d", t.PriceFrom.String(), t.PriceTo.String(), t.Quantity)
}

type LineItem struct {
	ProductRef ProductRef  `json:"productRef"`
	Tiers      []PriceTier `json:"tiers"`
}

type Order struct {
	ID              string     `json:"id"`
	OrderNumber     string     `json:"orderNumber"`
	Status          Status     `json:"status"`
	CreatedDate     string     `json:"createdDate"`
	FulfillmentDate string     `json:"fulfillmentDate"`
	Supplier        string     `json:"supplier"`
	Project         string     `json:"project,omitempty"`
	Notes           string     `json:"notes"`
	LineItems       []LineItem `json:"lineItems"`
}

// DecodeOrder reads an order document. Missing line items and tiers decode
// as empty slices.
func DecodeOrder(data []byte) (Order, error) {
	var o Order
	if err := json.Unmarshal(data, &o); err != nil {
		return Order{}, fmt.Errorf("%w: %v", ErrMalformedOrder, err)
	}
	if o.LineItems == nil {
		o.LineItems = []LineItem{}
	}
	for i := range o.LineItems {
		if o.LineItems[i].Tiers == nil {
			o.LineItems[i].Tiers = []PriceTier{}
		}
	}
	return o, nil
}

// CatalogEntry holds the descriptive fields of a product shown on exports.
type CatalogEntry struct {
	Name     string
	Variant  string
	Color    string
	Height   string
	ImageRef string
}

// CatalogLookup resolves a product reference; ok is false when unknown.
type CatalogLookup func(ref ProductRef) (entry CatalogEntry, ok bool)

// Placeholder is printed for catalog fields of unresolved products.
const Placeholder = "-"

type ExportRow struct {
	Position   int        `json:"position"`
	ProductRef ProductRef `json:"productRef"`
	Resolved   bool       `json:"resolved"`
	Name       string     `json:"name"`
	Variant    string     `json:"variant"`
	Color      string     `json:"color"`
	Height     string     `json:"height"`
	ImageRef   string     `json:"imageRef,omitempty"`
	Tiers      []string   `json:"tiers"`
	Quantity   int        `json:"quantity"`
}

type ExportPayload struct {
	OrderNumber     string      `json:"orderNumber"`
	Status          Status      `json:"status"`
	Supplier        string      `json:"supplier"`
	Project         string      `json:"project,omitempty"`
	CreatedDate     string      `json:"createdDate"`
	FulfillmentDate string      `json:"fulfillmentDate"`
	Notes           string      `json:"notes"`
	Rows            []ExportRow `json:"rows"`
	TotalQuantity   int         `json:"totalQuantity"`
}
