package order

import (
	"github.com/shopspring/decimal"

	"github.com/eventstock/eventstock/internal/core/pricing"
)

type CreateOrderRequest struct {
	OrderNumber     string `json:"orderNumber"`
	Status          string `json:"status"`
	CreatedDate     string `json:"createdDate"`
	FulfillmentDate string `json:"fulfillmentDate"`
	Supplier        string `json:"supplier"`
	Project         string `json:"project"`
	Notes           string `json:"notes"`
}

// UpdateOrderRequest changes order details; nil fields are left as they are.
type UpdateOrderRequest struct {
	OrderNumber     *string `json:"orderNumber"`
	Status          *string `json:"status"`
	CreatedDate     *string `json:"createdDate"`
	FulfillmentDate *string `json:"fulfillmentDate"`
	Supplier        *string `json:"supplier"`
	Project         *string `json:"project"`
	Notes           *string `json:"notes"`
}

type AddLineItemRequest struct {
	ProductRef pricing.ProductRef `json:"productRef" binding:"required"`
}

type TierRequest struct {
	PriceFrom decimal.Decimal `json:"priceFrom"`
	PriceTo   decimal.Decimal `json:"priceTo"`
	Quantity  int             `json:"quantity"`
}

func (r TierRequest) Tier() pricing.PriceTier {
	return pricing.PriceTier{PriceFrom: r.PriceFrom, PriceTo: r.PriceTo, Quantity: r.Quantity}
}

type Result struct {
	Order     pricing.Order
	Persisted bool
}
