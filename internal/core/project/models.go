package project

import "github.com/eventstock/eventstock/internal/core/query"

// productsField holds a project's assigned products.
const productsField = "produkty"

// Assignment is one product booked for a project. ProductID keeps the JSON
// type it was stored with.
type Assignment struct {
	ProductID any `mapstructure:"produktId" json:"produktId"`
	Quantity  int `mapstructure:"ilosc" json:"ilosc"`
}

func (a Assignment) Key() string {
	return query.Format(a.ProductID)
}

type AddProductRequest struct {
	ProductID any `json:"productId" binding:"required"`
	Quantity  int `json:"quantity"`
}

// AssignedProduct is an assignment joined with the product record.
type AssignedProduct struct {
	ProductID any    `json:"productId"`
	Quantity  int    `json:"quantity"`
	Name      string `json:"name"`
	Known     bool   `json:"known"`
}

type Result struct {
	Project   query.Record
	Persisted bool
}
