package view

import (
	"encoding/json"
	"fmt"

	"github.com/eventstock/eventstock/internal/core/pricing"
	"github.com/eventstock/eventstock/internal/core/query"
)

// Collection names served by the admin panel.
const (
	Flowers   = "kwiaty"
	Products  = "produkty"
	Suppliers = "dostawcy"
	Projects  = "projekty"
	Orders    = "zamowienia"
)

func FlowersDefinition() *Definition {
	return &Definition{
		Name:         Flowers,
		Title:        "Kwiaty",
		SearchFields: []string{"nazwa", "odmiana", "kolor", "dostawca"},
		Filters: map[string]FieldKind{
			"kolor":    KindString,
			"dostawca": KindString,
			"cena":     KindNumber,
		},
		DefaultSort:      "nazwa",
		DefaultDirection: query.Ascending,
		MissingLast:      []string{"cena", "wysokosc"},
		Schema: NewSchema("Kwiat", map[string]*SchemaProperty{
			"id":       anyValue("Identyfikator"),
			"nazwa":    text("Nazwa"),
			"odmiana":  optionalText("Odmiana"),
			"kolor":    optionalText("Kolor"),
			"wysokosc": anyValue("Wysokość"),
			"cena":     price("Cena"),
			"dostawca": optionalText("Dostawca"),
			"zdjecie":  optionalText("Zdjęcie"),
		}, []string{"nazwa"}),
		Catalog: &CatalogFields{
			Name:    "nazwa",
			Variant: "odmiana",
			Color:   "kolor",
			Height:  "wysokosc",
			Image:   "zdjecie",
		},
	}
}

func ProductsDefinition() *Definition {
	return &Definition{
		Name:         Products,
		Title:        "Produkty dekoracyjne",
		SearchFields: []string{"nazwa", "kategoria", "opis"},
		Filters: map[string]FieldKind{
			"kategoria": KindString,
			"dostepny":  KindBool,
		},
		DefaultSort:      "nazwa",
		DefaultDirection: query.Ascending,
		MissingLast:      []string{"cena"},
		Schema: NewSchema("Produkt", map[string]*SchemaProperty{
			"id":        anyValue("Identyfikator"),
			"nazwa":     text("Nazwa"),
			"kategoria": optionalText("Kategoria"),
			"ilosc":     {Type: PropertyTypeInteger, Nullable: true, Title: "Ilość", Minimum: minimum(0)},
			"cena":      price("Cena"),
			"dostepny":  {Type: PropertyTypeBoolean, Title: "Dostępny"},
			"opis":      optionalText("Opis"),
			"zdjecie":   optionalText("Zdjęcie"),
		}, []string{"nazwa"}),
	}
}

func SuppliersDefinition() *Definition {
	return &Definition{
		Name:         Suppliers,
		Title:        "Dostawcy",
		SearchFields: []string{"nazwa", "kontakt", "email", "telefon", "miasto"},
		Filters: map[string]FieldKind{
			"miasto": KindString,
		},
		DefaultSort:      "nazwa",
		DefaultDirection: query.Ascending,
		Schema: NewSchema("Dostawca", map[string]*SchemaProperty{
			"id":      anyValue("Identyfikator"),
			"nazwa":   text("Nazwa"),
			"kontakt": optionalText("Osoba kontaktowa"),
			"telefon": optionalText("Telefon"),
			"email":   optionalText("E-mail"),
			"miasto":  optionalText("Miasto"),
			"uwagi":   optionalText("Uwagi"),
		}, []string{"nazwa"}),
	}
}

func ProjectsDefinition() *Definition {
	return &Definition{
		Name:         Projects,
		Title:        "Projekty",
		SearchFields: []string{"nazwa", "miejsce", "klient"},
		Filters: map[string]FieldKind{
			"status": KindString,
			"klient": KindString,
		},
		DefaultSort:      "data",
		DefaultDirection: query.Descending,
		MissingLast:      []string{"data"},
		Schema: NewSchema("Projekt", map[string]*SchemaProperty{
			"id":      anyValue("Identyfikator"),
			"nazwa":   text("Nazwa"),
			"data":    optionalText("Data wydarzenia"),
			"miejsce": optionalText("Miejsce"),
			"klient":  optionalText("Klient"),
			"status":  optionalText("Status"),
			"produkty": {
				Type:  PropertyTypeArray,
				Title: "Produkty",
				Items: &SchemaProperty{
					Type: PropertyTypeObject,
					Properties: map[string]*SchemaProperty{
						"produktId": anyValue("Produkt"),
						"ilosc":     {Type: PropertyTypeInteger, Minimum: minimum(1)},
					},
					Required: []string{"produktId", "ilosc"},
				},
			},
		}, []string{"nazwa"}),
	}
}

func OrdersDefinition() *Definition {
	statuses := make([]interface{}, 0, 3)
	for _, st := range pricing.Statuses() {
		statuses = append(statuses, string(st))
	}

	tier := &SchemaProperty{
		Type: PropertyTypeObject,
		Properties: map[string]*SchemaProperty{
			"priceFrom": {Type: PropertyTypeNumber, Minimum: minimum(0)},
			"priceTo":   {Type: PropertyTypeNumber, Minimum: minimum(0)},
			"quantity":  {Type: PropertyTypeInteger, Minimum: minimum(1)},
		},
		Required: []string{"priceFrom", "priceTo", "quantity"},
	}

	return &Definition{
		Name:         Orders,
		Title:        "Zamówienia kwiatów",
		SearchFields: []string{"orderNumber", "supplier", "project", "notes"},
		Filters: map[string]FieldKind{
			"status":   KindString,
			"supplier": KindString,
			"project":  KindString,
		},
		DefaultSort:      "createdDate",
		DefaultDirection: query.Descending,
		MissingLast:      []string{"createdDate", "fulfillmentDate"},
		Schema: NewSchema("Zamówienie", map[string]*SchemaProperty{
			"id":              anyValue("Identyfikator"),
			"orderNumber":     text("Numer zamówienia"),
			"status":          {Type: PropertyTypeString, Title: "Status", Enum: statuses},
			"createdDate":     optionalText("Data utworzenia"),
			"fulfillmentDate": optionalText("Data realizacji"),
			"supplier":        optionalText("Dostawca"),
			"project":         optionalText("Projekt"),
			"notes":           optionalText("Uwagi"),
			"lineItems": {
				Type:  PropertyTypeArray,
				Title: "Pozycje",
				Items: &SchemaProperty{
					Type: PropertyTypeObject,
					Properties: map[string]*SchemaProperty{
						"productRef": anyValue("Produkt"),
						"tiers":      {Type: PropertyTypeArray, Items: tier},
					},
					Required: []string{"productRef"},
				},
			},
		}, []string{"orderNumber", "status"}),
		Check: checkOrder,
	}
}

// checkOrder holds order records to the pricing rules: one line item per
// product and valid tiers.
func checkOrder(r query.Record) error {
	doc := r.Clone()
	doc["id"] = r.ID()
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: %v", pricing.ErrMalformedOrder, err)
	}
	o, err := pricing.DecodeOrder(data)
	if err != nil {
		return err
	}
	return o.Validate()
}

// Builtin returns the definitions of every collection the panel manages.
func Builtin() []*Definition {
	return []*Definition{
		FlowersDefinition(),
		ProductsDefinition(),
		SuppliersDefinition(),
		ProjectsDefinition(),
		OrdersDefinition(),
	}
}
