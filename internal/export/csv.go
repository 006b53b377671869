package export

import (
	"context"
	"encoding/csv"
	"io"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/eventstock/eventstock/internal/core/pricing"
)

type csvRow struct {
	Position   int    `csv:"Lp."`
	ProductRef string `csv:"Produkt"`
	Name       string `csv:"Nazwa"`
	Variant    string `csv:"Odmiana"`
	Color      string `csv:"Kolor"`
	Height     string `csv:"Wysokość"`
	Tiers      string `csv:"Ceny / ilości"`
	Quantity   int    `csv:"Ilość"`
}

// CSV renders the item table only; header details stay in the xlsx sheet.
type CSV struct {
	Comma rune
}

func (c *CSV) ContentType() string { return "text/csv; charset=utf-8" }
func (c *CSV) Extension() string   { return ".csv" }

func (c *CSV) Render(_ context.Context, payload pricing.ExportPayload, w io.Writer) error {
	rows := make([]*csvRow, 0, len(payload.Rows))
	for _, r := range payload.Rows {
		rows = append(rows, &csvRow{
			Position:   r.Position,
			ProductRef: string(r.ProductRef),
			Name:       r.Name,
			Variant:    r.Variant,
			Color:      r.Color,
			Height:     r.Height,
			Tiers:      strings.Join(r.Tiers, "; "),
			Quantity:   r.Quantity,
		})
	}

	cw := csv.NewWriter(w)
	if c.Comma != 0 {
		cw.Comma = c.Comma
	}
	return gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(cw))
}
