// Package export renders order export payloads as printable documents.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/eventstock/eventstock/internal/core/pricing"
)

// Renderer writes one order document in a specific format.
type Renderer interface {
	Render(ctx context.Context, payload pricing.ExportPayload, w io.Writer) error
	ContentType() string
	Extension() string
}

const (
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// New returns the renderer for format. Images are only used by xlsx.
func New(format string, images ImageSource, logo string) (Renderer, error) {
	switch strings.ToLower(format) {
	case FormatXLSX:
		return &XLSX{Images: images, Logo: logo}, nil
	case FormatCSV:
		return &CSV{Comma: ';'}, nil
	case FormatJSON:
		return JSON{}, nil
	}
	return nil, fmt.Errorf("unsupported export format: %q", format)
}

type JSON struct{}

func (JSON) Render(_ context.Context, payload pricing.ExportPayload, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

func (JSON) ContentType() string { return "application/json; charset=utf-8" }
func (JSON) Extension() string   { return ".json" }

var unsafeFileChars = regexp.MustCompile(`[^\p{L}\p{N}._-]+`)

// FileName derives a download name from the order number, e.g.
// "ZAM/2024/01" -> "zamowienie-ZAM-2024-01.xlsx".
func FileName(orderNumber string, r Renderer) string {
	base := strings.Trim(unsafeFileChars.ReplaceAllString(orderNumber, "-"), "-")
	if base == "" {
		return "zamowienie" + r.Extension()
	}
	return "zamowienie-" + base + r.Extension()
}
