package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/eventstock/eventstock/internal/core/pricing"
)

const (
	sheetName      = "Zamówienie"
	itemRowHeight  = 60
	firstItemRow   = 9
	lastColumn     = "H"
	imageColumn    = 2
	tiersSeparator = "\n"
)

var itemHeader = []string{"Lp.", "Zdjęcie", "Nazwa", "Odmiana", "Kolor", "Wysokość", "Ceny / ilości", "Ilość"}

var columnWidths = map[string]float64{
	"A": 6, "B": 14, "C": 24, "D": 18, "E": 14, "F": 12, "G": 22, "H": 10,
}

// XLSX renders the printable order sheet: a header block, one row per line
// item with its product image, a total row and the notes.
type XLSX struct {
	Images ImageSource
	Logo   string
}

func (x *XLSX) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (x *XLSX) Extension() string { return ".xlsx" }

type sheetStyles struct {
	title, label, header, cell, total int
}

func (x *XLSX) Render(ctx context.Context, payload pricing.ExportPayload, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}
	styles, err := newStyles(f)
	if err != nil {
		return err
	}
	for col, width := range columnWidths {
		if err := f.SetColWidth(sheetName, col, col, width); err != nil {
			return err
		}
	}

	if err := x.writeHeader(ctx, f, styles, payload); err != nil {
		return err
	}
	row, err := x.writeItems(ctx, f, styles, payload.Rows)
	if err != nil {
		return err
	}
	if err := writeFooter(f, styles, row, payload); err != nil {
		return err
	}

	return f.Write(w)
}

func newStyles(f *excelize.File) (sheetStyles, error) {
	var s sheetStyles
	var err error
	border := []excelize.Border{
		{Type: "left", Color: "999999", Style: 1},
		{Type: "right", Color: "999999", Style: 1},
		{Type: "top", Color: "999999", Style: 1},
		{Type: "bottom", Color: "999999", Style: 1},
	}

	if s.title, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14},
	}); err != nil {
		return s, err
	}
	if s.label, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	}); err != nil {
		return s, err
	}
	if s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"E7EEF7"}, Pattern: 1},
		Border:    border,
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	}); err != nil {
		return s, err
	}
	if s.cell, err = f.NewStyle(&excelize.Style{
		Border:    border,
		Alignment: &excelize.Alignment{Vertical: "center", WrapText: true},
	}); err != nil {
		return s, err
	}
	s.total, err = f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Border: border,
	})
	return s, err
}

func (x *XLSX) writeHeader(ctx context.Context, f *excelize.File, st sheetStyles, p pricing.ExportPayload) error {
	title := "Zamówienie kwiatów"
	if p.OrderNumber != "" {
		title += " nr " + p.OrderNumber
	}
	if err := f.SetCellValue(sheetName, "A1", title); err != nil {
		return err
	}
	if err := f.MergeCell(sheetName, "A1", "F1"); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetName, "A1", "A1", st.title); err != nil {
		return err
	}

	details := [][2]string{
		{"Dostawca:", p.Supplier},
		{"Projekt:", p.Project},
		{"Data utworzenia:", p.CreatedDate},
		{"Data realizacji:", p.FulfillmentDate},
		{"Status:", p.Status.Label()},
	}
	for i, d := range details {
		row := i + 3
		if err := f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), d[0]); err != nil {
			return err
		}
		if err := f.MergeCell(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row)); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), st.label); err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), orPlaceholder(d[1])); err != nil {
			return err
		}
	}

	if x.Logo != "" {
		x.embedImage(ctx, f, "G1", x.Logo)
	}
	return nil
}

func (x *XLSX) writeItems(ctx context.Context, f *excelize.File, st sheetStyles, rows []pricing.ExportRow) (int, error) {
	headerRow := firstItemRow - 1
	for i, h := range itemHeader {
		cell, err := excelize.CoordinatesToCellName(i+1, headerRow)
		if err != nil {
			return 0, err
		}
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return 0, err
		}
	}
	if err := f.SetCellStyle(sheetName, fmt.Sprintf("A%d", headerRow), fmt.Sprintf("%s%d", lastColumn, headerRow), st.header); err != nil {
		return 0, err
	}

	row := firstItemRow
	for _, r := range rows {
		values := []interface{}{
			r.Position, "", r.Name, r.Variant, r.Color, r.Height,
			strings.Join(r.Tiers, tiersSeparator), r.Quantity,
		}
		if err := f.SetSheetRow(sheetName, fmt.Sprintf("A%d", row), &values); err != nil {
			return 0, err
		}
		if err := f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("%s%d", lastColumn, row), st.cell); err != nil {
			return 0, err
		}
		if err := f.SetRowHeight(sheetName, row, itemRowHeight); err != nil {
			return 0, err
		}

		if r.ImageRef != "" {
			cell, _ := excelize.CoordinatesToCellName(imageColumn, row)
			x.embedImage(ctx, f, cell, r.ImageRef)
		}
		row++
	}
	return row, nil
}

// embedImage places an image into cell. Missing or unreadable images leave
// the cell empty.
func (x *XLSX) embedImage(ctx context.Context, f *excelize.File, cell, ref string) {
	data, ext, err := loadImage(ctx, x.Images, ref)
	if err != nil {
		if !errors.Is(err, ErrImageNotFound) {
			zap.L().Warn("failed to load export image", zap.String("ref", ref), zap.Error(err))
		}
		return
	}

	err = f.AddPictureFromBytes(sheetName, cell, &excelize.Picture{
		Extension: ext,
		File:      data,
		Format: &excelize.GraphicOptions{
			AutoFit:         true,
			LockAspectRatio: true,
			OffsetX:         2,
			OffsetY:         2,
		},
	})
	if err != nil {
		zap.L().Warn("failed to embed export image", zap.String("ref", ref), zap.Error(err))
	}
}

func writeFooter(f *excelize.File, st sheetStyles, row int, p pricing.ExportPayload) error {
	if err := f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), "Razem:"); err != nil {
		return err
	}
	if err := f.SetCellValue(sheetName, fmt.Sprintf("H%d", row), p.TotalQuantity); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetName, fmt.Sprintf("G%d", row), fmt.Sprintf("H%d", row), st.total); err != nil {
		return err
	}

	notesRow := row + 2
	if err := f.SetCellValue(sheetName, fmt.Sprintf("A%d", notesRow), "Uwagi:"); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetName, fmt.Sprintf("A%d", notesRow), fmt.Sprintf("A%d", notesRow), st.label); err != nil {
		return err
	}
	if err := f.SetCellValue(sheetName, fmt.Sprintf("A%d", notesRow+1), orPlaceholder(p.Notes)); err != nil {
		return err
	}
	return f.MergeCell(sheetName, fmt.Sprintf("A%d", notesRow+1), fmt.Sprintf("%s%d", lastColumn, notesRow+1))
}

func orPlaceholder(s string) string {
	if s == "" {
		return pricing.Placeholder
	}
	return s
}
