// Package render turns an aggregated shopping list into a downloadable
// document.
package render

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/pkg/errors"

	"github.com/pageza/foodgram/backend/internal/types"
)

// Format is a shopping list document format.
type Format string

const (
	TXT Format = "txt"
	CSV Format = "csv"
	PDF Format = "pdf"
)

const title = "Shopping list"

// ParseFormat accepts txt, csv and pdf, case-insensitively. An empty value
// means txt.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return TXT, nil
	case TXT, CSV, PDF:
		return f, nil
	default:
		return "", errors.Errorf("unsupported format %q", s)
	}
}

// ContentType is the MIME type served for f.
func (f Format) ContentType() string {
	switch f {
	case CSV:
		return "text/csv; charset=utf-8"
	case PDF:
		return "application/pdf"
	default:
		return "text/plain; charset=utf-8"
	}
}

// Filename is the attachment name for f.
func (f Format) Filename() string {
	return "shopping_list." + string(f)
}

// Document is a rendered shopping list.
type Document struct {
	Format Format
	Body   []byte
}

// ShoppingList renders items in format f.
func ShoppingList(f Format, items []types.ShoppingListItem, generatedAt time.Time) (*Document, error) {
	var (
		body []byte
		err  error
	)
	switch f {
	case TXT:
		body = renderText(items, generatedAt)
	case CSV:
		body, err = renderCSV(items)
	case PDF:
		body, err = renderPDF(items, generatedAt)
	default:
		err = errors.Errorf("unsupported format %q", f)
	}
	if err != nil {
		return nil, err
	}
	return &Document{Format: f, Body: body}, nil
}

func line(item types.ShoppingListItem) string {
	return fmt.Sprintf("%s (%s) - %d", item.Name, item.MeasurementUnit, item.Amount)
}

func renderText(items []types.ShoppingListItem, generatedAt time.Time) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s)\n\n", title, generatedAt.Format("2006-01-02"))
	if len(items) == 0 {
		b.WriteString("Your shopping cart is empty.\n")
	}
	for i, item := range items {
		fmt.Fprintf(&b, "%d. %s\n", i+1, line(item))
	}
	return []byte(b.String())
}

func renderCSV(items []types.ShoppingListItem) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"name", "measurement_unit", "amount"}); err != nil {
		return nil, errors.Wrap(err, "failed to write csv header")
	}
	for _, item := range items {
		if err := w.Write([]string{item.Name, item.MeasurementUnit, strconv.FormatInt(item.Amount, 10)}); err != nil {
			return nil, errors.Wrap(err, "failed to write csv row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, errors.Wrap(err, "failed to flush csv")
	}
	return buf.Bytes(), nil
}

// DejaVu covers Latin, Cyrillic and Greek; the core PDF fonts stop at cp1252.
var (
	//go:embed fonts/DejaVuSansCondensed.ttf
	fontRegular []byte
	//go:embed fonts/DejaVuSansCondensed-Bold.ttf
	fontBold []byte
)

const fontFamily = "DejaVu"

func renderPDF(items []types.ShoppingListItem, generatedAt time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetCreationDate(generatedAt)
	pdf.AddUTF8FontFromBytes(fontFamily, "", fontRegular)
	pdf.AddUTF8FontFromBytes(fontFamily, "B", fontBold)
	pdf.AddPage()

	pdf.SetFont(fontFamily, "B", 16)
	pdf.CellFormat(0, 10, title, "", 1, "L", false, 0, "")
	pdf.SetFont(fontFamily, "", 10)
	pdf.CellFormat(0, 6, generatedAt.Format("2006-01-02"), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont(fontFamily, "B", 11)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(100, 8, "Ingredient", "1", 0, "L", true, 0, "")
	pdf.CellFormat(40, 8, "Unit", "1", 0, "L", true, 0, "")
	pdf.CellFormat(40, 8, "Amount", "1", 1, "R", true, 0, "")

	pdf.SetFont(fontFamily, "", 11)
	for _, item := range items {
		pdf.CellFormat(100, 7, item.Name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 7, item.MeasurementUnit, "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 7, strconv.FormatInt(item.Amount, 10), "1", 1, "R", false, 0, "")
	}
	if len(items) == 0 {
		pdf.CellFormat(180, 7, "Your shopping cart is empty.", "1", 1, "C", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, errors.Wrap(err, "failed to render pdf")
	}
	return buf.Bytes(), nil
}
