package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

type templateLayout struct {
	title     string
	withItems bool
}

var templates = map[string]templateLayout{
	TemplateQuote:    {title: "Quote", withItems: true},
	TemplateContract: {title: "Contract", withItems: false},
	TemplateInvoice:  {title: "Invoice", withItems: true},
}

// PDFRenderer produces PDF documents with gofpdf core fonts.
type PDFRenderer struct{}

func NewRenderer() Renderer {
	return &PDFRenderer{}
}

func (r *PDFRenderer) Render(templateID string, input RenderInput) ([]byte, error) {
	layout, ok := templates[templateID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTemplate, templateID)
	}
	if err := validate(layout, input); err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("%s %s", layout.title, input.Document.Number), false)
	// Reproducible output needs both calls: sorted catalog writes, since the
	// font dictionaries otherwise come out in map-iteration order, and the
	// metadata clock pinned to the issue date instead of time.Now.
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(input.Document.IssuedAt.UTC())
	pdf.SetModificationDate(input.Document.IssuedAt.UTC())
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, layout.title)
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, fmt.Sprintf("No. %s, issued %s", input.Document.Number, input.Document.IssuedAt.UTC().Format("2006-01-02")))
	pdf.Ln(6)

	if input.Company.Name != "" {
		pdf.Cell(0, 6, input.Company.Name)
		pdf.Ln(6)
	}
	if input.Company.Address != "" {
		pdf.Cell(0, 6, input.Company.Address)
		pdf.Ln(6)
	}
	if input.Recipient.Name != "" || input.Recipient.Email != "" {
		pdf.Cell(0, 6, strings.TrimSpace(fmt.Sprintf("For: %s %s", input.Recipient.Name, input.Recipient.Email)))
		pdf.Ln(6)
	}

	if layout.withItems {
		renderItems(pdf, input)
	}

	if input.Document.Notes != "" {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "", 9)
		pdf.MultiCell(0, 5, input.Document.Notes, "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderItems(pdf *gofpdf.Fpdf, input RenderInput) {
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(100, 7, "Description")
	pdf.Cell(25, 7, "Qty")
	pdf.Cell(30, 7, "Unit Price")
	pdf.Cell(30, 7, "Amount")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range input.Items {
		pdf.Cell(100, 6, truncate(item.Description, 60))
		pdf.Cell(25, 6, formatQuantity(item.Quantity))
		pdf.Cell(30, 6, formatMoney(item.UnitPrice, input.Totals.Currency))
		pdf.Cell(30, 6, formatMoney(item.Amount, input.Totals.Currency))
		pdf.Ln(6)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Subtotal: %s", formatMoney(input.Totals.Subtotal, input.Totals.Currency)))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Tax: %s", formatMoney(input.Totals.Tax, input.Totals.Currency)))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Total: %s", formatMoney(input.Totals.Total, input.Totals.Currency)))
	pdf.Ln(6)
}

func validate(layout templateLayout, input RenderInput) error {
	if strings.TrimSpace(input.Document.Number) == "" {
		return fmt.Errorf("%w: document number", ErrMissingField)
	}
	if input.Document.IssuedAt.IsZero() {
		return fmt.Errorf("%w: issued at", ErrMissingField)
	}
	if layout.withItems && len(input.Items) == 0 {
		return fmt.Errorf("%w: line items", ErrMissingField)
	}
	return nil
}

func formatMoney(amount int64, currency string) string {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = "USD"
	}
	return fmt.Sprintf("%s %.2f", currency, float64(amount)/100.0)
}

func formatQuantity(value float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", value), "0"), ".")
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "..."
}
