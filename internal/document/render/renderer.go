package render

import (
	"errors"
	"time"
)

// Template identifiers accepted by the renderer.
const (
	TemplateQuote    = "quote-template"
	TemplateContract = "contract-template"
	TemplateInvoice  = "invoice-template"
)

// RenderInput is the deterministic input used for document rendering.
// Identical input must produce an identical binary, which is what makes
// regeneration on re-send safe.
type RenderInput struct {
	Document  DocumentView
	Company   CompanyView
	Recipient RecipientView
	Items     []LineItemView
	Totals    TotalsView
}

type DocumentView struct {
	Number   string
	IssuedAt time.Time
	Notes    string
}

type CompanyView struct {
	Name    string
	Address string
}

type RecipientView struct {
	Name  string
	Email string
}

type LineItemView struct {
	Description string
	Quantity    float64
	UnitPrice   int64
	Amount      int64
}

type TotalsView struct {
	Subtotal int64
	Tax      int64
	Total    int64
	Currency string
}

type Renderer interface {
	Render(templateID string, input RenderInput) ([]byte, error)
}

var (
	ErrUnknownTemplate = errors.New("unknown_template")
	ErrMissingField    = errors.New("missing_required_field")
)
