package domain

import (
	"context"
	"errors"
)

var (
	ErrQuoteNotFound     = errors.New("quote_not_found")
	ErrInvalidQuoteID    = errors.New("invalid_quote_id")
	ErrInvalidTransition = errors.New("invalid_transition")
	ErrInvalidLineItem   = errors.New("invalid_line_item")
	ErrMissingDeal       = errors.New("missing_deal")
	ErrMissingReason     = errors.New("missing_rejection_reason")
	ErrInvalidRecipient  = errors.New("invalid_recipient")
	ErrDeliveryFailed    = errors.New("delivery_failed")
)

// CreateQuoteRequest carries the payload for drafting a new quote. Company
// and contact default to the deal's when omitted.
type CreateQuoteRequest struct {
	DealID         string            `json:"deal_id" binding:"required"`
	CompanyID      string            `json:"company_id"`
	ContactID      string            `json:"contact_id"`
	Currency       string            `json:"currency"`
	TaxBasisPoints int64             `json:"tax_basis_points"`
	LineItems      []LineItemRequest `json:"line_items" binding:"required,min=1"`
}

// LineItemRequest is one priced row of a create request.
type LineItemRequest struct {
	Description string  `json:"description" binding:"required"`
	Quantity    float64 `json:"quantity" binding:"required"`
	UnitPrice   int64   `json:"unit_price"`
}

// SendQuoteRequest carries the delivery parameters for sending a quote.
// Subject and body fall back to defaults derived from the quote number.
type SendQuoteRequest struct {
	To      string `json:"to" binding:"required"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// ListRequest filters quote listings.
type ListRequest struct {
	DealID string
	Status string
	Limit  int
}

// Service owns the quote lifecycle. All status writes go through Send,
// Approve and Reject; there is no generic status update.
type Service interface {
	Create(ctx context.Context, req CreateQuoteRequest) (*Quote, error)
	GetByID(ctx context.Context, id string) (*Quote, error)
	List(ctx context.Context, req ListRequest) ([]*Quote, error)
	Send(ctx context.Context, id string, req SendQuoteRequest) (*Quote, error)
	Approve(ctx context.Context, id string) (*Quote, error)
	Reject(ctx context.Context, id string, reason string) (*Quote, error)
}
