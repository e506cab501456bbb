package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

// QuoteStatus is the closed set of workflow states. Transitions are
// validated centrally by the quote service; nothing else writes status.
type QuoteStatus string

const (
	QuoteStatusDraft    QuoteStatus = "draft"
	QuoteStatusSent     QuoteStatus = "sent"
	QuoteStatusApproved QuoteStatus = "approved"
	QuoteStatusRejected QuoteStatus = "rejected"
)

// Valid reports whether the status is a known workflow state.
func (s QuoteStatus) Valid() bool {
	switch s {
	case QuoteStatusDraft, QuoteStatusSent, QuoteStatusApproved, QuoteStatusRejected:
		return true
	}
	return false
}

// Terminal reports whether no further transition is defined from s.
func (s QuoteStatus) Terminal() bool {
	return s == QuoteStatusApproved || s == QuoteStatusRejected
}

// Quote is a priced proposal tied to a deal. Monetary amounts are integer
// minor units. Totals are derived from line items and recomputed whenever
// the items change; they are never written independently.
type Quote struct {
	ID              snowflake.ID    `gorm:"primaryKey"`
	DealID          snowflake.ID    `gorm:"not null;index"`
	CompanyID       snowflake.ID    `gorm:"not null"`
	ContactID       snowflake.ID    `gorm:"not null"`
	QuoteNumber     string          `gorm:"type:text;not null;unique"`
	Status          QuoteStatus     `gorm:"type:text;not null;default:'draft';index"`
	Currency        string          `gorm:"type:text;not null;default:'USD'"`
	SubtotalAmount  int64           `gorm:"not null;default:0"`
	TaxAmount       int64           `gorm:"not null;default:0"`
	TotalAmount     int64           `gorm:"not null;default:0"`
	TaxBasisPoints  int64           `gorm:"not null;default:0"`
	RejectionReason *string         `gorm:"type:text"`
	SentAt          *time.Time
	DecidedAt       *time.Time
	CreatedAt       time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt       time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
	LineItems       []QuoteLineItem `gorm:"foreignKey:QuoteID"`
}

// TableName sets the database table name.
func (Quote) TableName() string { return "quotes" }

// QuoteLineItem is one priced row of a quote.
type QuoteLineItem struct {
	ID          snowflake.ID `gorm:"primaryKey"`
	QuoteID     snowflake.ID `gorm:"not null;index"`
	Position    int          `gorm:"not null;default:0"`
	Description string       `gorm:"type:text;not null"`
	Quantity    float64      `gorm:"not null;default:0"`
	UnitPrice   int64        `gorm:"not null;default:0"`
	Amount      int64        `gorm:"not null;default:0"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (QuoteLineItem) TableName() string { return "quote_line_items" }

// RecomputeTotals derives per-line amounts and the subtotal/tax/total from
// the current line items. total = subtotal + tax always holds afterwards.
func (q *Quote) RecomputeTotals() {
	var subtotal int64
	for i := range q.LineItems {
		item := &q.LineItems[i]
		item.Amount = int64(item.Quantity*float64(item.UnitPrice) + 0.5)
		subtotal += item.Amount
	}
	q.SubtotalAmount = subtotal
	q.TaxAmount = subtotal * q.TaxBasisPoints / 10000
	q.TotalAmount = q.SubtotalAmount + q.TaxAmount
}

// ValidateLineItems checks the line item constraints: at least one item,
// non-empty description, non-negative quantity and unit price.
func ValidateLineItems(items []QuoteLineItem) error {
	if len(items) == 0 {
		return ErrInvalidLineItem
	}
	for _, item := range items {
		if strings.TrimSpace(item.Description) == "" {
			return ErrInvalidLineItem
		}
		if item.Quantity < 0 || item.UnitPrice < 0 {
			return ErrInvalidLineItem
		}
	}
	return nil
}
