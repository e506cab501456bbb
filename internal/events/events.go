package events

// Quote lifecycle event types published to the outbox.
const (
	EventQuoteSent     = "quote.sent"
	EventQuoteApproved = "quote.approved"
	EventQuoteRejected = "quote.rejected"
)

// QuotePayload captures the minimal data downstream consumers need to react
// to a quote transition.
type QuotePayload struct {
	QuoteID     string `json:"quote_id"`
	QuoteNumber string `json:"quote_number"`
	DealID      string `json:"deal_id,omitempty"`
	Reason      string `json:"reason,omitempty"`
}

// ToMap converts a payload into an outbox-friendly map.
func (p QuotePayload) ToMap() map[string]any {
	payload := map[string]any{
		"quote_id":     p.QuoteID,
		"quote_number": p.QuoteNumber,
	}
	if p.DealID != "" {
		payload["deal_id"] = p.DealID
	}
	if p.Reason != "" {
		payload["reason"] = p.Reason
	}
	return payload
}
