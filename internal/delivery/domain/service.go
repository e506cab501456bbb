package domain

import (
	"context"
	"errors"
)

// Attachment is an in-memory binary attached to an outbound message.
type Attachment struct {
	Name        string
	Content     []byte
	ContentType string
}

// Message is an addressed outbound email.
type Message struct {
	To          string
	From        string
	Subject     string
	Body        string
	Attachments []Attachment
}

// Result reports the outcome of a dispatch attempt. A transport failure is
// reported through Accepted=false, not through an error, so the caller can
// consult the already-written delivery log entry and decide what to do.
type Result struct {
	Accepted          bool
	ProviderMessageID string
}

// Service dispatches messages and records one delivery log entry per
// attempt, success or failure.
type Service interface {
	Send(ctx context.Context, msg Message) (Result, error)
	ListLogs(ctx context.Context, filter LogFilter) ([]*DeliveryLog, error)
}

var (
	ErrMissingRecipient = errors.New("missing_recipient")
	ErrMissingSender    = errors.New("missing_sender")
)
