package domain

import "context"

// Mailer is the raw mail transport. It returns the provider message ID on
// success; any error is a transport failure the Service turns into a failed
// delivery log entry.
type Mailer interface {
	Send(ctx context.Context, msg Message) (string, error)
}
