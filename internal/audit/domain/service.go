package domain

import "context"

// Service records audit log entries. The acting principal is read from the
// request context (see auditcontext).
type Service interface {
	Record(ctx context.Context, action, targetType string, targetID *string, metadata map[string]any) error
}
