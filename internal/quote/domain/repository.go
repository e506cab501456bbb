package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// StatusChange carries the columns written alongside a status transition.
// Nil fields keep their current value.
type StatusChange struct {
	RejectionReason *string
	SentAt          *time.Time
	DecidedAt       *time.Time
}

// ListFilter narrows quote listings. Zero values mean no constraint.
type ListFilter struct {
	DealID snowflake.ID
	Status QuoteStatus
	Limit  int
}

// Repository persists quotes. UpdateStatus is a compare-and-set: the row is
// updated only while it still holds the expected status, and the boolean
// reports whether the write landed.
type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, quote *Quote) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Quote, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]*Quote, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, from, to QuoteStatus, change StatusChange) (bool, error)
}
