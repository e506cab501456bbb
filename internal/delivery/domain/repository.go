package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type LogFilter struct {
	Recipient string
	Status    string
	StartAt   *time.Time
	EndAt     *time.Time
	Limit     int
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entry *DeliveryLog) error
	List(ctx context.Context, db *gorm.DB, filter LogFilter) ([]*DeliveryLog, error)
}
