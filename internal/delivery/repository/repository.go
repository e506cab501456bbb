package repository

import (
	"context"
	"errors"

	"github.com/jperram92/JamesCRM-sub003/internal/delivery/domain"
	"gorm.io/gorm"
)

type deliveryLogRepository struct{}

// Provide returns the gorm-backed delivery log repository.
func Provide() domain.Repository {
	return &deliveryLogRepository{}
}

func (r *deliveryLogRepository) Insert(ctx context.Context, db *gorm.DB, entry *domain.DeliveryLog) error {
	if db == nil || entry == nil {
		return errors.New("delivery_repository_unavailable")
	}
	return db.WithContext(ctx).Create(entry).Error
}

func (r *deliveryLogRepository) List(ctx context.Context, db *gorm.DB, filter domain.LogFilter) ([]*domain.DeliveryLog, error) {
	if db == nil {
		return nil, errors.New("delivery_repository_unavailable")
	}

	query := db.WithContext(ctx).Model(&domain.DeliveryLog{})
	if filter.Recipient != "" {
		query = query.Where("recipient = ?", filter.Recipient)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.StartAt != nil {
		query = query.Where("created_at >= ?", *filter.StartAt)
	}
	if filter.EndAt != nil {
		query = query.Where("created_at < ?", *filter.EndAt)
	}
	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var entries []*domain.DeliveryLog
	err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
