package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/jperram92/JamesCRM-sub003/internal/quote/domain"
	"gorm.io/gorm"
)

type repository struct{}

// Provide returns the gorm-backed quote repository.
func Provide() domain.Repository {
	return &repository{}
}

func (r *repository) Insert(ctx context.Context, db *gorm.DB, quote *domain.Quote) error {
	return db.WithContext(ctx).Create(quote).Error
}

func (r *repository) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Quote, error) {
	var quote domain.Quote
	err := db.WithContext(ctx).
		Preload("LineItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, id ASC")
		}).
		First(&quote, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrQuoteNotFound
	}
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

func (r *repository) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]*domain.Quote, error) {
	query := db.WithContext(ctx).Model(&domain.Quote{})
	if filter.DealID != 0 {
		query = query.Where("deal_id = ?", filter.DealID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var quotes []*domain.Quote
	if err := query.Order("created_at DESC, id DESC").Find(&quotes).Error; err != nil {
		return nil, err
	}
	return quotes, nil
}

// UpdateStatus performs the conditional transition write. The WHERE clause
// pins the expected current status, so two concurrent transitions cannot
// both succeed; the loser sees RowsAffected == 0.
func (r *repository) UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, from, to domain.QuoteStatus, change domain.StatusChange) (bool, error) {
	updates := map[string]any{
		"status":     to,
		"updated_at": time.Now().UTC(),
	}
	if change.RejectionReason != nil {
		updates["rejection_reason"] = *change.RejectionReason
	}
	if change.SentAt != nil {
		updates["sent_at"] = *change.SentAt
	}
	if change.DecidedAt != nil {
		updates["decided_at"] = *change.DecidedAt
	}

	result := db.WithContext(ctx).
		Model(&domain.Quote{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
