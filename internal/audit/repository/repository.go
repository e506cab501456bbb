package repository

import (
	"context"
	"errors"

	"github.com/jperram92/JamesCRM-sub003/internal/audit/domain"
	"gorm.io/gorm"
)

type auditRepository struct{}

// Provide returns the gorm-backed audit repository.
func Provide() domain.Repository {
	return &auditRepository{}
}

func (r *auditRepository) Insert(ctx context.Context, db *gorm.DB, log *domain.AuditLog) error {
	if db == nil || log == nil {
		return errors.New("audit_repository_unavailable")
	}
	return db.WithContext(ctx).Create(log).Error
}

func (r *auditRepository) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]*domain.AuditLog, error) {
	if db == nil {
		return nil, errors.New("audit_repository_unavailable")
	}

	query := db.WithContext(ctx).Model(&domain.AuditLog{})
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.TargetType != "" {
		query = query.Where("target_type = ?", filter.TargetType)
	}
	if filter.TargetID != "" {
		query = query.Where("target_id = ?", filter.TargetID)
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

	var logs []*domain.AuditLog
	err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}
