package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/jperram92/JamesCRM-sub003/internal/document/domain"
	"gorm.io/gorm"
)

type documentRepository struct{}

// Provide returns the gorm-backed generated-document repository.
func Provide() domain.Repository {
	return &documentRepository{}
}

func (r *documentRepository) Upsert(ctx context.Context, db *gorm.DB, doc *domain.GeneratedDocument) error {
	if db == nil || doc == nil {
		return errors.New("document_repository_unavailable")
	}
	now := time.Now().UTC()
	return db.WithContext(ctx).Exec(
		`INSERT INTO generated_documents (id, entity_type, entity_id, document_type, storage_path, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (entity_type, entity_id, document_type)
		 DO UPDATE SET storage_path = excluded.storage_path, updated_at = excluded.updated_at`,
		doc.ID,
		doc.EntityType,
		doc.EntityID,
		doc.DocumentType,
		doc.StoragePath,
		now,
		now,
	).Error
}

func (r *documentRepository) FindByEntity(ctx context.Context, db *gorm.DB, entityType string, entityID snowflake.ID, documentType string) (*domain.GeneratedDocument, error) {
	if db == nil {
		return nil, errors.New("document_repository_unavailable")
	}
	var doc domain.GeneratedDocument
	err := db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ? AND document_type = ?", entityType, entityID, documentType).
		First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}
