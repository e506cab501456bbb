package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// GeneratedDocument is a pointer to a stored binary, not the binary itself.
// One row per (entity, document type); regeneration updates the row in place.
type GeneratedDocument struct {
	ID           snowflake.ID `gorm:"primaryKey"`
	EntityType   string       `gorm:"type:text;not null;uniqueIndex:ux_generated_documents_entity,priority:1"`
	EntityID     snowflake.ID `gorm:"not null;uniqueIndex:ux_generated_documents_entity,priority:2"`
	DocumentType string       `gorm:"type:text;not null;uniqueIndex:ux_generated_documents_entity,priority:3"`
	StoragePath  string       `gorm:"type:text;not null"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (GeneratedDocument) TableName() string { return "generated_documents" }

type Repository interface {
	Upsert(ctx context.Context, db *gorm.DB, doc *GeneratedDocument) error
	FindByEntity(ctx context.Context, db *gorm.DB, entityType string, entityID snowflake.ID, documentType string) (*GeneratedDocument, error)
}
