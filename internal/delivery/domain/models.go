package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Delivery log statuses. Every attempt produces exactly one row.
const (
	StatusSent   = "sent"
	StatusFailed = "failed"
)

// DeliveryLog is the append-only audit record of one attempted dispatch.
// Rows are never updated; a retry writes a new row.
type DeliveryLog struct {
	ID                snowflake.ID `gorm:"primaryKey"`
	Recipient         string       `gorm:"column:recipient;type:text;not null;index"`
	Sender            string       `gorm:"column:sender;type:text;not null"`
	Subject           string       `gorm:"type:text;not null"`
	AttachmentName    *string      `gorm:"type:text"`
	Status            string       `gorm:"type:text;not null"`
	Error             *string      `gorm:"type:text"`
	ProviderMessageID *string      `gorm:"type:text"`
	CreatedAt         time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP;index"`
}

// TableName sets the database table name.
func (DeliveryLog) TableName() string { return "delivery_logs" }
