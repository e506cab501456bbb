package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Company is a CRM account. The quote pipeline only reads it for counterpart
// naming; its lifecycle is owned by the CRUD layer.
type Company struct {
	ID             snowflake.ID `gorm:"primaryKey"`
	Name           string       `gorm:"type:text;not null"`
	Industry       string       `gorm:"type:text"`
	Website        string       `gorm:"type:text"`
	BillingAddress string       `gorm:"type:text"`
	CreatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Company) TableName() string { return "companies" }

// Contact is a person attached to a company; quotes deliver to a contact.
type Contact struct {
	ID        snowflake.ID  `gorm:"primaryKey"`
	CompanyID *snowflake.ID `gorm:"index"`
	FirstName string        `gorm:"type:text;not null"`
	LastName  string        `gorm:"type:text;not null"`
	Email     string        `gorm:"type:text;not null"`
	Phone     string        `gorm:"type:text"`
	CreatedAt time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Contact) TableName() string { return "contacts" }

// FullName joins the contact name parts for display use.
func (c Contact) FullName() string {
	if c.FirstName == "" {
		return c.LastName
	}
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}

// Deal is the sales opportunity a quote belongs to.
type Deal struct {
	ID        snowflake.ID  `gorm:"primaryKey"`
	CompanyID snowflake.ID  `gorm:"not null;index"`
	ContactID *snowflake.ID `gorm:"index"`
	Name      string        `gorm:"type:text;not null"`
	Stage     string        `gorm:"type:text;not null;default:'open'"`
	Amount    int64         `gorm:"not null;default:0"`
	Currency  string        `gorm:"type:text;not null;default:'USD'"`
	CreatedAt time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Deal) TableName() string { return "deals" }
