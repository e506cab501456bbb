package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Repository exposes the read-only CRM lookups the quote pipeline depends on.
type Repository interface {
	FindCompanyByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Company, error)
	FindContactByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Contact, error)
	FindDealByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Deal, error)
}

var (
	ErrCompanyNotFound = errors.New("company_not_found")
	ErrContactNotFound = errors.New("contact_not_found")
	ErrDealNotFound    = errors.New("deal_not_found")
)
