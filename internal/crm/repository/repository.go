package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/jperram92/JamesCRM-sub003/internal/cache"
	"github.com/jperram92/JamesCRM-sub003/internal/crm/domain"
	"gorm.io/gorm"
)

// Lookup TTL is short: contacts and companies change rarely, but a stale
// delivery address must not outlive an edit for long.
const lookupTTL = 30 * time.Second

type crmRepository struct {
	companies *cache.TTLCache[snowflake.ID, domain.Company]
	contacts  *cache.TTLCache[snowflake.ID, domain.Contact]
}

// Provide returns the gorm-backed CRM lookup repository with a read-through
// TTL cache in front of company and contact reads.
func Provide() domain.Repository {
	return &crmRepository{
		companies: cache.NewTTLCache[snowflake.ID, domain.Company](),
		contacts:  cache.NewTTLCache[snowflake.ID, domain.Contact](),
	}
}

func (r *crmRepository) FindCompanyByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Company, error) {
	if cached, ok := r.companies.Get(id); ok {
		return &cached, nil
	}

	var company domain.Company
	err := db.WithContext(ctx).First(&company, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrCompanyNotFound
	}
	if err != nil {
		return nil, err
	}
	r.companies.Set(id, company, lookupTTL)
	return &company, nil
}

func (r *crmRepository) FindContactByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Contact, error) {
	if cached, ok := r.contacts.Get(id); ok {
		return &cached, nil
	}

	var contact domain.Contact
	err := db.WithContext(ctx).First(&contact, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrContactNotFound
	}
	if err != nil {
		return nil, err
	}
	r.contacts.Set(id, contact, lookupTTL)
	return &contact, nil
}

func (r *crmRepository) FindDealByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Deal, error) {
	var deal domain.Deal
	err := db.WithContext(ctx).First(&deal, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrDealNotFound
	}
	if err != nil {
		return nil, err
	}
	return &deal, nil
}
