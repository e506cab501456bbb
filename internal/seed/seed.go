package seed

import (
	"github.com/bwmarrin/snowflake"
	"github.com/jperram92/JamesCRM-sub003/internal/clock"
	"github.com/jperram92/JamesCRM-sub003/internal/config"
	crmdomain "github.com/jperram92/JamesCRM-sub003/internal/crm/domain"
	quotedomain "github.com/jperram92/JamesCRM-sub003/internal/quote/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Cfg   config.Config
	GenID *snowflake.Node
	Clock clock.Clock
}

var Module = fx.Module("seed", fx.Invoke(Run))

// Run inserts a demo company, contact, deal and draft quote so a fresh
// development database has something to send. Production and already-seeded
// databases are left untouched.
func Run(p Params) error {
	if p.Cfg.IsProduction() {
		return nil
	}

	var count int64
	if err := p.DB.Model(&crmdomain.Company{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := p.Clock.Now()
	company := &crmdomain.Company{
		ID:             p.GenID.Generate(),
		Name:           "Acme Corp",
		Industry:       "Manufacturing",
		BillingAddress: "1 Main St, Springfield",
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	contact := &crmdomain.Contact{
		ID:        p.GenID.Generate(),
		CompanyID: &company.ID,
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "jane.doe@acme.test",
		CreatedAt: now,
		UpdatedAt: now,
	}
	deal := &crmdomain.Deal{
		ID:        p.GenID.Generate(),
		CompanyID: company.ID,
		ContactID: &contact.ID,
		Name:      "Acme expansion",
		Stage:     "open",
		Amount:    250000,
		Currency:  "USD",
		CreatedAt: now,
		UpdatedAt: now,
	}

	quote := &quotedomain.Quote{
		ID:             p.GenID.Generate(),
		DealID:         deal.ID,
		CompanyID:      company.ID,
		ContactID:      contact.ID,
		QuoteNumber:    "Q-000001",
		Status:         quotedomain.QuoteStatusDraft,
		Currency:       "USD",
		TaxBasisPoints: 1000,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	quote.LineItems = []quotedomain.QuoteLineItem{
		{
			ID:          p.GenID.Generate(),
			QuoteID:     quote.ID,
			Position:    0,
			Description: "Implementation services",
			Quantity:    10,
			UnitPrice:   15000,
			CreatedAt:   now,
		},
		{
			ID:          p.GenID.Generate(),
			QuoteID:     quote.ID,
			Position:    1,
			Description: "Annual support plan",
			Quantity:    1,
			UnitPrice:   50000,
			CreatedAt:   now,
		},
	}
	quote.RecomputeTotals()

	err := p.DB.Transaction(func(tx *gorm.DB) error {
		for _, record := range []any{company, contact, deal, quote} {
			if err := tx.Create(record).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	p.Log.Named("seed").Info("seeded demo data",
		zap.String("company", company.Name),
		zap.String("quote_number", quote.QuoteNumber),
	)
	return nil
}
