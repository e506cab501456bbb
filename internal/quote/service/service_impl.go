package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/jperram92/JamesCRM-sub003/internal/clock"
	"github.com/jperram92/JamesCRM-sub003/internal/config"
	crmdomain "github.com/jperram92/JamesCRM-sub003/internal/crm/domain"
	deliverydomain "github.com/jperram92/JamesCRM-sub003/internal/delivery/domain"
	documentdomain "github.com/jperram92/JamesCRM-sub003/internal/document/domain"
	"github.com/jperram92/JamesCRM-sub003/internal/document/render"
	"github.com/jperram92/JamesCRM-sub003/internal/document/store"
	"github.com/jperram92/JamesCRM-sub003/internal/events"
	"github.com/jperram92/JamesCRM-sub003/internal/observability/logger"
	"github.com/jperram92/JamesCRM-sub003/internal/observability/metrics"
	"github.com/jperram92/JamesCRM-sub003/internal/observability/tracing"
	"github.com/jperram92/JamesCRM-sub003/internal/quote/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Cfg      config.Config
	GenID    *snowflake.Node
	Clock    clock.Clock
	Repo     domain.Repository
	CRM      crmdomain.Repository
	Renderer render.Renderer
	Store    store.Store
	DocRepo  documentdomain.Repository
	Delivery deliverydomain.Service
	Outbox   *events.Outbox
}

// Service orchestrates the quote lifecycle: drafting, the send pipeline
// (render, store, deliver, commit) and the approve/reject decisions.
type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	cfg      config.Config
	genID    *snowflake.Node
	clock    clock.Clock
	repo     domain.Repository
	crm      crmdomain.Repository
	renderer render.Renderer
	store    store.Store
	docRepo  documentdomain.Repository
	delivery deliverydomain.Service
	outbox   *events.Outbox
}

func NewService(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("quote.service"),
		cfg:      p.Cfg,
		genID:    p.GenID,
		clock:    p.Clock,
		repo:     p.Repo,
		crm:      p.CRM,
		renderer: p.Renderer,
		store:    p.Store,
		docRepo:  p.DocRepo,
		delivery: p.Delivery,
		outbox:   p.Outbox,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateQuoteRequest) (*domain.Quote, error) {
	dealID, err := parseID(req.DealID)
	if err != nil {
		return nil, domain.ErrMissingDeal
	}
	deal, err := s.crm.FindDealByID(ctx, s.db, dealID)
	if err != nil {
		return nil, err
	}

	companyID := deal.CompanyID
	if req.CompanyID != "" {
		if companyID, err = parseID(req.CompanyID); err != nil {
			return nil, crmdomain.ErrCompanyNotFound
		}
	}
	contactID := snowflake.ID(0)
	if deal.ContactID != nil {
		contactID = *deal.ContactID
	}
	if req.ContactID != "" {
		if contactID, err = parseID(req.ContactID); err != nil {
			return nil, crmdomain.ErrContactNotFound
		}
	}
	if contactID == 0 {
		return nil, crmdomain.ErrContactNotFound
	}
	if _, err := s.crm.FindCompanyByID(ctx, s.db, companyID); err != nil {
		return nil, err
	}
	if _, err := s.crm.FindContactByID(ctx, s.db, contactID); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	quote := &domain.Quote{
		ID:             s.genID.Generate(),
		DealID:         dealID,
		CompanyID:      companyID,
		ContactID:      contactID,
		Status:         domain.QuoteStatusDraft,
		Currency:       strings.ToUpper(strings.TrimSpace(req.Currency)),
		TaxBasisPoints: req.TaxBasisPoints,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if quote.Currency == "" {
		quote.Currency = deal.Currency
	}
	for i, item := range req.LineItems {
		quote.LineItems = append(quote.LineItems, domain.QuoteLineItem{
			ID:          s.genID.Generate(),
			QuoteID:     quote.ID,
			Position:    i,
			Description: strings.TrimSpace(item.Description),
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			CreatedAt:   now,
		})
	}
	if err := domain.ValidateLineItems(quote.LineItems); err != nil {
		return nil, err
	}
	quote.RecomputeTotals()

	number, err := s.nextQuoteNumber(ctx)
	if err != nil {
		return nil, err
	}
	quote.QuoteNumber = number

	if err := s.repo.Insert(ctx, s.db, quote); err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Named("quote.service").Info("quote drafted",
		zap.String("quote_id", quote.ID.String()),
		zap.String("quote_number", quote.QuoteNumber),
		zap.Int64("total_amount", quote.TotalAmount),
	)
	return quote, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*domain.Quote, error) {
	quoteID, err := parseID(id)
	if err != nil {
		return nil, domain.ErrInvalidQuoteID
	}
	return s.repo.FindByID(ctx, s.db, quoteID)
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]*domain.Quote, error) {
	filter := domain.ListFilter{Limit: req.Limit}
	if req.DealID != "" {
		dealID, err := parseID(req.DealID)
		if err != nil {
			return nil, domain.ErrMissingDeal
		}
		filter.DealID = dealID
	}
	if req.Status != "" {
		status := domain.QuoteStatus(req.Status)
		if !status.Valid() {
			return nil, domain.ErrInvalidTransition
		}
		filter.Status = status
	}
	return s.repo.List(ctx, s.db, filter)
}

// Send runs the outbound pipeline. Side effects are ordered so that the
// irreversible one (the email) happens only after the document is rendered
// and stored, and the status flips to sent only after the transport accepted
// the message. A failed attempt leaves the quote in draft, re-sendable.
func (s *Service) Send(ctx context.Context, id string, req domain.SendQuoteRequest) (*domain.Quote, error) {
	recipient := strings.TrimSpace(req.To)
	if recipient == "" {
		return nil, domain.ErrInvalidRecipient
	}
	quoteID, err := parseID(id)
	if err != nil {
		return nil, domain.ErrInvalidQuoteID
	}

	ctx, span := tracing.Tracer().Start(ctx, "quote.send",
		trace.WithAttributes(attribute.String("quote.id", quoteID.String())),
	)
	defer span.End()

	quote, err := s.repo.FindByID(ctx, s.db, quoteID)
	if err != nil {
		return nil, err
	}
	if quote.Status != domain.QuoteStatusDraft {
		return nil, fmt.Errorf("%w: cannot send from %s", domain.ErrInvalidTransition, quote.Status)
	}

	input, err := s.buildRenderInput(ctx, quote)
	if err != nil {
		return nil, err
	}
	pdf, err := s.renderer.Render(render.TemplateQuote, input)
	if err != nil {
		return nil, err
	}

	storagePath, err := store.DocumentPath(store.DocumentTypeQuote, quote.QuoteNumber)
	if err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, storagePath, pdf); err != nil {
		return nil, err
	}
	if err := s.docRepo.Upsert(ctx, s.db, &documentdomain.GeneratedDocument{
		ID:           s.genID.Generate(),
		EntityType:   "quote",
		EntityID:     quote.ID,
		DocumentType: store.DocumentTypeQuote,
		StoragePath:  storagePath,
		CreatedAt:    s.clock.Now(),
		UpdatedAt:    s.clock.Now(),
	}); err != nil {
		return nil, err
	}

	subject := strings.TrimSpace(req.Subject)
	if subject == "" {
		subject = fmt.Sprintf("Quote %s", quote.QuoteNumber)
	}
	body := strings.TrimSpace(req.Body)
	if body == "" {
		body = fmt.Sprintf("Please find quote %s attached.", quote.QuoteNumber)
	}
	result, err := s.delivery.Send(ctx, deliverydomain.Message{
		To:      recipient,
		From:    s.cfg.SMTP.From,
		Subject: subject,
		Body:    body,
		Attachments: []deliverydomain.Attachment{
			{Name: path.Base(storagePath), Content: pdf, ContentType: "application/pdf"},
		},
	})
	if err != nil {
		return nil, err
	}
	if !result.Accepted {
		return nil, domain.ErrDeliveryFailed
	}

	sentAt := s.clock.Now()
	if err := s.commitTransition(ctx, quote, domain.QuoteStatusDraft, domain.QuoteStatusSent,
		domain.StatusChange{SentAt: &sentAt},
		events.Event{
			Type:      events.EventQuoteSent,
			Payload:   events.QuotePayload{QuoteID: quote.ID.String(), QuoteNumber: quote.QuoteNumber, DealID: quote.DealID.String()}.ToMap(),
			DedupeKey: fmt.Sprintf("%s:%s", events.EventQuoteSent, quote.ID),
		},
	); err != nil {
		return nil, err
	}
	quote.Status = domain.QuoteStatusSent
	quote.SentAt = &sentAt

	logger.FromContext(ctx).Named("quote.service").Info("quote sent",
		zap.String("quote_id", quote.ID.String()),
		zap.String("quote_number", quote.QuoteNumber),
		zap.String("to", logger.MaskEmail(recipient)),
		zap.String("document_path", storagePath),
	)
	return quote, nil
}

func (s *Service) Approve(ctx context.Context, id string) (*domain.Quote, error) {
	return s.decide(ctx, id, domain.QuoteStatusApproved, nil)
}

func (s *Service) Reject(ctx context.Context, id string, reason string) (*domain.Quote, error) {
	trimmed := strings.TrimSpace(reason)
	if trimmed == "" {
		return nil, domain.ErrMissingReason
	}
	return s.decide(ctx, id, domain.QuoteStatusRejected, &trimmed)
}

// decide flips a sent quote into one of the terminal states. Approved and
// rejected accept no further transitions.
func (s *Service) decide(ctx context.Context, id string, to domain.QuoteStatus, reason *string) (*domain.Quote, error) {
	quoteID, err := parseID(id)
	if err != nil {
		return nil, domain.ErrInvalidQuoteID
	}
	quote, err := s.repo.FindByID(ctx, s.db, quoteID)
	if err != nil {
		return nil, err
	}
	if quote.Status != domain.QuoteStatusSent {
		return nil, fmt.Errorf("%w: cannot move from %s to %s", domain.ErrInvalidTransition, quote.Status, to)
	}

	decidedAt := s.clock.Now()
	eventType := events.EventQuoteApproved
	payload := events.QuotePayload{QuoteID: quote.ID.String(), QuoteNumber: quote.QuoteNumber, DealID: quote.DealID.String()}
	if to == domain.QuoteStatusRejected {
		eventType = events.EventQuoteRejected
		payload.Reason = *reason
	}
	if err := s.commitTransition(ctx, quote, domain.QuoteStatusSent, to,
		domain.StatusChange{RejectionReason: reason, DecidedAt: &decidedAt},
		events.Event{
			Type:      eventType,
			Payload:   payload.ToMap(),
			DedupeKey: fmt.Sprintf("%s:%s", eventType, quote.ID),
		},
	); err != nil {
		return nil, err
	}
	quote.Status = to
	quote.DecidedAt = &decidedAt
	quote.RejectionReason = reason

	logger.FromContext(ctx).Named("quote.service").Info("quote decided",
		zap.String("quote_id", quote.ID.String()),
		zap.String("status", string(to)),
	)
	return quote, nil
}

// commitTransition performs the compare-and-set status write and the outbox
// insert in one transaction. A CAS miss means another request won the race
// after our precondition check, which reads the same as an invalid
// transition.
func (s *Service) commitTransition(ctx context.Context, quote *domain.Quote, from, to domain.QuoteStatus, change domain.StatusChange, event events.Event) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updated, err := s.repo.UpdateStatus(ctx, tx, quote.ID, from, to, change)
		if err != nil {
			return err
		}
		if !updated {
			return fmt.Errorf("%w: quote %s no longer %s", domain.ErrInvalidTransition, quote.ID, from)
		}
		return s.outbox.PublishTx(ctx, tx, event)
	})
	if err != nil {
		return err
	}
	metrics.Delivery().ObserveTransition(string(to))
	return nil
}

func (s *Service) buildRenderInput(ctx context.Context, quote *domain.Quote) (render.RenderInput, error) {
	input := render.RenderInput{
		Document: render.DocumentView{
			Number:   quote.QuoteNumber,
			IssuedAt: quote.CreatedAt.UTC(),
		},
		Totals: render.TotalsView{
			Subtotal: quote.SubtotalAmount,
			Tax:      quote.TaxAmount,
			Total:    quote.TotalAmount,
			Currency: quote.Currency,
		},
	}
	for _, item := range quote.LineItems {
		input.Items = append(input.Items, render.LineItemView{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Amount:      item.Amount,
		})
	}

	company, err := s.crm.FindCompanyByID(ctx, s.db, quote.CompanyID)
	switch {
	case err == nil:
		input.Company = render.CompanyView{Name: company.Name, Address: company.BillingAddress}
	case errors.Is(err, crmdomain.ErrCompanyNotFound):
		// render proceeds with an empty counterpart block
	default:
		return render.RenderInput{}, err
	}

	contact, err := s.crm.FindContactByID(ctx, s.db, quote.ContactID)
	switch {
	case err == nil:
		input.Recipient = render.RecipientView{Name: contact.FullName(), Email: contact.Email}
	case errors.Is(err, crmdomain.ErrContactNotFound):
	default:
		return render.RenderInput{}, err
	}
	return input, nil
}

func (s *Service) nextQuoteNumber(ctx context.Context) (string, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&domain.Quote{}).Count(&count).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("Q-%06d", count+1), nil
}

func parseID(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidQuoteID
	}
	return id, nil
}
