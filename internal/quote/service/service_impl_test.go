package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/jperram92/JamesCRM-sub003/internal/clock"
	"github.com/jperram92/JamesCRM-sub003/internal/config"
	crmdomain "github.com/jperram92/JamesCRM-sub003/internal/crm/domain"
	crmrepo "github.com/jperram92/JamesCRM-sub003/internal/crm/repository"
	deliverydomain "github.com/jperram92/JamesCRM-sub003/internal/delivery/domain"
	documentdomain "github.com/jperram92/JamesCRM-sub003/internal/document/domain"
	documentrepo "github.com/jperram92/JamesCRM-sub003/internal/document/repository"
	"github.com/jperram92/JamesCRM-sub003/internal/document/render"
	"github.com/jperram92/JamesCRM-sub003/internal/events"
	"github.com/jperram92/JamesCRM-sub003/internal/quote/domain"
	quoterepo "github.com/jperram92/JamesCRM-sub003/internal/quote/repository"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type fakeRenderer struct {
	calls int
	err   error
}

func (r *fakeRenderer) Render(templateID string, input render.RenderInput) ([]byte, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return []byte("%PDF-1.4 " + input.Document.Number), nil
}

type fakeStore struct {
	saves []string
	err   error
}

func (s *fakeStore) Save(ctx context.Context, path string, data []byte) error {
	if s.err != nil {
		return s.err
	}
	s.saves = append(s.saves, path)
	return nil
}

type fakeDelivery struct {
	calls    int
	accepted bool
	err      error
	lastMsg  deliverydomain.Message
}

func (d *fakeDelivery) Send(ctx context.Context, msg deliverydomain.Message) (deliverydomain.Result, error) {
	d.calls++
	d.lastMsg = msg
	if d.err != nil {
		return deliverydomain.Result{}, d.err
	}
	return deliverydomain.Result{Accepted: d.accepted, ProviderMessageID: "<msg@jamescrm>"}, nil
}

func (d *fakeDelivery) ListLogs(ctx context.Context, filter deliverydomain.LogFilter) ([]*deliverydomain.DeliveryLog, error) {
	return nil, nil
}

type fixture struct {
	svc      *Service
	db       *gorm.DB
	renderer *fakeRenderer
	store    *fakeStore
	delivery *fakeDelivery
	deal     *crmdomain.Deal
	contact  *crmdomain.Contact
}

func setupQuoteTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&crmdomain.Company{},
		&crmdomain.Contact{},
		&crmdomain.Deal{},
		&domain.Quote{},
		&domain.QuoteLineItem{},
		&documentdomain.GeneratedDocument{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := db.Exec(
		`CREATE TABLE crm_events (
			id INTEGER PRIMARY KEY,
			event_type TEXT NOT NULL,
			payload TEXT NOT NULL,
			dedupe_key TEXT,
			published BOOLEAN NOT NULL DEFAULT false,
			created_at DATETIME NOT NULL
		)`,
	).Error; err != nil {
		t.Fatalf("create crm_events: %v", err)
	}
	if err := db.Exec(
		`CREATE UNIQUE INDEX ux_crm_events_dedupe ON crm_events (dedupe_key) WHERE dedupe_key IS NOT NULL`,
	).Error; err != nil {
		t.Fatalf("create dedupe index: %v", err)
	}
	return db
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := setupQuoteTestDB(t)
	node, err := snowflake.NewNode(3)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}

	company := &crmdomain.Company{ID: node.Generate(), Name: "Acme Corp", BillingAddress: "1 Main St"}
	contact := &crmdomain.Contact{ID: node.Generate(), CompanyID: &company.ID, FirstName: "Jane", LastName: "Doe", Email: "jane@acme.test"}
	deal := &crmdomain.Deal{ID: node.Generate(), CompanyID: company.ID, ContactID: &contact.ID, Name: "Acme expansion", Currency: "USD"}
	if err := db.Create(company).Error; err != nil {
		t.Fatalf("seed company: %v", err)
	}
	if err := db.Create(contact).Error; err != nil {
		t.Fatalf("seed contact: %v", err)
	}
	if err := db.Create(deal).Error; err != nil {
		t.Fatalf("seed deal: %v", err)
	}

	renderer := &fakeRenderer{}
	st := &fakeStore{}
	delivery := &fakeDelivery{accepted: true}
	svc := &Service{
		db:       db,
		log:      zap.NewNop(),
		cfg:      config.Config{SMTP: config.SMTPConfig{From: "noreply@jamescrm.local"}},
		genID:    node,
		clock:    clock.Fixed(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)),
		repo:     quoterepo.Provide(),
		crm:      crmrepo.Provide(),
		renderer: renderer,
		store:    st,
		docRepo:  documentrepo.Provide(),
		delivery: delivery,
		outbox:   events.NewOutbox(db, node),
	}
	return &fixture{svc: svc, db: db, renderer: renderer, store: st, delivery: delivery, deal: deal, contact: contact}
}

func (f *fixture) draftQuote(t *testing.T) *domain.Quote {
	t.Helper()
	quote, err := f.svc.Create(context.Background(), domain.CreateQuoteRequest{
		DealID:         f.deal.ID.String(),
		TaxBasisPoints: 1000,
		LineItems: []domain.LineItemRequest{
			{Description: "Implementation", Quantity: 10, UnitPrice: 15000},
			{Description: "Support plan", Quantity: 1, UnitPrice: 50000},
		},
	})
	if err != nil {
		t.Fatalf("create quote: %v", err)
	}
	return quote
}

func (f *fixture) eventCount(t *testing.T, eventType string) int64 {
	t.Helper()
	var count int64
	if err := f.db.Table("crm_events").Where("event_type = ?", eventType).Count(&count).Error; err != nil {
		t.Fatalf("count events: %v", err)
	}
	return count
}

func TestCreateComputesTotals(t *testing.T) {
	f := newFixture(t)
	quote := f.draftQuote(t)

	if quote.Status != domain.QuoteStatusDraft {
		t.Fatalf("expected draft, got %q", quote.Status)
	}
	if quote.SubtotalAmount != 200000 {
		t.Fatalf("expected subtotal 200000, got %d", quote.SubtotalAmount)
	}
	if quote.TaxAmount != 20000 {
		t.Fatalf("expected tax 20000, got %d", quote.TaxAmount)
	}
	if quote.TotalAmount != quote.SubtotalAmount+quote.TaxAmount {
		t.Fatalf("total must equal subtotal plus tax, got %d", quote.TotalAmount)
	}
	if quote.QuoteNumber != "Q-000001" {
		t.Fatalf("unexpected quote number %q", quote.QuoteNumber)
	}
}

func TestCreateRejectsInvalidLineItems(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Create(context.Background(), domain.CreateQuoteRequest{
		DealID:    f.deal.ID.String(),
		LineItems: []domain.LineItemRequest{{Description: " ", Quantity: 1, UnitPrice: 100}},
	})
	if !errors.Is(err, domain.ErrInvalidLineItem) {
		t.Fatalf("expected ErrInvalidLineItem, got %v", err)
	}

	_, err = f.svc.Create(context.Background(), domain.CreateQuoteRequest{
		DealID:    f.deal.ID.String(),
		LineItems: []domain.LineItemRequest{{Description: "Work", Quantity: -1, UnitPrice: 100}},
	})
	if !errors.Is(err, domain.ErrInvalidLineItem) {
		t.Fatalf("expected ErrInvalidLineItem for negative quantity, got %v", err)
	}
}

func TestSendRunsFullPipeline(t *testing.T) {
	f := newFixture(t)
	quote := f.draftQuote(t)

	sent, err := f.svc.Send(context.Background(), quote.ID.String(), domain.SendQuoteRequest{To: "jane@acme.test"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if sent.Status != domain.QuoteStatusSent {
		t.Fatalf("expected sent, got %q", sent.Status)
	}
	if sent.SentAt == nil {
		t.Fatalf("expected sent_at to be set")
	}
	if f.renderer.calls != 1 {
		t.Fatalf("expected 1 render, got %d", f.renderer.calls)
	}
	if len(f.store.saves) != 1 || f.store.saves[0] != "quotes/Quote_Q-000001.pdf" {
		t.Fatalf("unexpected stored paths %v", f.store.saves)
	}
	if f.delivery.calls != 1 {
		t.Fatalf("expected 1 delivery, got %d", f.delivery.calls)
	}
	if f.delivery.lastMsg.Subject != "Quote Q-000001" {
		t.Fatalf("expected quote number in subject, got %q", f.delivery.lastMsg.Subject)
	}
	if len(f.delivery.lastMsg.Attachments) != 1 || f.delivery.lastMsg.Attachments[0].Name != "Quote_Q-000001.pdf" {
		t.Fatalf("expected pdf attachment, got %+v", f.delivery.lastMsg.Attachments)
	}

	doc, err := documentrepo.Provide().FindByEntity(context.Background(), f.db, "quote", quote.ID, "quote")
	if err != nil {
		t.Fatalf("find document: %v", err)
	}
	if doc == nil || doc.StoragePath != "quotes/Quote_Q-000001.pdf" {
		t.Fatalf("expected document pointer row, got %+v", doc)
	}
	if got := f.eventCount(t, events.EventQuoteSent); got != 1 {
		t.Fatalf("expected 1 quote.sent event, got %d", got)
	}
}

func TestSendDeliveryFailureKeepsDraft(t *testing.T) {
	f := newFixture(t)
	quote := f.draftQuote(t)
	f.delivery.accepted = false

	_, err := f.svc.Send(context.Background(), quote.ID.String(), domain.SendQuoteRequest{To: "jane@acme.test"})
	if !errors.Is(err, domain.ErrDeliveryFailed) {
		t.Fatalf("expected ErrDeliveryFailed, got %v", err)
	}

	reloaded, err := f.svc.GetByID(context.Background(), quote.ID.String())
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Status != domain.QuoteStatusDraft {
		t.Fatalf("failed delivery must leave quote in draft, got %q", reloaded.Status)
	}
	if got := f.eventCount(t, events.EventQuoteSent); got != 0 {
		t.Fatalf("expected no quote.sent event, got %d", got)
	}

	// retry succeeds and commits exactly one transition
	f.delivery.accepted = true
	sent, err := f.svc.Send(context.Background(), quote.ID.String(), domain.SendQuoteRequest{To: "jane@acme.test"})
	if err != nil {
		t.Fatalf("retry send: %v", err)
	}
	if sent.Status != domain.QuoteStatusSent {
		t.Fatalf("expected sent after retry, got %q", sent.Status)
	}
	if f.delivery.calls != 2 {
		t.Fatalf("expected 2 delivery attempts, got %d", f.delivery.calls)
	}
	if f.renderer.calls != 2 {
		t.Fatalf("re-send must regenerate the document, got %d renders", f.renderer.calls)
	}
}

func TestSendRenderFailureSkipsStorageAndDelivery(t *testing.T) {
	f := newFixture(t)
	quote := f.draftQuote(t)
	f.renderer.err = render.ErrMissingField

	_, err := f.svc.Send(context.Background(), quote.ID.String(), domain.SendQuoteRequest{To: "jane@acme.test"})
	if !errors.Is(err, render.ErrMissingField) {
		t.Fatalf("expected render error, got %v", err)
	}
	if len(f.store.saves) != 0 {
		t.Fatalf("storage must not run after a render failure")
	}
	if f.delivery.calls != 0 {
		t.Fatalf("delivery must not run after a render failure")
	}
}

func TestSendGuardsStatusAndRecipient(t *testing.T) {
	f := newFixture(t)
	quote := f.draftQuote(t)

	if _, err := f.svc.Send(context.Background(), quote.ID.String(), domain.SendQuoteRequest{To: "  "}); !errors.Is(err, domain.ErrInvalidRecipient) {
		t.Fatalf("expected ErrInvalidRecipient, got %v", err)
	}
	if f.delivery.calls != 0 {
		t.Fatalf("no delivery attempt for invalid recipient")
	}

	if _, err := f.svc.Send(context.Background(), quote.ID.String(), domain.SendQuoteRequest{To: "jane@acme.test"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, err := f.svc.Send(context.Background(), quote.ID.String(), domain.SendQuoteRequest{To: "jane@acme.test"}); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition on second send, got %v", err)
	}
}

func TestApproveOnlyFromSent(t *testing.T) {
	f := newFixture(t)
	quote := f.draftQuote(t)

	if _, err := f.svc.Approve(context.Background(), quote.ID.String()); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition for draft, got %v", err)
	}

	if _, err := f.svc.Send(context.Background(), quote.ID.String(), domain.SendQuoteRequest{To: "jane@acme.test"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	approved, err := f.svc.Approve(context.Background(), quote.ID.String())
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Status != domain.QuoteStatusApproved {
		t.Fatalf("expected approved, got %q", approved.Status)
	}
	if approved.DecidedAt == nil {
		t.Fatalf("expected decided_at to be set")
	}
	if got := f.eventCount(t, events.EventQuoteApproved); got != 1 {
		t.Fatalf("expected 1 quote.approved event, got %d", got)
	}

	// terminal states accept no further transitions
	if _, err := f.svc.Reject(context.Background(), quote.ID.String(), "changed our mind"); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition after approval, got %v", err)
	}
}

func TestRejectRequiresReason(t *testing.T) {
	f := newFixture(t)
	quote := f.draftQuote(t)
	if _, err := f.svc.Send(context.Background(), quote.ID.String(), domain.SendQuoteRequest{To: "jane@acme.test"}); err != nil {
		t.Fatalf("send: %v", err)
	}

	if _, err := f.svc.Reject(context.Background(), quote.ID.String(), "  "); !errors.Is(err, domain.ErrMissingReason) {
		t.Fatalf("expected ErrMissingReason, got %v", err)
	}
	reloaded, err := f.svc.GetByID(context.Background(), quote.ID.String())
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Status != domain.QuoteStatusSent {
		t.Fatalf("missing reason must not change status, got %q", reloaded.Status)
	}

	rejected, err := f.svc.Reject(context.Background(), quote.ID.String(), "budget cut")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != domain.QuoteStatusRejected {
		t.Fatalf("expected rejected, got %q", rejected.Status)
	}
	if rejected.RejectionReason == nil || *rejected.RejectionReason != "budget cut" {
		t.Fatalf("expected recorded reason, got %v", rejected.RejectionReason)
	}
	if got := f.eventCount(t, events.EventQuoteRejected); got != 1 {
		t.Fatalf("expected 1 quote.rejected event, got %d", got)
	}
}

func TestGetByIDUnknown(t *testing.T) {
	f := newFixture(t)

	if _, err := f.svc.GetByID(context.Background(), "999999999999999999"); !errors.Is(err, domain.ErrQuoteNotFound) {
		t.Fatalf("expected ErrQuoteNotFound, got %v", err)
	}
	if _, err := f.svc.GetByID(context.Background(), "not-a-number"); !errors.Is(err, domain.ErrInvalidQuoteID) {
		t.Fatalf("expected ErrInvalidQuoteID, got %v", err)
	}
}

func TestListFiltersByStatus(t *testing.T) {
	f := newFixture(t)
	first := f.draftQuote(t)
	f.draftQuote(t)
	if _, err := f.svc.Send(context.Background(), first.ID.String(), domain.SendQuoteRequest{To: "jane@acme.test"}); err != nil {
		t.Fatalf("send: %v", err)
	}

	drafts, err := f.svc.List(context.Background(), domain.ListRequest{Status: "draft"})
	if err != nil {
		t.Fatalf("list drafts: %v", err)
	}
	if len(drafts) != 1 {
		t.Fatalf("expected 1 draft, got %d", len(drafts))
	}
	all, err := f.svc.List(context.Background(), domain.ListRequest{DealID: f.deal.ID.String()})
	if err != nil {
		t.Fatalf("list by deal: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 quotes for deal, got %d", len(all))
	}
}

func TestConcurrentDecisionsSingleWinner(t *testing.T) {
	f := newFixture(t)
	quote := f.draftQuote(t)
	if _, err := f.svc.Send(context.Background(), quote.ID.String(), domain.SendQuoteRequest{To: "jane@acme.test"}); err != nil {
		t.Fatalf("send: %v", err)
	}

	// drive the CAS directly the way two racing requests would
	repo := quoterepo.Provide()
	won, err := repo.UpdateStatus(context.Background(), f.db, quote.ID, domain.QuoteStatusSent, domain.QuoteStatusApproved, domain.StatusChange{})
	if err != nil || !won {
		t.Fatalf("first transition must win: won=%v err=%v", won, err)
	}
	won, err = repo.UpdateStatus(context.Background(), f.db, quote.ID, domain.QuoteStatusSent, domain.QuoteStatusRejected, domain.StatusChange{})
	if err != nil {
		t.Fatalf("second transition: %v", err)
	}
	if won {
		t.Fatalf("second transition must lose the compare-and-set")
	}

	var status string
	if err := f.db.Model(&domain.Quote{}).Where("id = ?", quote.ID).Pluck("status", &status).Error; err != nil {
		t.Fatalf("read status: %v", err)
	}
	if status != string(domain.QuoteStatusApproved) {
		t.Fatalf("expected approved to stick, got %q", status)
	}
}

func TestQuoteNumbersAreSequential(t *testing.T) {
	f := newFixture(t)
	for i := 1; i <= 3; i++ {
		quote := f.draftQuote(t)
		want := fmt.Sprintf("Q-%06d", i)
		if quote.QuoteNumber != want {
			t.Fatalf("expected %s, got %s", want, quote.QuoteNumber)
		}
	}
}
