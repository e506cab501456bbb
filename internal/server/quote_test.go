package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/jperram92/JamesCRM-sub003/internal/audit/domain"
	"github.com/jperram92/JamesCRM-sub003/internal/config"
	deliverydomain "github.com/jperram92/JamesCRM-sub003/internal/delivery/domain"
	quotedomain "github.com/jperram92/JamesCRM-sub003/internal/quote/domain"
	"go.uber.org/zap"
)

type fakeQuoteService struct {
	quote   *quotedomain.Quote
	err     error
	rejects []string
}

func (f *fakeQuoteService) Create(ctx context.Context, req quotedomain.CreateQuoteRequest) (*quotedomain.Quote, error) {
	return f.result()
}

func (f *fakeQuoteService) GetByID(ctx context.Context, id string) (*quotedomain.Quote, error) {
	return f.result()
}

func (f *fakeQuoteService) List(ctx context.Context, req quotedomain.ListRequest) ([]*quotedomain.Quote, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []*quotedomain.Quote{f.quote}, nil
}

func (f *fakeQuoteService) Send(ctx context.Context, id string, req quotedomain.SendQuoteRequest) (*quotedomain.Quote, error) {
	return f.result()
}

func (f *fakeQuoteService) Approve(ctx context.Context, id string) (*quotedomain.Quote, error) {
	return f.result()
}

func (f *fakeQuoteService) Reject(ctx context.Context, id string, reason string) (*quotedomain.Quote, error) {
	f.rejects = append(f.rejects, reason)
	return f.result()
}

func (f *fakeQuoteService) result() (*quotedomain.Quote, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.quote, nil
}

type fakeAuditService struct {
	actions []string
}

func (f *fakeAuditService) Record(ctx context.Context, action, targetType string, targetID *string, metadata map[string]any) error {
	f.actions = append(f.actions, action)
	return nil
}

type fakeDeliveryService struct{}

func (fakeDeliveryService) Send(ctx context.Context, msg deliverydomain.Message) (deliverydomain.Result, error) {
	return deliverydomain.Result{Accepted: true}, nil
}

func (fakeDeliveryService) ListLogs(ctx context.Context, filter deliverydomain.LogFilter) ([]*deliverydomain.DeliveryLog, error) {
	return []*deliverydomain.DeliveryLog{}, nil
}

func newTestServer(t *testing.T, quoteSvc quotedomain.Service) (*Server, *fakeAuditService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	audit := &fakeAuditService{}
	cfg := config.Config{
		Limits: config.LimitsConfig{SendQuoteLimit: 100, SendQuoteWindow: time.Minute},
	}
	s := &Server{
		log:         zap.NewNop(),
		cfg:         cfg,
		engine:      gin.New(),
		quoteSvc:    quoteSvc,
		deliverySvc: fakeDeliveryService{},
		auditSvc:    audit,
		sendLimiter: newRateLimiter(cfg.Limits.SendQuoteLimit, cfg.Limits.SendQuoteWindow),
	}
	s.RegisterAPIRoutes()
	return s, audit
}

func perform(s *Server, method, target, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	return rec
}

func TestSendQuoteReturnsQuote(t *testing.T) {
	quote := &quotedomain.Quote{QuoteNumber: "Q-000001", Status: quotedomain.QuoteStatusSent}
	s, audit := newTestServer(t, &fakeQuoteService{quote: quote})

	rec := perform(s, http.MethodPost, "/api/quotes/1/send", `{"to":"jane@acme.test"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Data quotedomain.Quote `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Data.Status != quotedomain.QuoteStatusSent {
		t.Fatalf("expected sent status in response, got %q", body.Data.Status)
	}
	if len(audit.actions) != 1 || audit.actions[0] != "quote.send" {
		t.Fatalf("expected quote.send audit entry, got %v", audit.actions)
	}
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		method string
		target string
		body   string
		want   int
	}{
		{"not found", quotedomain.ErrQuoteNotFound, http.MethodGet, "/api/quotes/1", "", http.StatusNotFound},
		{"invalid transition", quotedomain.ErrInvalidTransition, http.MethodPost, "/api/quotes/1/approve", "", http.StatusConflict},
		{"delivery failed", quotedomain.ErrDeliveryFailed, http.MethodPost, "/api/quotes/1/send", `{"to":"a@b.c"}`, http.StatusBadGateway},
		{"missing reason", quotedomain.ErrMissingReason, http.MethodPost, "/api/quotes/1/reject", `{"reason":""}`, http.StatusBadRequest},
		{"invalid id", quotedomain.ErrInvalidQuoteID, http.MethodGet, "/api/quotes/abc", "", http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, _ := newTestServer(t, &fakeQuoteService{err: tc.err})
			rec := perform(s, tc.method, tc.target, tc.body)
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d: %s", tc.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestRejectPassesReasonThrough(t *testing.T) {
	quote := &quotedomain.Quote{QuoteNumber: "Q-000001", Status: quotedomain.QuoteStatusRejected}
	svc := &fakeQuoteService{quote: quote}
	s, _ := newTestServer(t, svc)

	rec := perform(s, http.MethodPost, "/api/quotes/1/reject", `{"reason":"budget cut"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(svc.rejects) != 1 || svc.rejects[0] != "budget cut" {
		t.Fatalf("expected reason to reach the service, got %v", svc.rejects)
	}
}

func TestCreateQuoteRejectsMalformedBody(t *testing.T) {
	s, audit := newTestServer(t, &fakeQuoteService{})

	rec := perform(s, http.MethodPost, "/api/quotes", `{"deal_id":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if len(audit.actions) != 0 {
		t.Fatalf("no audit entry for rejected request, got %v", audit.actions)
	}
}

var _ auditdomain.Service = (*fakeAuditService)(nil)
