package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/jperram92/JamesCRM-sub003/internal/audit/domain"
	"github.com/jperram92/JamesCRM-sub003/internal/config"
	deliverydomain "github.com/jperram92/JamesCRM-sub003/internal/delivery/domain"
	documentdomain "github.com/jperram92/JamesCRM-sub003/internal/document/domain"
	"github.com/jperram92/JamesCRM-sub003/internal/observability/logger"
	quotedomain "github.com/jperram92/JamesCRM-sub003/internal/quote/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Cfg         config.Config
	QuoteSvc    quotedomain.Service
	DeliverySvc deliverydomain.Service
	AuditSvc    auditdomain.Service
	AuditRepo   auditdomain.Repository
	DocRepo     documentdomain.Repository
}

// Server carries the HTTP handler dependencies.
type Server struct {
	db          *gorm.DB
	log         *zap.Logger
	cfg         config.Config
	engine      *gin.Engine
	quoteSvc    quotedomain.Service
	deliverySvc deliverydomain.Service
	auditSvc    auditdomain.Service
	auditRepo   auditdomain.Repository
	docRepo     documentdomain.Repository
	sendLimiter *rateLimiter
}

// NewEngine builds the gin engine with the shared middleware chain.
func NewEngine(cfg config.Config) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(logger.GinMiddleware(logger.MiddlewareConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	return engine
}

func NewServer(p Params, engine *gin.Engine) *Server {
	return &Server{
		db:          p.DB,
		log:         p.Log.Named("server"),
		cfg:         p.Cfg,
		engine:      engine,
		quoteSvc:    p.QuoteSvc,
		deliverySvc: p.DeliverySvc,
		auditSvc:    p.AuditSvc,
		auditRepo:   p.AuditRepo,
		docRepo:     p.DocRepo,
		sendLimiter: newRateLimiter(p.Cfg.Limits.SendQuoteLimit, p.Cfg.Limits.SendQuoteWindow),
	}
}

// RegisterAPIRoutes mounts the API surface under /api plus the operational
// endpoints at the root.
func (s *Server) RegisterAPIRoutes() {
	s.engine.GET("/healthz", s.Healthz)
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.engine.Group("/api")
	api.Use(s.AuditContext())
	{
		api.POST("/quotes", s.CreateQuote)
		api.GET("/quotes", s.ListQuotes)
		api.GET("/quotes/:id", s.GetQuote)
		api.GET("/quotes/:id/document", s.GetQuoteDocument)
		api.POST("/quotes/:id/send", s.SendQuoteRateLimited(), s.SendQuote)
		api.POST("/quotes/:id/approve", s.ApproveQuote)
		api.POST("/quotes/:id/reject", s.RejectQuote)

		api.GET("/delivery-logs", s.ListDeliveryLogs)
		api.GET("/audit-logs", s.ListAuditLogs)
	}
}

// RunHTTP starts the HTTP listener under the fx lifecycle.
func RunHTTP(lc fx.Lifecycle, s *Server) {
	srv := &http.Server{
		Addr:    s.cfg.HTTP.Addr,
		Handler: s.engine,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				s.log.Info("http server listening", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					s.log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
