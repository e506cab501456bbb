package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/jperram92/JamesCRM-sub003/internal/clock"
	"github.com/jperram92/JamesCRM-sub003/internal/delivery/domain"
	"github.com/jperram92/JamesCRM-sub003/internal/observability/logger"
	"github.com/jperram92/JamesCRM-sub003/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Clock  clock.Clock
	Mailer domain.Mailer
	Repo   domain.Repository
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node
	clock  clock.Clock
	mailer domain.Mailer
	repo   domain.Repository
}

func NewService(p Params) domain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("delivery.service"),
		genID:  p.GenID,
		clock:  p.Clock,
		mailer: p.Mailer,
		repo:   p.Repo,
	}
}

// Send dispatches the message and writes exactly one delivery log entry for
// the attempt. A transport failure yields Result{Accepted: false} with a
// failed log entry already persisted; the error return is reserved for
// invalid input and for failure to write the log itself.
func (s *Service) Send(ctx context.Context, msg domain.Message) (domain.Result, error) {
	if strings.TrimSpace(msg.To) == "" {
		return domain.Result{}, domain.ErrMissingRecipient
	}
	if strings.TrimSpace(msg.From) == "" {
		return domain.Result{}, domain.ErrMissingSender
	}

	start := time.Now()
	providerMessageID, sendErr := s.mailer.Send(ctx, msg)
	elapsed := time.Since(start)

	entry := &domain.DeliveryLog{
		ID:        s.genID.Generate(),
		Recipient: msg.To,
		Sender:    msg.From,
		Subject:   msg.Subject,
		CreatedAt: s.clock.Now(),
	}
	if len(msg.Attachments) > 0 {
		name := msg.Attachments[0].Name
		entry.AttachmentName = &name
	}
	if sendErr != nil {
		entry.Status = domain.StatusFailed
		message := sendErr.Error()
		entry.Error = &message
	} else {
		entry.Status = domain.StatusSent
		if providerMessageID != "" {
			entry.ProviderMessageID = &providerMessageID
		}
	}

	if err := s.repo.Insert(ctx, s.db, entry); err != nil {
		s.log.Error("failed to write delivery log", zap.Error(err))
		return domain.Result{}, err
	}

	metrics.Delivery().ObserveAttempt(entry.Status, elapsed)
	log := logger.FromContext(ctx).Named("delivery.service")
	if sendErr != nil {
		log.Warn("delivery failed",
			zap.String("to", logger.MaskEmail(msg.To)),
			zap.String("subject", msg.Subject),
			zap.Error(sendErr),
		)
		return domain.Result{Accepted: false}, nil
	}

	log.Info("delivery sent",
		zap.String("to", logger.MaskEmail(msg.To)),
		zap.String("subject", msg.Subject),
		zap.String("provider_message_id", providerMessageID),
	)
	return domain.Result{Accepted: true, ProviderMessageID: providerMessageID}, nil
}

func (s *Service) ListLogs(ctx context.Context, filter domain.LogFilter) ([]*domain.DeliveryLog, error) {
	return s.repo.List(ctx, s.db, filter)
}
