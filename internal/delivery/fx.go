package delivery

import (
	"github.com/jperram92/JamesCRM-sub003/internal/delivery/repository"
	"github.com/jperram92/JamesCRM-sub003/internal/delivery/service"
	"github.com/jperram92/JamesCRM-sub003/internal/delivery/smtp"
	"go.uber.org/fx"
)

var Module = fx.Module("delivery.service",
	fx.Provide(smtp.NewMailer),
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
