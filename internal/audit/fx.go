package audit

import (
	"github.com/jperram92/JamesCRM-sub003/internal/audit/repository"
	"github.com/jperram92/JamesCRM-sub003/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
