package quote

import (
	"github.com/jperram92/JamesCRM-sub003/internal/quote/repository"
	"github.com/jperram92/JamesCRM-sub003/internal/quote/service"
	"go.uber.org/fx"
)

var Module = fx.Module("quote.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
