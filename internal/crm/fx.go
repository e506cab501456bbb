package crm

import (
	"github.com/jperram92/JamesCRM-sub003/internal/crm/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("crm",
	fx.Provide(repository.Provide),
)
