package document

import (
	"github.com/jperram92/JamesCRM-sub003/internal/document/render"
	"github.com/jperram92/JamesCRM-sub003/internal/document/repository"
	"github.com/jperram92/JamesCRM-sub003/internal/document/store"
	"go.uber.org/fx"
)

var Module = fx.Module("document",
	fx.Provide(render.NewRenderer),
	fx.Provide(store.NewStore),
	fx.Provide(repository.Provide),
)
