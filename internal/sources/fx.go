package sources

import (
	"github.com/erplora/analytics/internal/sources/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("sources",
	fx.Provide(repository.NewRegistry),
)
