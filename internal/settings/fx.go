package settings

import (
	"github.com/erplora/analytics/internal/settings/repository"
	"github.com/erplora/analytics/internal/settings/service"
	"go.uber.org/fx"
)

var Module = fx.Module("settings",
	fx.Provide(
		repository.Provide,
		service.New,
	),
)
