package analytics

import (
	"github.com/erplora/analytics/internal/analytics/service"
	"go.uber.org/fx"
)

var Module = fx.Module("analytics",
	fx.Provide(service.New),
)
