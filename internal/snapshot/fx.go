package snapshot

import (
	"github.com/erplora/analytics/internal/snapshot/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("snapshot",
	fx.Provide(repository.Provide),
)
