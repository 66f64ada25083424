package metrics

import (
	"go.uber.org/fx"

	"github.com/alpadrive/fleet-server/config"
	"github.com/alpadrive/fleet-server/internal/domain/registry"
)

var Module = fx.Module("metrics",
	fx.Invoke(func(cfg *config.Config, presence *registry.Presence) {
		if !cfg.Metrics.Enabled {
			return
		}
		RegisterPresence(presence)
	}),
)
