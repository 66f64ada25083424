package pairing

import (
	"go.uber.org/fx"

	"github.com/alpadrive/fleet-server/config"
	httphandler "github.com/alpadrive/fleet-server/internal/handler/http"
	"github.com/alpadrive/fleet-server/internal/store/mongo"
)

var Module = fx.Module("pairing",
	fx.Provide(
		func(users *mongo.Users, vehicles *mongo.Vehicles, cfg *config.Config) *Coordinator {
			return NewCoordinator(users, vehicles, cfg.Pairing.CacheSize)
		},
		func(c *Coordinator) httphandler.Authorizer { return c },
		func(c *Coordinator) httphandler.PairService { return c },
	),
)
