package mongo

import (
	"context"

	"go.uber.org/fx"

	"github.com/alpadrive/fleet-server/config"
)

// Module provides the Mongo client and its three repositories, and
// closes the client when the fx application stops.
var Module = fx.Module("mongo",
	fx.Provide(
		func(lc fx.Lifecycle, cfg *config.Config) (*Client, error) {
			client, err := NewClient(context.Background(), cfg.Mongo)
			if err != nil {
				return nil, err
			}
			lc.Append(fx.Hook{
				OnStop: func(ctx context.Context) error {
					return client.Close(ctx)
				},
			})
			return client, nil
		},
		NewUsers,
		NewVehicles,
		NewLogs,
	),
)
