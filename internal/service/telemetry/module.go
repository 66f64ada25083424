package telemetry

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/alpadrive/fleet-server/config"
	httphandler "github.com/alpadrive/fleet-server/internal/handler/http"
	"github.com/alpadrive/fleet-server/internal/store/mongo"
)

var Module = fx.Module("telemetry",
	fx.Provide(
		func(logs *mongo.Logs, cfg *config.Config) *Aggregator {
			return NewAggregator(logs, cfg.Telemetry.ShardCount, cfg.Telemetry.DateFormat)
		},
		func(a *Aggregator) httphandler.LogReader { return a },
		NewIngest,
	),
	fx.Invoke(registerIngest),
)

func registerIngest(lc fx.Lifecycle, logger *slog.Logger, ingest *Ingest) {
	var cancel context.CancelFunc
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			var runCtx context.Context
			runCtx, cancel = context.WithCancel(context.Background())
			go func() {
				if err := ingest.Run(runCtx); err != nil {
					logger.Error("telemetry ingest stopped", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			return ingest.Close()
		},
	})
}
