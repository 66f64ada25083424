package cmd

import (
	"log/slog"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.uber.org/fx"

	"github.com/alpadrive/fleet-server/config"
	"github.com/alpadrive/fleet-server/internal/domain/registry"
	httphandler "github.com/alpadrive/fleet-server/internal/handler/http"
	"github.com/alpadrive/fleet-server/internal/handler/ws"
	"github.com/alpadrive/fleet-server/internal/metrics"
	"github.com/alpadrive/fleet-server/internal/service/account"
	"github.com/alpadrive/fleet-server/internal/service/pairing"
	"github.com/alpadrive/fleet-server/internal/service/status"
	"github.com/alpadrive/fleet-server/internal/service/telemetry"
	mongostore "github.com/alpadrive/fleet-server/internal/store/mongo"
)

// NewApp wires the full fx graph: config, storage, the Lobby/Presence
// registry, every internal/service, and the HTTP+WS handler layer.
// Shaped after the teacher's own cmd/fx.go, generalized from its single
// postgres/grpc stack to this system's mongo/http/ws one.
func NewApp(cfg *config.Config) *fx.App {
	return fx.New(
		fx.Provide(
			func() *config.Config { return cfg },
			ProvideLogger,
		),
		registry.NewLobbyModule(registry.WithEventBuffer(cfg.Lobby.EventBuffer)),
		mongostore.Module,
		account.Module,
		pairing.Module,
		telemetry.Module,
		status.Module,
		metrics.Module,
		ws.Module,
		httphandler.Module,
		fx.Provide(func(cfg *config.Config) httphandler.ServerParams {
			return httphandler.ServerParams{Addr: cfg.HTTP.Addr, StaticDir: cfg.HTTP.StaticDir}
		}),
		fx.Invoke(httphandler.NewLifecycleServer),
	)
}

// ProvideLogger builds the process-wide *slog.Logger. Its only handler
// is the otelslog bridge, so every log record becomes a record on the
// OTel LoggerProvider, matching the teacher's own otelslog dependency.
// The provider has no processors or exporters, so log records are not
// written anywhere: they are neither exported nor printed locally.
func ProvideLogger() *slog.Logger {
	provider := sdklog.NewLoggerProvider()
	handler := otelslog.NewHandler(ServiceName, otelslog.WithLoggerProvider(provider))
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

