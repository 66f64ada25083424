package ws

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/alpadrive/fleet-server/config"
	"github.com/alpadrive/fleet-server/internal/domain/registry"
	httphandler "github.com/alpadrive/fleet-server/internal/handler/http"
	"github.com/alpadrive/fleet-server/internal/service/telemetry"
)

var Module = fx.Module("ws",
	fx.Provide(
		func(logger *slog.Logger, lobby *registry.Lobby, ingest *telemetry.Ingest, cfg *config.Config) *Service {
			return NewService(logger, lobby, ingest, cfg)
		},
		func(s *Service) httphandler.WSService { return s },
	),
)
