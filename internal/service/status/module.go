package status

import (
	"go.uber.org/fx"

	httphandler "github.com/alpadrive/fleet-server/internal/handler/http"
)

var Module = fx.Module("status",
	fx.Provide(
		NewService,
		func(s *Service) httphandler.StatusService { return s },
	),
)
