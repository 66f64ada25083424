package account

import (
	"go.uber.org/fx"

	httphandler "github.com/alpadrive/fleet-server/internal/handler/http"
)

var Module = fx.Module("account",
	fx.Provide(
		NewService,
		func(s *Service) httphandler.AccountService { return s },
	),
)
