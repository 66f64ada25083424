package registry

import (
	"context"

	"go.uber.org/fx"
)

// NewLobbyModule provides the Presence registry and Lobby, and starts
// the Lobby's event loop on its own goroutine for the application's
// lifetime. Takes Options directly since the event-buffer size comes
// from config rather than DI.
func NewLobbyModule(opts ...Option) fx.Option {
	return fx.Module("registry",
		fx.Provide(
			NewPresence,
			func(presence *Presence) *Lobby {
				return NewLobby(presence, opts...)
			},
		),
		fx.Invoke(func(lc fx.Lifecycle, lobby *Lobby) {
			ctx, cancel := context.WithCancel(context.Background())
			lc.Append(fx.Hook{
				OnStart: func(context.Context) error {
					go lobby.Run(ctx)
					return nil
				},
				OnStop: func(context.Context) error {
					cancel()
					return nil
				},
			})
		}),
	)
}
