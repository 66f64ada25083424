package http

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"go.uber.org/fx"
)

var Module = fx.Module("http",
	fx.Provide(
		NewAccountHandler,
		NewVehicleHandler,
		NewLogsHandler,
		NewSocketHandler,
	),
)

// ServerParams configures the http.Server NewLifecycleServer starts.
type ServerParams struct {
	Addr      string
	StaticDir string
}

// NewLifecycleServer builds the router and registers it to start and
// stop with the fx application, in the teacher's lc.Append shape.
func NewLifecycleServer(lc fx.Lifecycle, logger *slog.Logger, account *AccountHandler, vehicle *VehicleHandler, logs *LogsHandler, socket *SocketHandler, params ServerParams) *http.Server {
	handler := NewRouter(account, vehicle, logs, socket, params.StaticDir)
	srv := &http.Server{
		Addr:         params.Addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // sockets stay open for the connection's lifetime
		IdleTimeout:  120 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			go func() {
				if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
					logger.Error("http server error", "error", err)
				}
			}()
			logger.Info("http server listening", "addr", srv.Addr)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})

	return srv
}
