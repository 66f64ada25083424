package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter assembles the full HTTP surface: account/vehicle/status/logs
// JSON routes, the three socket-upgrading routes, static landing
// assets, and /metrics.
func NewRouter(account *AccountHandler, vehicle *VehicleHandler, logs *LogsHandler, socket *SocketHandler, staticDir string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/", serveStatic(staticDir, "index.html"))
	r.Get("/landing/banner", serveStatic(staticDir, "banner"))
	r.Get("/landing/icons/title", serveStatic(staticDir, "icons/title"))
	r.Get("/landing/icons/social", serveStatic(staticDir, "icons/social"))

	r.Get("/join/vehicle/{uid}", socket.JoinVehicle)
	r.Get("/join/user/{vid}/{uid}", socket.JoinUser)
	r.Get("/pair/{vid}/{uid}", socket.Pair)

	r.Post("/login", account.Login)
	r.Post("/signup", account.Signup)
	r.Post("/status", account.Status)

	r.Post("/vehicle/register", vehicle.Register)
	r.Post("/vehicle/refresh", vehicle.Refresh)
	r.Post("/vehicle/edit", vehicle.Edit)

	r.Post("/logs/daily", logs.Daily)
	r.Post("/logs/periodic", logs.Periodic)
	r.Post("/logs/overall", logs.Overall)

	r.Handle("/metrics", promhttp.Handler())

	return r
}

func serveStatic(dir, name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, dir+"/"+name)
	}
}
