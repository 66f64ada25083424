package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/alpadrive/fleet-server/internal/domain/registry"
)

// RegisterPresence wires three GaugeFuncs straight to the Presence
// Registry's own Snapshot, so a scrape always reflects the Lobby's
// current occupancy rather than a value some other goroutine pushed a
// tick ago.
func RegisterPresence(presence *registry.Presence) {
	prometheus.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "fleet_active_vehicles",
			Help: "Number of vehicles currently connected.",
		}, func() float64 {
			vehicles, _ := presence.Snapshot()
			return float64(vehicles)
		}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "fleet_active_sessions",
			Help: "Number of live connection ids across all rooms.",
		}, func() float64 {
			_, sessions := presence.Snapshot()
			return float64(sessions)
		}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "fleet_active_users",
			Help: "Number of live user (non-admin) sessions.",
		}, func() float64 {
			vehicles, sessions := presence.Snapshot()
			return float64(sessions - vehicles)
		}),
	)
}
