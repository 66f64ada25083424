// Package metrics exposes the process's Prometheus collectors, scraped
// at /metrics (internal/handler/http/router.go already wires
// promhttp.Handler against the default registry). Grounded on the gauge-
// and-counter-vec shape of
// streamspace-dev-streamspace/controller/pkg/metrics/metrics.go, trimmed
// to the signals this system actually has: Presence Registry occupancy
// and the two pipelines most worth watching, telemetry folds and
// pairing outcomes.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	SamplesFolded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleet_telemetry_samples_folded_total",
			Help: "Total number of telemetry samples folded into a daily aggregate.",
		},
		[]string{"result"},
	)

	PairOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleet_pair_outcomes_total",
			Help: "Total number of pairing attempts by outcome.",
		},
		[]string{"outcome"},
	)

	ConnectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleet_connections_total",
			Help: "Total number of Connection Endpoint sockets accepted, by sender kind.",
		},
		[]string{"sender_kind"},
	)
)

func init() {
	prometheus.MustRegister(SamplesFolded, PairOutcomes, ConnectionsTotal)
}
