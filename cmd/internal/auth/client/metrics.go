package client

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes the client's request/refresh counters.
//
// Pass a nil Registerer to get working but unregistered collectors; tests use
// a private registry to assert exact counts.
type Metrics struct {
	Requests        *prometheus.CounterVec
	RefreshAttempts prometheus.Counter
	RefreshFailures prometheus.Counter
	Replays         prometheus.Counter
}

// NewMetrics constructs the client metric set on the given registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "orchard",
			Subsystem: "client",
			Name:      "requests_total",
			Help:      "Outbound API requests by outcome.",
		}, []string{"outcome"}),
		RefreshAttempts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "orchard",
			Subsystem: "client",
			Name:      "refresh_attempts_total",
			Help:      "Token refresh calls actually sent to the backend.",
		}),
		RefreshFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "orchard",
			Subsystem: "client",
			Name:      "refresh_failures_total",
			Help:      "Token refresh calls that did not yield a new token.",
		}),
		Replays: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "orchard",
			Subsystem: "client",
			Name:      "request_replays_total",
			Help:      "Requests replayed after a successful token refresh.",
		}),
	}
}

// Outcome label values for Metrics.Requests.
const (
	outcomeOK      = "ok"
	outcomeHTTP    = "http_error"
	outcomeNetwork = "network_error"
)
