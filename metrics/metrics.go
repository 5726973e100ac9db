package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// ViewRefreshTotal counts view refreshes by view and result
	// (applied, stale, error).
	ViewRefreshTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "beacon",
		Subsystem: "admin",
		Name:      "view_refresh_total",
		Help:      "Total number of view refreshes, labeled by view and result.",
	}, []string{"view", "result"})

	// ModalSubmitTotal counts modal submissions by context and outcome
	// (ok, partial, invalid, error).
	ModalSubmitTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "beacon",
		Subsystem: "admin",
		Name:      "modal_submit_total",
		Help:      "Total number of modal submissions, labeled by context and outcome.",
	}, []string{"context", "outcome"})

	PublishTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "beacon",
		Subsystem: "admin",
		Name:      "publish_total",
		Help:      "Total number of public announcement posts, labeled by result.",
	}, []string{"result"})

	BroadcastClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "beacon",
		Subsystem: "admin",
		Name:      "websocket_clients",
		Help:      "Dashboards connected to the refresh websocket.",
	})
)

// Register registers the metrics with the default Prometheus registry.
// Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			ViewRefreshTotal,
			ModalSubmitTotal,
			PublishTotal,
			BroadcastClients,
		)
	})
}
