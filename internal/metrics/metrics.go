// Package metrics provides Prometheus instrumentation for the realtime core:
// a gauge for live WebSocket sessions, counters for protocol events and
// notification fanout.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// SessionsActive tracks the current number of registered sessions.
	SessionsActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "mingle_sessions_active",
		Help: "Current number of live WebSocket sessions",
	})

	// EventsTotal counts inbound protocol events by type, including
	// "invalid" for frames that failed to parse.
	EventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mingle_events_total",
		Help: "Total inbound realtime events processed",
	}, []string{"type"})

	// EventErrorsTotal counts handler failures reported back as scoped
	// error events, by event type.
	EventErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mingle_event_errors_total",
		Help: "Total realtime events rejected with an error event",
	}, []string{"type"})

	// NotificationsTotal counts dispatched notifications by kind.
	NotificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mingle_notifications_total",
		Help: "Total notifications dispatched to live sessions",
	}, []string{"type"})
)

func init() {
	prometheus.MustRegister(
		SessionsActive,
		EventsTotal,
		EventErrorsTotal,
		NotificationsTotal,
	)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
