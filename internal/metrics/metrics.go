// Package metrics holds the Prometheus collectors exported at /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds our collectors plus the Go runtime ones.
var Registry = prometheus.NewRegistry()

var (
	PaymentAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mamacare_payment_attempts_total",
		Help: "Payment attempts by resulting status.",
	}, []string{"status"})

	GatewayNotifications = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mamacare_gateway_notifications_total",
		Help: "Gateway notifications by outcome (applied, duplicate, ignored, unknown).",
	}, []string{"result"})

	GatewayErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mamacare_gateway_errors_total",
		Help: "Failed gateway calls by operation.",
	}, []string{"operation"})

	SMSSent = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mamacare_sms_total",
		Help: "SMS notifications by result.",
	}, []string{"result"})

	DashboardBuild = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mamacare_dashboard_build_seconds",
		Help:    "Time spent assembling a dashboard.",
		Buckets: prometheus.DefBuckets,
	}, []string{"source"})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		PaymentAttempts,
		GatewayNotifications,
		GatewayErrors,
		SMSSent,
		DashboardBuild,
	)
}

// Handler serves the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
