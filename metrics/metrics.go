package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_http_requests_total",
			Help: "Total number of HTTP requests handled by the gateway",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_http_request_duration_seconds",
			Help:    "Time spent handling HTTP requests",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
		},
		[]string{"method", "route"},
	)

	// UpstreamRequestsTotal counts outbound calls by service and outcome
	// ("ok", "error_status", "unreachable").
	UpstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_upstream_requests_total",
			Help: "Outbound calls to upstream services",
		},
		[]string{"upstream", "outcome"},
	)

	ToolRunDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_tool_run_duration_seconds",
			Help:    "Wall time of external tool invocations",
			Buckets: []float64{0.01, 0.1, 0.5, 1, 5, 15, 60, 300},
		},
		[]string{"tool", "exit"},
	)

	ToolsInFlight = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gateway_tools_in_flight",
			Help: "External tool processes currently running",
		},
		[]string{"tool"},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		UpstreamRequestsTotal,
		ToolRunDuration,
		ToolsInFlight,
	)
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveUpstream records one outbound call.
func ObserveUpstream(upstream, outcome string) {
	UpstreamRequestsTotal.WithLabelValues(upstream, outcome).Inc()
}
