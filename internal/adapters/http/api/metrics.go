package api

import (
	"net/http"

	"github.com/okian/retina/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewMetricsHandler serves the gateway's Prometheus registry.
func NewMetricsHandler() http.Handler {
	return promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{})
}
