package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"analyticsadmin/internal/logging"
)

const Namespace = "analyticsadmin"

var Registry *prometheus.Registry

func Enabled() bool {
	return Registry != nil
}

func NewCounterVec(opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	vec := prometheus.NewCounterVec(opts, labels)
	Registry.MustRegister(vec)
	return vec
}

// Init creates the registry and all collectors when enabled. Calling it again starts from a fresh registry.
func Init(enabled bool) {
	if !enabled {
		Registry = nil
		return
	}

	logging.Info("✅ Initializing Prometheus metrics..")

	Registry = prometheus.NewRegistry()
	Registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	initRemoteCalls()
	initCache()
}

// Handler serves the registry in the Prometheus text format
func Handler() http.Handler {
	if !Enabled() {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
