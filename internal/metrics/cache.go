package metrics

import "github.com/prometheus/client_golang/prometheus"

var cacheRequests *prometheus.CounterVec

func initCache() {
	cacheRequests = NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "cache_requests",
		Help:      "Report cache lookups by result",
	}, []string{"result"})
}

func CacheHit() {
	if Enabled() {
		cacheRequests.WithLabelValues("hit").Inc()
	}
}

func CacheMiss() {
	if Enabled() {
		cacheRequests.WithLabelValues("miss").Inc()
	}
}

func CacheError() {
	if Enabled() {
		cacheRequests.WithLabelValues("error").Inc()
	}
}
