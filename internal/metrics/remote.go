package metrics

import "github.com/prometheus/client_golang/prometheus"

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

var remoteCalls *prometheus.CounterVec

func initRemoteCalls() {
	remoteCalls = NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "remote_calls",
		Help:      "Reporting API requests by driver and outcome",
	}, []string{"driver", "status"})
}

func RemoteCall(driver string, err error) {
	if !Enabled() {
		return
	}
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	remoteCalls.WithLabelValues(driver, status).Inc()
}
