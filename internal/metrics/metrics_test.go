package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledMetricsAreNoops(t *testing.T) {
	Registry = nil
	RemoteCall("google_analytics", nil)
	CacheHit()

	recorder := httptest.NewRecorder()
	Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestCounters(t *testing.T) {
	Init(true)
	t.Cleanup(func() { Registry = nil })

	RemoteCall("google_analytics", nil)
	RemoteCall("google_analytics", errors.New("quota"))
	RemoteCall("google_analytics", errors.New("quota"))
	CacheHit()
	CacheMiss()
	CacheMiss()

	assert.Equal(t, 1.0, testutil.ToFloat64(remoteCalls.WithLabelValues("google_analytics", StatusSuccess)))
	assert.Equal(t, 2.0, testutil.ToFloat64(remoteCalls.WithLabelValues("google_analytics", StatusError)))
	assert.Equal(t, 2.0, testutil.ToFloat64(cacheRequests.WithLabelValues("miss")))

	recorder := httptest.NewRecorder()
	Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "analyticsadmin_remote_calls")
}
