package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/amir-mohammad-HP/ws-cron/pkg/logger"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_ObservePass(t *testing.T) {
	m := New()

	m.ObservePass("update", 10*time.Millisecond, 3, nil)
	m.ObservePass("start", time.Millisecond, 4, nil)
	m.ObservePass("stop", time.Millisecond, 0, errors.New("install failed"))

	assert.Equal(t, float64(1), testutil.ToFloat64(m.reconcileTotal.WithLabelValues("update", "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.reconcileTotal.WithLabelValues("stop", "error")))
	assert.Equal(t, float64(4), testutil.ToFloat64(m.managedJobs))

	_, err := m.LastPass()
	assert.EqualError(t, err, "install failed")
}

func TestServer_Health(t *testing.T) {
	m := New()
	s := NewServer("127.0.0.1:0", m, logger.NewNullLogger())
	router := s.Router()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	m.ObservePass("update", time.Millisecond, 0, errors.New("boom"))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error":"boom"`)
}

func TestServer_Metrics(t *testing.T) {
	m := New()
	m.ObserveEvent("start")
	router := NewServer("127.0.0.1:0", m, logger.NewNullLogger()).Router()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `ws_cron_events_total{action="start"} 1`))
}
