package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestPrometheusController_DefaultPath(t *testing.T) {
	c := NewPrometheusController("", nil)
	require.Equal(t, DefaultPath, c.Key())
}

func TestPrometheusController_ServesRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "tgbridge_test_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Add(3)

	r := mux.NewRouter()
	NewPrometheusController("/metrics", reg).Register(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "tgbridge_test_total 3")

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/metrics", nil))
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
