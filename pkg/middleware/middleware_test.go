package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"github.com/ulule/limiter/v3"
)

func TestWithLogger_RequestID(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	var seen *logrus.Entry
	h := WithLogger(logger, DefaultLoggerOptions())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = Logger(r.Context(), nil)
		w.WriteHeader(http.StatusAccepted)
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Equal(t, "req-1", rec.Header().Get("X-Request-Id"))
	require.NotNil(t, seen)
	require.Equal(t, "req-1", seen.Data["request-id"])

	last := hook.LastEntry()
	require.Equal(t, "request completed", last.Message)
	require.Equal(t, http.StatusAccepted, last.Data["status-code"])
}

func TestWithLogger_RecoversPanic(t *testing.T) {
	logger, hook := test.NewNullLogger()
	h := WithLogger(logger, DefaultLoggerOptions())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	require.NotPanics(t, func() {
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	})
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), "INTERNAL_SERVER_ERROR")

	var found bool
	for _, e := range hook.AllEntries() {
		if e.Message == "panic recovered in request handler" {
			found = true
		}
	}
	require.True(t, found)
}

func TestLogger_Fallback(t *testing.T) {
	fallback := logrus.NewEntry(logrus.New())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	require.Same(t, fallback, Logger(req.Context(), fallback))
}

func TestRateLimit_Memory(t *testing.T) {
	store, err := NewStore("memory", nil)
	require.NoError(t, err)

	rate, err := limiter.NewRateFromFormatted("2-M")
	require.NoError(t, err)

	h := RateLimit(RateLimitConfig{Rate: rate, Store: store})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	require.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}
