package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteError_Envelope(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, WriteError(rec, http.StatusBadRequest, "BAD", "bad input", map[string]string{"field": "offset"}))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var env ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Equal(t, ErrorEnvelope{Code: "BAD", Message: "bad input", Meta: map[string]string{"field": "offset"}}, env)
}

func TestWriteJSON_NilPayload(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, WriteJSON(rec, http.StatusNoContent, nil))
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Empty(t, rec.Body.String())
}

func TestFallbackHandlers(t *testing.T) {
	rec := httptest.NewRecorder()
	NotFound().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.JSONEq(t, `{"code":"NOT_FOUND","message":"route not found","meta":{"path":"/nope"}}`, rec.Body.String())

	rec = httptest.NewRecorder()
	MethodNotAllowed().ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/health", nil))
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
