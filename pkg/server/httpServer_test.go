package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/tgbridge/pkg/application"
)

type bodyController struct {
	path        string
	contentType string
}

func (c bodyController) Key() string { return c.path }

func (c bodyController) Register(r *mux.Router) {
	r.HandleFunc(c.path, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", c.contentType)
		_, _ = w.Write([]byte(strings.Repeat("a", 4096)))
	}).Methods(http.MethodGet)
}

func newServer() *HTTPServer {
	app := application.New(&application.ApplicationOptions{})
	app.RegisterControllers(
		bodyController{path: "/json", contentType: "application/json"},
		bodyController{path: "/video", contentType: "video/mp4"},
	)
	return NewHTTPServer(app,
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNotFound) }),
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusMethodNotAllowed) }),
	)
}

func TestHandler_GzipsJSONOnly(t *testing.T) {
	h := newServer().Handler()

	req := httptest.NewRequest(http.MethodGet, "/json", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))

	req = httptest.NewRequest(http.MethodGet, "/video", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Empty(t, rec.Header().Get("Content-Encoding"))
	require.Len(t, rec.Body.Bytes(), 4096)
}

func TestRouter_FallbackHandlers(t *testing.T) {
	r := newServer().Router()

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/json", nil))
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
