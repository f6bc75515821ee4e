package metrics

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iota-uz/tgbridge/pkg/application"
)

const DefaultPath = "/debug/prometheus"

// PrometheusController exposes the collectors of a gatherer, the default registry
// when none is given.
type PrometheusController struct {
	path     string
	gatherer prometheus.Gatherer
}

func NewPrometheusController(path string, gatherer prometheus.Gatherer) application.Controller {
	if path == "" {
		path = DefaultPath
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &PrometheusController{path: path, gatherer: gatherer}
}

func (c *PrometheusController) Key() string {
	return c.path
}

func (c *PrometheusController) Register(r *mux.Router) {
	h := promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
	r.Handle(c.path, h).Methods(http.MethodGet)
}
