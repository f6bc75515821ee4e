package controllers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gorilla/mux"

	"github.com/iota-uz/tgbridge/pkg/application"
	"github.com/iota-uz/tgbridge/pkg/httpapi"
)

// HealthCheck reports whether one dependency is usable.
type HealthCheck func(ctx context.Context) error

type HealthController struct {
	checks  map[string]HealthCheck
	timeout time.Duration
}

func NewHealthController(checks map[string]HealthCheck) application.Controller {
	return &HealthController{checks: checks, timeout: 2 * time.Second}
}

func (c *HealthController) Key() string {
	return "/health"
}

func (c *HealthController) Register(r *mux.Router) {
	r.HandleFunc("/health", c.Health).Methods(http.MethodGet)
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func (c *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), c.timeout)
	defer cancel()

	names := make([]string, 0, len(c.checks))
	for name := range c.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	resp := healthResponse{Status: "ok", Checks: make(map[string]string, len(names))}
	status := http.StatusOK
	for _, name := range names {
		if err := c.checks[name](ctx); err != nil {
			resp.Checks[name] = err.Error()
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}
	_ = httpapi.WriteJSON(w, status, resp)
}
