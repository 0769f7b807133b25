// Package health contiene el controller para health checks.
package health

import (
	"context"
	"net/http"
	"sort"

	dto "github.com/dropDatabas3/sealjohn/internal/http/v2/dto/health"
	"github.com/dropDatabas3/sealjohn/internal/http/v2/helpers"
	"github.com/dropDatabas3/sealjohn/internal/observability/logger"
)

// Check devuelve nil si el componente está listo.
type Check func(ctx context.Context) error

type HealthController struct {
	service string
	version string
	checks  map[string]Check
}

func NewHealthController(service, version string, checks map[string]Check) *HealthController {
	return &HealthController{service: service, version: version, checks: checks}
}

// Health maneja GET /health (liveness): responde mientras el proceso viva.
func (c *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	if c.version != "" {
		w.Header().Set("X-Service-Version", c.version)
	}
	helpers.WriteJSON(w, http.StatusOK, dto.HealthResponse{
		Status:  "healthy",
		Service: c.service,
		Version: c.version,
	})
}

// Ready maneja GET /ready: 503 si algún check falla.
func (c *HealthController) Ready(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("HealthController.Ready"))

	names := make([]string, 0, len(c.checks))
	for name := range c.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	resp := dto.ReadyResponse{Status: "ready", Checks: make(map[string]string, len(names))}
	for _, name := range names {
		if err := c.checks[name](ctx); err != nil {
			resp.Status = "not_ready"
			resp.Checks[name] = "not_ready"
			log.Warn("readiness check failed", logger.Component(name), logger.Err(err))
			continue
		}
		resp.Checks[name] = "ready"
	}

	status := http.StatusOK
	if resp.Status != "ready" {
		status = http.StatusServiceUnavailable
	}
	helpers.WriteJSON(w, status, resp)
}
