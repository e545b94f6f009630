package endpoint

import (
	"encoding/json"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"

	"github.com/GoCodeAlone/actuator"
)

// healthResponse is the body of both health routes.
type healthResponse struct {
	Status    actuator.HealthStatus   `json:"status"`
	Readiness actuator.HealthStatus   `json:"readiness"`
	Reports   []actuator.HealthReport `json:"reports"`
}

func (m *Module) newRouter() chi.Router {
	r := chi.NewRouter()
	r.Route(m.config.basePath()+"/health", func(r chi.Router) {
		r.Get("/", m.handleHealth)
		r.Get("/{name}", m.handleComponent)
	})
	return r
}

func (m *Module) handleHealth(w http.ResponseWriter, r *http.Request) {
	health, err := m.aggregator.Collect(r.Context())
	if err != nil {
		m.logger.Error("Health collection failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	m.writeJSON(w, statusCode(health.Readiness), healthResponse{
		Status:    health.Health,
		Readiness: health.Readiness,
		Reports:   health.Reports,
	})
}

func (m *Module) handleComponent(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if !m.hasProvider(name) {
		http.NotFound(w, r)
		return
	}

	health, err := m.aggregator.Collect(r.Context())
	if err != nil {
		m.logger.Error("Health collection failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var reports []actuator.HealthReport
	for _, report := range health.Reports {
		if report.Module == name {
			reports = append(reports, report)
		}
	}
	component := actuator.AggregateReports(reports)
	m.writeJSON(w, statusCode(component.Readiness), healthResponse{
		Status:    component.Health,
		Readiness: component.Readiness,
		Reports:   component.Reports,
	})
}

// hasProvider reports whether name is one of the aggregated providers.
func (m *Module) hasProvider(name string) bool {
	return slices.Contains(m.aggregator.ProviderNames(), name)
}

// statusCode maps a status the way load balancers expect: unhealthy is 503, anything
// else 200.
func statusCode(status actuator.HealthStatus) int {
	if status == actuator.HealthStatusUnhealthy {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}

func (m *Module) writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		m.logger.Debug("Failed to write health response", "error", err)
	}
}
