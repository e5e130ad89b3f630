package http

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Dependency is something readiness checks. A failing optional dependency
// degrades readiness without failing it.
type Dependency struct {
	Name     string
	Ping     func(ctx context.Context) error
	Optional bool
}

type healthHandler struct {
	deps    []Dependency
	timeout time.Duration
}

func newHealthHandler(deps []Dependency) *healthHandler {
	return &healthHandler{deps: deps, timeout: time.Second}
}

type livenessResponse struct {
	Status string `json:"status"`
}

type readinessResponse struct {
	Status       string            `json:"status"`
	Dependencies map[string]string `json:"dependencies"`
}

func (h *healthHandler) liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, livenessResponse{Status: "ok"})
}

func (h *healthHandler) readiness(w http.ResponseWriter, r *http.Request) {
	status, deps := checkDependencies(r.Context(), h.deps, h.timeout)

	code := http.StatusOK
	if status == "error" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, readinessResponse{Status: status, Dependencies: deps})
}

func checkDependencies(ctx context.Context, deps []Dependency, timeout time.Duration) (string, map[string]string) {
	out := make(map[string]string, len(deps))
	status := "ok"

	for _, d := range deps {
		pingCtx, cancel := context.WithTimeout(ctx, timeout)
		err := d.Ping(pingCtx)
		cancel()
		if err == nil {
			out[d.Name] = "ok"
			continue
		}
		out[d.Name] = "down"
		switch {
		case !d.Optional:
			status = "error"
		case status == "ok":
			status = "degraded"
		}
	}
	return status, out
}

// RequiredReady returns a check that fails when any required dependency is
// down. Optional dependencies are not pinged.
func RequiredReady(deps []Dependency) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		for _, d := range deps {
			if d.Optional {
				continue
			}
			pingCtx, cancel := context.WithTimeout(ctx, time.Second)
			err := d.Ping(pingCtx)
			cancel()
			if err != nil {
				return fmt.Errorf("%s: %w", d.Name, err)
			}
		}
		return nil
	}
}
