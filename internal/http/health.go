package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const healthCheckTimeout = 2 * time.Second

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependency is a named service checked by GET /health. A nil Pinger is
// reported as "not configured" and does not affect the overall status.
type Dependency struct {
	Name   string
	Pinger Pinger
}

type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks"`
}

type HealthController struct {
	version string
	deps    []Dependency
}

func NewHealthController(version string, deps ...Dependency) *HealthController {
	return &HealthController{version: version, deps: deps}
}

// Status pings every dependency and answers 503 if any of them fails.
func (h *HealthController) Status(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	response := HealthResponse{
		Status:  "healthy",
		Time:    time.Now().UTC().Format(time.RFC3339),
		Version: h.version,
		Checks:  make(map[string]string, len(h.deps)),
	}
	for _, dep := range h.deps {
		if dep.Pinger == nil {
			response.Checks[dep.Name] = "not configured"
			continue
		}
		if err := dep.Pinger.Ping(ctx); err != nil {
			response.Checks[dep.Name] = "error: " + err.Error()
			response.Status = "unhealthy"
			continue
		}
		response.Checks[dep.Name] = "ok"
	}

	code := http.StatusOK
	if response.Status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	c.IndentedJSON(code, response)
}
