package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const healthCheckTimeout = 2 * time.Second

type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks"`
}

// HealthCheck names one dependency probed by /health. A nil Probe is
// reported as "not configured" and does not fail the check.
type HealthCheck struct {
	Name  string
	Probe Pinger
}

type HealthController struct {
	checks  []HealthCheck
	version string
}

func NewHealthController(version string, checks ...HealthCheck) *HealthController {
	return &HealthController{checks: checks, version: version}
}

func (h *HealthController) Status(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	resp := HealthResponse{
		Status:  "healthy",
		Time:    time.Now().Format(time.RFC3339),
		Version: h.version,
		Checks:  make(map[string]string, len(h.checks)),
	}
	for _, check := range h.checks {
		if check.Probe == nil {
			resp.Checks[check.Name] = "not configured"
			continue
		}
		if err := check.Probe.Ping(ctx); err != nil {
			resp.Checks[check.Name] = "error: " + err.Error()
			resp.Status = "unhealthy"
			continue
		}
		resp.Checks[check.Name] = "ok"
	}

	code := http.StatusOK
	if resp.Status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	c.IndentedJSON(code, resp)
}

func (h *HealthController) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}
