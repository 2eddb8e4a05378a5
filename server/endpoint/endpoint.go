// Package endpoint provides the operational endpoints every service mounts.
package endpoint

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/crudify/component"
)

var started = time.Now()

// HealthChecker returns the health of every registered component.
type HealthChecker func(ctx context.Context) []component.Health

// HealthReport is the body of /health.
type HealthReport struct {
	Status     component.HealthStatus `json:"status"`
	Service    string                 `json:"service"`
	Timestamp  time.Time              `json:"timestamp"`
	Components []component.Health     `json:"components"`
}

// InfoReport is the body of /info.
type InfoReport struct {
	Service   string    `json:"service"`
	Version   string    `json:"version"`
	GoVersion string    `json:"go_version"`
	StartedAt time.Time `json:"started_at"`
	Uptime    string    `json:"uptime"`
}

// Health answers with the overall status and every component report. An
// unhealthy component turns the response into a 503; degraded answers 200.
func Health(service string, checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		report := HealthReport{Service: service, Timestamp: time.Now().UTC(), Components: []component.Health{}}
		if checker != nil {
			report.Components = checker(c.Request.Context())
		}
		report.Status = component.Overall(report.Components)

		code := http.StatusOK
		if report.Status == component.StatusUnhealthy {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, report)
	}
}

// Info answers with the service identity and process uptime.
func Info(service, version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, InfoReport{
			Service:   service,
			Version:   version,
			GoVersion: runtime.Version(),
			StartedAt: started.UTC(),
			Uptime:    time.Since(started).Round(time.Second).String(),
		})
	}
}
