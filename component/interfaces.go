package component

import "context"

// HealthStatus represents the health state of a component.
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusDegraded  HealthStatus = "degraded"
	StatusUnhealthy HealthStatus = "unhealthy"
)

// severity orders statuses from best to worst; unknown values count as unhealthy.
func (s HealthStatus) severity() int {
	switch s {
	case StatusHealthy:
		return 0
	case StatusDegraded:
		return 1
	default:
		return 2
	}
}

// Health is the health report of one component.
type Health struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// Overall returns the worst status among reports. No reports is healthy.
func Overall(reports []Health) HealthStatus {
	worst := 0
	for _, h := range reports {
		worst = max(worst, h.Status.severity())
	}
	return [...]HealthStatus{StatusHealthy, StatusDegraded, StatusUnhealthy}[worst]
}

// Component is a lifecycle-managed part of an application, such as the HTTP
// server or the module graph. Registry starts components in registration
// order and stops them in reverse.
type Component interface {
	Name() string
	Start(ctx context.Context) error
	// Stop releases the component. It is only called after a successful Start.
	Stop(ctx context.Context) error
	Health(ctx context.Context) Health
}
