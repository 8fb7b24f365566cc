package component

import "context"

// HealthStatus represents the health state of a component.
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusUnhealthy HealthStatus = "unhealthy"
	StatusDegraded  HealthStatus = "degraded"
)

// Health holds health information for a component.
type Health struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// Component is a lifecycle-managed part of a host process.
type Component interface {
	// Name returns the unique registration name.
	Name() string

	// Start brings the component up. It must not block past start-up.
	Start(ctx context.Context) error

	// Stop shuts the component down, honouring ctx's deadline.
	Stop(ctx context.Context) error

	// Health reports the current status.
	Health(ctx context.Context) Health
}

// Description is what a component reports about itself in the startup
// summary.
type Description struct {
	// Name is the display name. Empty means Component.Name().
	Name string
	// Type groups components: "craft", "server", "telemetry".
	Type string
	// Details is a one-line configuration summary, e.g. "routes=1 max_in_flight=64".
	Details string
	// Port is the listening port, 0 if none.
	Port int
}

// Describable is implemented by components that describe themselves.
type Describable interface {
	Describe() Description
}

// Endpoint is one HTTP endpoint exposed by a component.
type Endpoint struct {
	Method string
	Path   string
}

// EndpointProvider is implemented by components that serve HTTP.
type EndpointProvider interface {
	Endpoints() []Endpoint
}

// Overall folds a set of health reports into one status: unhealthy if any
// is unhealthy, degraded if any is degraded, healthy otherwise.
func Overall(results []Health) HealthStatus {
	status := StatusHealthy
	for _, h := range results {
		switch h.Status {
		case StatusUnhealthy:
			return StatusUnhealthy
		case StatusDegraded:
			status = StatusDegraded
		}
	}
	return status
}
