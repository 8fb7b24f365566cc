package bootstrap

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/kbukum/routekit/component"
)

// Summary prints the startup overview: components, their endpoints and
// live health.
type Summary struct {
	serviceName     string
	version         string
	startupDuration time.Duration
	out             io.Writer
}

// NewSummary creates a summary printer. A nil writer disables output.
func NewSummary(serviceName, version string, out io.Writer) *Summary {
	return &Summary{serviceName: serviceName, version: version, out: out}
}

// SetStartupDuration records the total start-up time.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.startupDuration = d
}

// Display prints the summary for the components in registry.
func (s *Summary) Display(ctx context.Context, registry *component.Registry) {
	if s.out == nil {
		return
	}
	w := s.out
	fmt.Fprintf(w, "\n%s v%s started in %.2fs\n", s.serviceName, s.version, s.startupDuration.Seconds())

	components := registry.All()
	if len(components) == 0 {
		fmt.Fprintf(w, "   └── no components registered\n\n")
		return
	}

	fmt.Fprintf(w, "\nComponents\n")
	var endpoints []component.Endpoint
	for i, c := range components {
		name, details := c.Name(), ""
		if d, ok := c.(component.Describable); ok {
			desc := d.Describe()
			if desc.Name != "" {
				name = desc.Name
			}
			if desc.Type != "" {
				details = "[" + desc.Type + "] "
			}
			details += desc.Details
		}
		fmt.Fprintf(w, "   %s %s %s\n", branch(i, len(components)), name, details)
		if p, ok := c.(component.EndpointProvider); ok {
			endpoints = append(endpoints, p.Endpoints()...)
		}
	}

	if len(endpoints) > 0 {
		fmt.Fprintf(w, "\nEndpoints (%d)\n", len(endpoints))
		for i, e := range endpoints {
			fmt.Fprintf(w, "   %s %-6s %s\n", branch(i, len(endpoints)), e.Method, e.Path)
		}
	}

	health := registry.HealthAll(ctx)
	fmt.Fprintf(w, "\nHealth: %s\n", component.Overall(health))
	for i, h := range health {
		msg := ""
		if h.Message != "" {
			msg = " (" + h.Message + ")"
		}
		fmt.Fprintf(w, "   %s %s: %s%s\n", branch(i, len(health)), h.Name, strings.ToLower(string(h.Status)), msg)
	}
	fmt.Fprintln(w)
}

func branch(i, n int) string {
	if i == n-1 {
		return "└──"
	}
	return "├──"
}
