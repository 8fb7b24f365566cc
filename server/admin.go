package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/routekit/component"
	"github.com/kbukum/routekit/craft"
	"github.com/kbukum/routekit/errors"
	"github.com/kbukum/routekit/version"
)

// HealthChecker returns the health of the host's components.
type HealthChecker func(ctx context.Context) []component.Health

// ContextReporter is the read-only view of an execution context served on
// /routes. *craft.Context satisfies it.
type ContextReporter interface {
	Name() string
	State() craft.State
	Stats() []craft.RouteStats
}

// Admin selects what the admin endpoints report.
type Admin struct {
	Service  string
	Health   HealthChecker
	Contexts []ContextReporter
	// Events, when set, is mounted at /events. sse.Hub.Handler fits.
	Events http.Handler
}

// ContextStatus is one entry of the /routes response.
type ContextStatus struct {
	Name   string             `json:"name"`
	State  string             `json:"state"`
	Routes []craft.RouteStats `json:"routes"`
}

// RegisterAdmin mounts /health, /livez, /readyz, /version, /routes and
// /routes/:id, plus /events when a.Events is set.
func (s *Server) RegisterAdmin(a Admin) {
	s.engine.GET("/health", healthHandler(a))
	s.engine.GET("/livez", livenessHandler(a.Service))
	s.engine.GET("/readyz", readinessHandler(a))
	s.engine.GET("/version", versionHandler)
	s.engine.GET("/routes", routesHandler(a))
	s.engine.GET("/routes/:id", routeHandler(a))
	if a.Events != nil {
		s.engine.GET("/events", gin.WrapH(a.Events))
	}
}

func (a Admin) check(ctx context.Context) []component.Health {
	if a.Health == nil {
		return nil
	}
	return a.Health(ctx)
}

func healthHandler(a Admin) gin.HandlerFunc {
	return func(c *gin.Context) {
		components := a.check(c.Request.Context())
		status := component.Overall(components)
		code := http.StatusOK
		if status == component.StatusUnhealthy {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":     status,
			"service":    a.Service,
			"timestamp":  time.Now().UTC().Format(time.RFC3339),
			"components": components,
		})
	}
}

func livenessHandler(service string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "alive", "service": service})
	}
}

func readinessHandler(a Admin) gin.HandlerFunc {
	return func(c *gin.Context) {
		if component.Overall(a.check(c.Request.Context())) == component.StatusUnhealthy {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "service": a.Service})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "service": a.Service})
	}
}

func versionHandler(c *gin.Context) {
	RespondOK(c, version.Get())
}

func routesHandler(a Admin) gin.HandlerFunc {
	return func(c *gin.Context) {
		out := make([]ContextStatus, 0, len(a.Contexts))
		for _, rc := range a.Contexts {
			out = append(out, ContextStatus{Name: rc.Name(), State: rc.State().String(), Routes: rc.Stats()})
		}
		RespondOK(c, out)
	}
}

func routeHandler(a Admin) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		for _, rc := range a.Contexts {
			for _, st := range rc.Stats() {
				if st.RouteID == id {
					RespondOK(c, st)
					return
				}
			}
		}
		RespondWithError(c, errors.NotFound("route", id))
	}
}
