package server

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kbukum/routekit/component"
	"github.com/kbukum/routekit/errors"
	"github.com/kbukum/routekit/logger"
)

const componentName = "admin-server"

var (
	_ component.Component        = (*Server)(nil)
	_ component.Describable      = (*Server)(nil)
	_ component.EndpointProvider = (*Server)(nil)
)

// Server is the admin HTTP server.
type Server struct {
	engine     *gin.Engine
	httpServer *http.Server
	config     Config
	log        *logger.Logger

	mu      sync.Mutex
	addr    string
	serving bool
}

// New creates a server with the recovery, request-id and request-log
// middleware installed. No endpoints are registered; see RegisterAdmin.
func New(cfg Config, log *logger.Logger) *Server {
	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	log = log.WithComponent("server")

	engine := gin.New()
	engine.Use(Recovery(log), RequestID(), RequestLogger(log))
	engine.NoRoute(func(c *gin.Context) {
		RespondWithError(c, errors.NotFound("path", c.Request.URL.Path))
	})

	h2s := &http2.Server{MaxConcurrentStreams: 250, IdleTimeout: cfg.IdleTimeout}
	return &Server{
		engine: engine,
		httpServer: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:      h2c.NewHandler(engine, h2s),
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		config: cfg,
		log:    log,
	}
}

// Engine returns the Gin engine for registering extra endpoints.
func (s *Server) Engine() *gin.Engine { return s.engine }

// Handler returns the root handler, h2c included.
func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

// Name implements component.Component.
func (s *Server) Name() string { return componentName }

// Start binds the listener and serves in the background. It returns once
// the port is bound.
func (s *Server) Start(context.Context) error {
	tlsCfg, err := s.config.TLS.ServerConfig()
	if err != nil {
		return fmt.Errorf("server: %w", err)
	}
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("server: bind %s: %w", s.httpServer.Addr, err)
	}
	if tlsCfg != nil {
		ln = tls.NewListener(ln, tlsCfg)
	}

	s.mu.Lock()
	s.addr = ln.Addr().String()
	s.serving = true
	s.mu.Unlock()

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.log.Error("server error", logger.Fields("error", err.Error()))
		}
		s.mu.Lock()
		s.serving = false
		s.mu.Unlock()
	}()

	s.log.Info("admin server listening", logger.Fields("addr", s.Addr()))
	return nil
}

// Stop shuts the server down, bounded by ShutdownTimeout and ctx.
func (s *Server) Stop(ctx context.Context) error {
	timeout := s.config.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	s.mu.Lock()
	s.serving = false
	s.mu.Unlock()
	s.log.Info("admin server stopped")
	return nil
}

// Addr returns the bound address once started, the configured one before.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.addr != "" {
		return s.addr
	}
	return s.httpServer.Addr
}

// Health implements component.Component.
func (s *Server) Health(context.Context) component.Health {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.serving {
		return component.Health{Name: componentName, Status: component.StatusUnhealthy, Message: "not serving"}
	}
	return component.Health{Name: componentName, Status: component.StatusHealthy}
}

// Describe implements component.Describable.
func (s *Server) Describe() component.Description {
	return component.Description{
		Name:    "Admin Server",
		Type:    "server",
		Details: s.httpServer.Addr,
		Port:    s.config.Port,
	}
}

// Endpoints implements component.EndpointProvider.
func (s *Server) Endpoints() []component.Endpoint {
	routes := s.engine.Routes()
	out := make([]component.Endpoint, len(routes))
	for i, r := range routes {
		out[i] = component.Endpoint{Method: r.Method, Path: r.Path}
	}
	return out
}
