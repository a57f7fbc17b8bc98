// Package server provides the HTTP server hosting the request
// dispatcher behind a middleware chain.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/opmux/opmux/internal/config"
	"github.com/opmux/opmux/internal/observability"
	"github.com/opmux/opmux/internal/router"
	"github.com/opmux/opmux/internal/util"
)

// ginModeOnce ensures gin.SetMode is only called once to avoid race
// conditions.
var ginModeOnce sync.Once

// Middleware wraps an http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Server hosts the dispatcher on a gin engine. All requests funnel
// through a catch-all into the middleware chain and the router.
type Server struct {
	engine     *gin.Engine
	httpServer *http.Server
	handler    http.Handler
	logger     observability.Logger
	config     config.ServerConfig
	mu         sync.RWMutex
	running    bool
}

// NewServer creates a new server dispatching to rt. Middlewares run
// in the order given, outermost first.
func NewServer(
	cfg config.ServerConfig,
	rt *router.Router,
	logger observability.Logger,
	middlewares ...Middleware,
) *Server {
	ginModeOnce.Do(func() {
		gin.SetMode(gin.ReleaseMode)
	})

	var handler http.Handler = rt
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}

	engine := gin.New()

	s := &Server{
		engine:  engine,
		handler: handler,
		logger:  logger,
		config:  cfg,
	}

	s.setupRouteHandler()

	return s
}

// setupRouteHandler registers the catch-all delegating every request
// to the dispatcher.
func (s *Server) setupRouteHandler() {
	dispatch := func(c *gin.Context) {
		s.handler.ServeHTTP(c.Writer, c.Request)
	}

	s.engine.NoRoute(dispatch)
	s.engine.Any("/*path", dispatch)
}

// Handler returns the complete handler including the middleware
// chain, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("server already running")
	}

	s.httpServer = &http.Server{
		Addr:           s.config.Address,
		Handler:        s.engine,
		ReadTimeout:    s.config.ReadTimeout.Duration(),
		WriteTimeout:   s.config.WriteTimeout.Duration(),
		IdleTimeout:    s.config.IdleTimeout.Duration(),
		MaxHeaderBytes: s.config.MaxHeaderBytes,
	}

	s.running = true
	s.mu.Unlock()

	s.logger.Info("starting HTTP server",
		observability.String("address", s.config.Address),
		observability.Duration("read_timeout", s.config.ReadTimeout.Duration()),
		observability.Duration("write_timeout", s.config.WriteTimeout.Duration()),
	)

	err := s.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		return util.WrapError(err, "server error")
	}

	return nil
}

// Stop stops the HTTP server gracefully.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	s.logger.Info("stopping HTTP server")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return util.WrapError(err, "failed to shutdown server")
	}

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()

	s.logger.Info("HTTP server stopped")
	return nil
}

// IsRunning returns whether the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}
