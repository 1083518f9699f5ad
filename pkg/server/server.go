// Package server exposes the rewrite pipeline over HTTP.
//
// Routes:
//
//	GET  /healthz      liveness probe
//	GET  /v1/version   build information
//	GET  /v1/plugins   registered plugin names
//	POST /v1/check     layer applicability diagnostics for a spec
//	POST /v1/rewrite   run one pipeline pass over a spec
//
// Every request runs against a fresh [pipeline.Runner]; the server keeps no
// state between requests.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultAddr is the listen address used when none is configured.
const DefaultAddr = ":8080"

// Server wraps an http.Server serving the rewrite API.
type Server struct {
	httpServer *http.Server
	logger     *log.Logger
}

// New creates a server listening on addr. A nil logger discards output.
func New(addr string, handler http.Handler, logger *log.Logger) *Server {
	if addr == "" {
		addr = DefaultAddr
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Addr returns the configured listen address.
func (s *Server) Addr() string { return s.httpServer.Addr }

// Start blocks serving requests until the server is shut down.
func (s *Server) Start() error {
	s.logger.Info("starting server", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("stopping server")
	return s.httpServer.Shutdown(ctx)
}
