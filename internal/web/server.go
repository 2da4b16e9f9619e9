// Package web provides the HTTP API for validating business-directory batches.
package web

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator"

	"github.com/JonMunkholm/bizcheck/internal/config"
	"github.com/JonMunkholm/bizcheck/internal/core"
	"github.com/JonMunkholm/bizcheck/internal/web/middleware"
)

// Server is the HTTP server for bizcheck.
type Server struct {
	registry  *core.Registry
	processor *core.Processor
	limiter   *core.RunLimiter
	validate  *validator.Validate
	cfg       *config.Config

	router      *chi.Mux
	server      *http.Server
	rateLimiter *rateLimiter
}

// NewServer creates a server validating batches against reg.
func NewServer(reg *core.Registry, cfg *config.Config) *Server {
	s := &Server{
		registry:  reg,
		processor: core.NewProcessor(reg, cfg.Validation.Workers),
		limiter:   core.NewRunLimiter(cfg.Validation.MaxConcurrentRuns, cfg.Validation.MaxWaitTime),
		validate:  validator.New(),
		cfg:       cfg,
		router:    chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(middleware.AccessLog)
	s.router.Use(chimw.Recoverer)
	s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))
	s.router.Use(securityHeaders)

	if s.cfg.Rate.Enabled {
		s.rateLimiter = newRateLimiter(s.cfg.Rate.RequestsPerMinute, time.Minute)
		s.router.Use(s.rateLimiter.middleware)
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.APIKeyAuth(s.cfg.Security.RequireAPIKey, s.cfg.Security.APIKeys))

		r.Get("/fields", s.handleListFields)
		r.Post("/reports", s.handleReport)
		r.Post("/fields/{field}/offenders", s.handleOffenders)
		r.Get("/fields/{field}/check", s.handleCheck)
	})
}

// Start begins listening for HTTP requests on the configured address.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}
	return s.server.ListenAndServe()
}

// WaitForRuns blocks until in-flight batch runs finish or ctx is done.
func (s *Server) WaitForRuns(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// ActiveRuns returns the number of batches being processed.
func (s *Server) ActiveRuns() int {
	return s.limiter.ActiveCount()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.rateLimiter != nil {
		s.rateLimiter.stop()
	}
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses. The API serves
// JSON only, so the content policy forbids everything.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		w.Header().Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}
