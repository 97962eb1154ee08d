// Package devserver is a development stand-in for the lending backend. It
// serves the authentication, profile and borrowing-group endpoints the
// kitlend client depends on, from YAML fixtures.
package devserver

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/me/kitlend/internal/config"
	"github.com/me/kitlend/internal/logging"
	"github.com/me/kitlend/pkg/api"
)

// Server is the development backend.
type Server struct {
	router chi.Router
	logger *slog.Logger
	config config.DevServerConfig
	dir    *directory

	failMemberships atomic.Bool

	mu         sync.Mutex
	revokedIDs map[string]bool
}

// Option configures optional Server behaviour.
type Option func(*Server)

// WithMembershipFailure makes the membership endpoint answer 503.
func WithMembershipFailure(fail bool) Option {
	return func(s *Server) {
		s.failMemberships.Store(fail)
	}
}

// New creates a Server seeded from fixtures; nil fixtures use DemoFixtures.
func New(cfg config.DevServerConfig, fixtures *Fixtures, logger *slog.Logger, opts ...Option) (*Server, error) {
	switch cfg.LoginFormat {
	case config.LoginFormatText, config.LoginFormatJSON, config.LoginFormatEnvelope:
	default:
		return nil, fmt.Errorf("devserver: unknown login format %q", cfg.LoginFormat)
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("devserver: JWT secret is required")
	}
	if fixtures == nil {
		fixtures = DemoFixtures()
	}
	dir, err := newDirectory(fixtures, cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	s := &Server{
		router:     chi.NewRouter(),
		logger:     logging.Component(logger, "devserver"),
		config:     cfg,
		dir:        dir,
		revokedIDs: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s, nil
}

// SetMembershipFailure toggles the membership endpoint fault at runtime.
func (s *Server) SetMembershipFailure(fail bool) {
	s.failMemberships.Store(fail)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Handler returns the http.Handler for this server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	r := s.router

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(s.logger))

	r.Get("/health", s.handleHealth)

	r.Post(api.PathLogin, s.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Post(api.PathLogout, s.handleLogout)
		r.Get(api.PathProfile, s.handleProfile)
		r.Get(api.PathMembershipsPrefix+"{accountID}", s.handleMemberships)
	})
}
