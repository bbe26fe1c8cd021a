package web

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/ifscdir/ifscdir/internal/config"
	"github.com/ifscdir/ifscdir/internal/directory"
	"github.com/ifscdir/ifscdir/internal/graphql"
	"github.com/ifscdir/ifscdir/internal/web/handlers"
	"github.com/ifscdir/ifscdir/internal/web/middleware"
)

// Server represents the web server
type Server struct {
	svc        *directory.Service
	port       int
	bind       string
	allowedNet *net.IPNet
	timeouts   config.Timeouts
	router     *chi.Mux
	handlers   *handlers.Handlers
}

// NewServer creates a new web server over the given query service. When
// graphqlEnabled is set, a /graphql endpoint is mounted; the flag is resolved
// once here, never per request.
func NewServer(svc *directory.Service, port int, bind string, allowedNet *net.IPNet, timeouts config.Timeouts, graphqlEnabled bool, version string) (*Server, error) {
	s := &Server{
		svc:        svc,
		port:       port,
		bind:       bind,
		allowedNet: allowedNet,
		timeouts:   timeouts,
		router:     chi.NewRouter(),
	}

	if err := s.setupRoutes(graphqlEnabled, version); err != nil {
		return nil, err
	}
	return s, nil
}

// Router returns the configured router, useful for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// setupRoutes configures all routes
func (s *Server) setupRoutes(graphqlEnabled bool, version string) error {
	r := s.router

	r.Use(chimiddleware.RequestID)
	// AllowSubnet must come BEFORE RealIP so we check the actual connection source
	r.Use(middleware.AllowSubnet(s.allowedNet))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(s.timeouts.Request))

	h := handlers.New(s.svc, version, graphqlEnabled)
	s.handlers = h

	r.Get("/", h.Root)
	r.Get("/health", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Route("/banks", func(r chi.Router) {
			r.Get("/", h.ListBanks)
			r.Get("/{id}", h.GetBank)
			r.Get("/{id}/branches", h.BankBranches)
		})
		r.Route("/branches", func(r chi.Router) {
			r.Get("/", h.ListBranches)
			r.Get("/{ifsc}", h.GetBranch)
		})
		r.Get("/stats", h.Stats)
	})

	if graphqlEnabled {
		gql, err := graphql.NewHandler(s.svc)
		if err != nil {
			return fmt.Errorf("failed to build GraphQL schema: %w", err)
		}
		r.Post("/graphql", gql.ServeHTTP)
		r.Get("/graphql", gql.ServeHTTP)
	}

	return nil
}

// Start starts the web server and blocks until ctx is cancelled or the
// listener fails.
func (s *Server) Start(ctx context.Context) error {
	var addr string
	if s.bind != "" {
		addr = fmt.Sprintf("%s:%d", s.bind, s.port)
	} else {
		addr = fmt.Sprintf(":%d", s.port)
	}

	server := &http.Server{
		Addr:        addr,
		Handler:     s.router,
		ReadTimeout: s.timeouts.Read,
		IdleTimeout: s.timeouts.Idle,
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.timeouts.Shutdown)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errChan:
		return err
	}
}
