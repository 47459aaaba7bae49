// Package server exposes dashboards and set file generation over HTTP.
//
// Each client creates a session (one dashboard) and drives it with JSON
// requests that mirror the front-end events: typing into a tier input,
// clicking a label, exporting. The same server answers
// POST /api/generate, the endpoint the remote export backend targets.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/geoset/pkg/backend"
	"github.com/matzehuels/geoset/pkg/dashboard"
	"github.com/matzehuels/geoset/pkg/graph"
	"github.com/matzehuels/geoset/pkg/label"
	"github.com/matzehuels/geoset/pkg/metrics"
	"github.com/matzehuels/geoset/pkg/pipeline"
	"github.com/matzehuels/geoset/pkg/session"
)

// maxBodySize bounds request bodies.
const maxBodySize = 1 << 20

// Options configures a Server.
type Options struct {
	Addr        string
	MaxSessions int
	SessionTTL  time.Duration

	EdgePolicy      graph.Policy
	DuplicatePolicy label.DuplicatePolicy

	// Runner renders diagrams for GET .../snapshot.
	Runner *pipeline.Runner
	// Backend generates set files for session exports and POST /api/generate.
	Backend backend.Backend
	// Metrics enables /metrics and request instrumentation when set.
	Metrics *metrics.Registry
	Logger  *log.Logger
}

// Server holds the chi router and the session store.
type Server struct {
	opts   Options
	store  *session.Store
	router chi.Router
	logger *log.Logger
}

// New creates a Server with all routes configured.
func New(opts Options) *Server {
	if opts.Addr == "" {
		opts.Addr = ":8080"
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Runner == nil {
		opts.Runner = pipeline.NewRunner(nil, nil, opts.Logger)
	}

	storeOpts := session.Options{MaxSessions: opts.MaxSessions, TTL: opts.SessionTTL}
	if reg := opts.Metrics; reg != nil {
		storeOpts.OnChange = reg.SetSessions
		storeOpts.OnEvict = func(_ string, reason session.EvictReason) {
			if reason != session.EvictDeleted {
				reg.SessionEvicted()
			}
		}
	}

	s := &Server{
		opts:   opts,
		store:  session.NewStore(storeOpts),
		logger: opts.Logger,
	}
	s.router = s.buildRouter()
	return s
}

// Store returns the session store.
func (s *Server) Store() *session.Store { return s.store }

// ServeHTTP delegates to the chi router, satisfying http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/healthz", s.handleHealth)
	if s.opts.Metrics != nil {
		r.Handle("/metrics", s.opts.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/generate", s.handleGenerate)

		r.Post("/sessions", s.handleCreateSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)
			r.Put("/inputs/{tier}", s.handleSetInput)
			r.Post("/clicks", s.handleClick)
			r.Delete("/edges", s.handleRemoveEdge)
			r.Post("/reset", s.handleReset)
			r.Get("/snapshot", s.handleSnapshot)
			r.Post("/connectors", s.handleConnectors)
			r.Post("/export", s.handleExport)
		})
	})

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       2 * time.Minute,
	}

	stopCleanup := s.store.StartCleanup(time.Minute)
	defer stopCleanup()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.opts.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) dashboardOptions() dashboard.Options {
	return dashboard.Options{
		EdgePolicy:      s.opts.EdgePolicy,
		DuplicatePolicy: s.opts.DuplicatePolicy,
		Backend:         s.opts.Backend,
		Logger:          s.logger,
	}
}
