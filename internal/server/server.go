// Package server exposes the kgview pipeline and formatter over HTTP.
//
// Routes:
//
//	GET  /health
//	POST /v1/graph/transform
//	GET  /v1/knowledge/{id}/graph
//	GET  /v1/knowledge/{id}/snapshots
//	GET  /v1/snapshots/{id}
//	GET  /v1/format/{amount,score,timestamp,filesize}
//	GET  /metrics
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/kgview/pkg/format"
	"github.com/matzehuels/kgview/pkg/metrics"
	"github.com/matzehuels/kgview/pkg/pipeline"
	"github.com/matzehuels/kgview/pkg/snapshot"
)

// MaxBodyBytes caps request bodies of POST /v1/graph/transform.
const MaxBodyBytes = 32 << 20

// Options configures [New].
type Options struct {
	Runner    *pipeline.Runner
	Snapshots snapshot.Repository // nil disables the snapshot routes
	Metrics   *metrics.Registry   // nil disables /metrics
	Logger    *log.Logger

	Units           format.Units
	TimestampLayout string
	Location        *time.Location

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server is the kgview HTTP API.
type Server struct {
	opts     Options
	router   chi.Router
	validate *validator.Validate
	logger   *log.Logger
}

// New builds the router.
func New(opts Options) *Server {
	if opts.Runner == nil {
		opts.Runner = pipeline.NewRunner(pipeline.Config{Logger: opts.Logger})
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Units == nil {
		opts.Units = format.ChineseUnits
	}
	if opts.TimestampLayout == "" {
		opts.TimestampLayout = format.DefaultLayout
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}

	s := &Server{
		opts:     opts,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   opts.Logger,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID, s.recoverer, s.accessLog)

	r.Get("/health", s.handleHealth)
	if s.opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.opts.Metrics.Handler())
	}

	r.Route("/v1", func(r chi.Router) {
		r.With(bodyLimit(MaxBodyBytes)).Post("/graph/transform", s.handleTransform)
		r.Get("/knowledge/{id}/graph", s.handleKnowledgeGraph)
		if s.opts.Snapshots != nil {
			r.Get("/knowledge/{id}/snapshots", s.handleListSnapshots)
			r.Get("/snapshots/{id}", s.handleGetSnapshot)
		}
		r.Route("/format", func(r chi.Router) {
			r.Get("/amount", s.handleAmount)
			r.Get("/score", s.handleScore)
			r.Get("/timestamp", s.handleTimestamp)
			r.Get("/filesize", s.handleFileSize)
		})
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then drains
// in-flight requests for up to five seconds.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}
