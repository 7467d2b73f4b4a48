// Package server implements the HTTP API around the solving pipeline.
//
// The API exposes the same pipeline the CLI uses:
//
//	POST   /api/extract    screenshot (multipart or base64 JSON) -> graph JSON
//	POST   /api/solve      graph JSON -> solution JSON (synchronous)
//	POST   /api/jobs       graph JSON -> asynchronous solve job
//	GET    /api/jobs/{id}  poll job state
//	DELETE /api/jobs/{id}  cancel a pending or running job
//	GET    /healthz        liveness probe
//
// Responses are JSON throughout. Errors carry a structured payload with a
// stable machine-readable code:
//
//	{"error": {"code": "INVALID_GRAPH", "message": "decode graph: ..."}}
//
// Jobs are held in memory with a TTL; this is deliberate. The cache
// memoizes solve results across restarts, a job is only the handle used to
// poll for one.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/chrsmith/kami2-solver/pkg/buildinfo"
	"github.com/chrsmith/kami2-solver/pkg/observability"
	"github.com/chrsmith/kami2-solver/pkg/pipeline"
)

const (
	// maxUploadBytes caps request bodies. Screenshots are a few MB.
	maxUploadBytes = 32 << 20

	// maxSyncTimeout caps the solve budget of synchronous requests.
	// Longer searches should go through the job API.
	maxSyncTimeout = 2 * time.Minute

	// maxJobTimeout caps the solve budget of asynchronous jobs.
	maxJobTimeout = 10 * time.Minute

	// shutdownGrace bounds graceful shutdown in ListenAndServe.
	shutdownGrace = 10 * time.Second

	// cleanupInterval is how often expired jobs are swept.
	cleanupInterval = time.Minute
)

// Server wires the pipeline runner into an HTTP API.
type Server struct {
	runner *pipeline.Runner
	jobs   *JobStore
	logger *log.Logger

	// baseCtx parents job contexts so shutdown stops in-flight work.
	baseCtx    context.Context
	cancelJobs context.CancelFunc
}

// Options configures a Server.
type Options struct {
	// JobTTL is how long jobs stay pollable after creation.
	// Zero means DefaultJobTTL.
	JobTTL time.Duration
}

// New creates a Server around the given runner. A nil logger defaults to
// the package-level logger.
func New(runner *pipeline.Runner, logger *log.Logger, opts Options) *Server {
	if logger == nil {
		logger = log.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		runner:     runner,
		jobs:       NewJobStore(opts.JobTTL),
		logger:     logger,
		baseCtx:    ctx,
		cancelJobs: cancel,
	}
}

// Handler returns the HTTP handler with all routes registered.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/extract", s.handleExtract)
		r.Post("/solve", s.handleSolve)
		r.Post("/jobs", s.handleCreateJob)
		r.Get("/jobs/{id}", s.handleGetJob)
		r.Delete("/jobs/{id}", s.handleDeleteJob)
	})
	return r
}

// ListenAndServe runs the API until ctx is cancelled, then shuts down
// gracefully and cancels in-flight jobs.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.cleanupLoop(ctx)

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errc:
		s.cancelJobs()
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	s.cancelJobs()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := s.jobs.Cleanup(); removed > 0 {
				s.logger.Debug("swept expired jobs", "removed", removed)
			}
		}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

// requestLogger logs one line per request and emits server hooks.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hooks := observability.Server()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		elapsed := time.Since(start)

		hooks.OnResponse(r.Context(), r.Method, r.URL.Path, ww.Status(), elapsed)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", elapsed)
	})
}
