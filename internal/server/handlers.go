package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	kamierrors "github.com/chrsmith/kami2-solver/pkg/errors"
	"github.com/chrsmith/kami2-solver/pkg/pipeline"
	"github.com/chrsmith/kami2-solver/pkg/puzzle"
	"github.com/chrsmith/kami2-solver/pkg/solver"
)

// extractRequest is the JSON body for POST /api/extract. Screenshots can
// also arrive as multipart form data under the "screenshot" field, with
// the option names as form fields.
type extractRequest struct {
	ImageBase64 string `json:"image_base64"`
	Columns     int    `json:"columns,omitempty"`
	Rows        int    `json:"rows,omitempty"`
	Tolerance   int    `json:"tolerance,omitempty"`
	TopInset    int    `json:"top_inset,omitempty"`
	BottomInset int    `json:"bottom_inset,omitempty"`
	MaxColors   int    `json:"max_colors,omitempty"`
	Refresh     bool   `json:"refresh,omitempty"`
}

// extractResponse carries the extracted graph in the interchange format
// accepted back by POST /api/solve and POST /api/jobs.
type extractResponse struct {
	GraphHash string          `json:"graph_hash"`
	Regions   int             `json:"regions"`
	Colors    int             `json:"colors"`
	CacheHit  bool            `json:"cache_hit"`
	Graph     json.RawMessage `json:"graph"`
}

// solveRequest is the JSON body for POST /api/solve and POST /api/jobs.
type solveRequest struct {
	Graph        json.RawMessage `json:"graph"`
	MaxMoves     int             `json:"max_moves,omitempty"`
	TimeoutMS    int             `json:"timeout_ms,omitempty"`
	MergeRegions int             `json:"merge_regions,omitempty"`
	MergeCells   int             `json:"merge_cells,omitempty"`
	Refresh      bool            `json:"refresh,omitempty"`
}

// solveResponse is the synchronous solve answer.
type solveResponse struct {
	GraphHash string        `json:"graph_hash"`
	CacheHit  bool          `json:"cache_hit"`
	Result    solver.Result `json:"result"`
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	opts, err := parseExtractRequest(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	g, palette, hit, err := s.runner.ExtractWithCacheInfo(r.Context(), opts)
	if err != nil {
		s.respondError(w, r, coded(err, kamierrors.ErrCodeInvalidImage, "extract screenshot"))
		return
	}

	var buf bytes.Buffer
	if err := puzzle.WriteJSON(puzzle.FromGraph(g, palette), &buf); err != nil {
		s.respondError(w, r, kamierrors.Wrap(kamierrors.ErrCodeInternal, err, "encode graph"))
		return
	}

	respondJSON(w, http.StatusOK, extractResponse{
		GraphHash: g.Signature(),
		Regions:   g.RegionCount(),
		Colors:    g.ColorCount(),
		CacheHit:  hit,
		Graph:     json.RawMessage(buf.Bytes()),
	})
}

func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	g, opts, err := parseSolveRequest(r, maxSyncTimeout)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	res, hit, err := s.runner.SolveWithCacheInfo(r.Context(), g, opts)
	if err != nil {
		s.respondError(w, r, coded(err, kamierrors.ErrCodeInternal, "solve"))
		return
	}

	respondJSON(w, http.StatusOK, solveResponse{
		GraphHash: g.Signature(),
		CacheHit:  hit,
		Result:    res,
	})
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	g, opts, err := parseSolveRequest(r, maxJobTimeout)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	// Jobs outlive the request; they stop on DELETE or server shutdown.
	runCtx, cancel := context.WithCancel(s.baseCtx)
	job := s.jobs.Create(g.Signature(), cancel)
	go s.runJob(runCtx, cancel, job.ID, g, opts)

	s.logger.Info("job created",
		"id", job.ID,
		"regions", g.RegionCount(),
		"max_moves", opts.MaxMoves)
	respondJSON(w, http.StatusAccepted, job)
}

func (s *Server) runJob(ctx context.Context, cancel context.CancelFunc, id string, g *puzzle.Graph, opts pipeline.Options) {
	defer cancel()

	if !s.jobs.start(id) {
		return
	}
	res, err := s.runner.Solve(ctx, g, opts)
	if err != nil {
		s.jobs.finish(id, nil, err)
		s.logger.Error("job failed", "id", id, "error", err)
		return
	}
	s.jobs.finish(id, &res, nil)
	s.logger.Info("job finished",
		"id", id,
		"solved", res.Solved,
		"moves", len(res.Moves),
		"cancelled", res.Cancelled)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	job, ok := s.jobs.Get(id)
	if !ok {
		s.respondError(w, r, kamierrors.New(kamierrors.ErrCodeJobNotFound, "job %s not found", id))
		return
	}
	respondJSON(w, http.StatusOK, job)
}

func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	job, ok := s.jobs.Cancel(id)
	if !ok {
		s.respondError(w, r, kamierrors.New(kamierrors.ErrCodeJobNotFound, "job %s not found", id))
		return
	}
	s.logger.Info("job cancelled", "id", id, "status", job.Status)
	respondJSON(w, http.StatusOK, job)
}

// parseExtractRequest builds pipeline options from either a multipart
// upload or a base64 JSON body.
func parseExtractRequest(r *http.Request) (pipeline.Options, error) {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "multipart/form-data" {
		return parseExtractForm(r)
	}

	var req extractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return pipeline.Options{}, kamierrors.Wrap(kamierrors.ErrCodeInvalidInput, err, "decode request")
	}
	if req.ImageBase64 == "" {
		return pipeline.Options{}, kamierrors.New(kamierrors.ErrCodeInvalidInput, "image_base64 is required")
	}
	data, err := base64.StdEncoding.DecodeString(req.ImageBase64)
	if err != nil {
		return pipeline.Options{}, kamierrors.Wrap(kamierrors.ErrCodeInvalidImage, err, "decode image_base64")
	}

	return pipeline.Options{
		Image:       data,
		Columns:     req.Columns,
		Rows:        req.Rows,
		Tolerance:   req.Tolerance,
		TopInset:    req.TopInset,
		BottomInset: req.BottomInset,
		MaxColors:   req.MaxColors,
		Refresh:     req.Refresh,
	}, nil
}

func parseExtractForm(r *http.Request) (pipeline.Options, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return pipeline.Options{}, kamierrors.Wrap(kamierrors.ErrCodeInvalidInput, err, "parse form")
	}
	file, _, err := r.FormFile("screenshot")
	if err != nil {
		return pipeline.Options{}, kamierrors.New(kamierrors.ErrCodeInvalidInput, "screenshot field is required")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return pipeline.Options{}, kamierrors.Wrap(kamierrors.ErrCodeInvalidInput, err, "read upload")
	}

	opts := pipeline.Options{Image: data, Refresh: r.FormValue("refresh") == "true"}
	fields := map[string]*int{
		"columns":      &opts.Columns,
		"rows":         &opts.Rows,
		"tolerance":    &opts.Tolerance,
		"top_inset":    &opts.TopInset,
		"bottom_inset": &opts.BottomInset,
		"max_colors":   &opts.MaxColors,
	}
	for name, dst := range fields {
		v := r.FormValue(name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return pipeline.Options{}, kamierrors.New(kamierrors.ErrCodeInvalidInput, "%s must be an integer", name)
		}
		*dst = n
	}
	return opts, nil
}

// parseSolveRequest decodes the shared solve/job body, rebuilds the graph
// and validates the options. Timeouts are clamped to maxTimeout.
func parseSolveRequest(r *http.Request, maxTimeout time.Duration) (*puzzle.Graph, pipeline.Options, error) {
	var req solveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, pipeline.Options{}, kamierrors.Wrap(kamierrors.ErrCodeInvalidInput, err, "decode request")
	}
	if len(req.Graph) == 0 {
		return nil, pipeline.Options{}, kamierrors.New(kamierrors.ErrCodeInvalidInput, "graph is required")
	}
	g, palette, err := puzzle.ReadJSON(bytes.NewReader(req.Graph))
	if err != nil {
		return nil, pipeline.Options{}, kamierrors.Wrap(kamierrors.ErrCodeInvalidGraph, err, "decode graph")
	}

	if req.TimeoutMS < 0 {
		return nil, pipeline.Options{}, kamierrors.New(kamierrors.ErrCodeInvalidInput, "timeout_ms cannot be negative")
	}
	timeout := time.Duration(req.TimeoutMS) * time.Millisecond
	if timeout > maxTimeout {
		timeout = maxTimeout
	}

	opts := pipeline.Options{
		Graph:    g,
		Palette:  palette,
		MaxMoves: req.MaxMoves,
		Timeout:  timeout,
		Weights:  solver.Weights{MergeRegions: req.MergeRegions, MergeCells: req.MergeCells},
		Refresh:  req.Refresh,
	}
	if err := opts.ValidateForSolve(); err != nil {
		return nil, pipeline.Options{}, coded(err, kamierrors.ErrCodeInvalidInput, "invalid solve options")
	}
	return g, opts, nil
}
