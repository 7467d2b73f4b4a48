package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/chrsmith/kami2-solver/pkg/cache"
	"github.com/chrsmith/kami2-solver/pkg/extract"
	"github.com/chrsmith/kami2-solver/pkg/observability"
	"github.com/chrsmith/kami2-solver/pkg/puzzle"
	"github.com/chrsmith/kami2-solver/pkg/render"
	"github.com/chrsmith/kami2-solver/pkg/solver"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete extract → solve → render pipeline with caching.
// The render stage runs only when opts.Formats is non-empty.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{}

	// Stage 1: Extract
	extractStart := time.Now()
	g, palette, extractHit, err := r.ExtractWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	result.Graph = g
	result.Palette = palette
	result.GraphHash = g.Signature()
	result.Stats.ExtractTime = time.Since(extractStart)
	result.Stats.RegionCount = g.RegionCount()
	result.Stats.ColorCount = g.ColorCount()
	result.CacheInfo.ExtractHit = extractHit

	r.Logger.Info("extracted board",
		"regions", g.RegionCount(),
		"colors", g.ColorCount(),
		"duration", result.Stats.ExtractTime)

	// Stage 2: Solve
	solveStart := time.Now()
	solution, solveHit, err := r.SolveWithCacheInfo(ctx, g, opts)
	if err != nil {
		return nil, fmt.Errorf("solve: %w", err)
	}
	result.Solution = solution
	result.Stats.SolveTime = time.Since(solveStart)
	result.CacheInfo.SolveHit = solveHit

	r.Logger.Info("search finished",
		"solved", solution.Solved,
		"moves", len(solution.Moves),
		"nodes", solution.NodesEvaluated,
		"duration", result.Stats.SolveTime)

	// Stage 3: Render (optional)
	if len(opts.Formats) > 0 {
		renderStart := time.Now()
		artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, g, palette, opts)
		if err != nil {
			return nil, fmt.Errorf("render: %w", err)
		}
		result.Artifacts = artifacts
		result.Stats.RenderTime = time.Since(renderStart)
		result.CacheInfo.RenderHit = renderHit

		r.Logger.Info("rendered outputs",
			"formats", opts.Formats,
			"duration", result.Stats.RenderTime)
	}

	return result, nil
}

// ExtractWithCacheInfo extracts a region graph with caching and returns
// cache hit info. When opts.Graph is set it is validated and returned
// directly, bypassing the cache.
func (r *Runner) ExtractWithCacheInfo(ctx context.Context, opts Options) (g *puzzle.Graph, palette []string, hit bool, err error) {
	if err := opts.ValidateForExtract(); err != nil {
		return nil, nil, false, err
	}
	r.applyLogger(&opts)

	hooks := observability.Pipeline()
	hooks.OnExtractStart(ctx, opts.source())
	start := time.Now()
	defer func() {
		count := 0
		if g != nil {
			count = g.RegionCount()
		}
		hooks.OnExtractComplete(ctx, opts.source(), count, time.Since(start), err)
	}()

	// Pre-extracted graph input.
	if opts.Graph != nil {
		if err := opts.Graph.Validate(); err != nil {
			return nil, nil, false, fmt.Errorf("malformed graph: %w", err)
		}
		return opts.Graph, opts.Palette, false, nil
	}

	data := opts.Image
	if len(data) == 0 {
		data, err = os.ReadFile(opts.Screenshot)
		if err != nil {
			return nil, nil, false, fmt.Errorf("read screenshot: %w", err)
		}
	}

	cacheKey := r.Keyer.ExtractKey(cache.Hash(data), cache.ExtractKeyOpts{
		Columns:     opts.Columns,
		Rows:        opts.Rows,
		Tolerance:   opts.Tolerance,
		TopInset:    opts.TopInset,
		BottomInset: opts.BottomInset,
	})

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if cached, ok, err := r.Cache.Get(ctx, cacheKey); err == nil && ok {
			if g, palette, err := puzzle.ReadJSON(bytes.NewReader(cached)); err == nil {
				observability.Cache().OnCacheHit(ctx, "extract")
				return g, palette, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "extract")
	}

	board, err := extract.FromBytes(data, opts.ExtractOptions())
	if err != nil {
		return nil, nil, false, err
	}

	// Cache the result
	var buf bytes.Buffer
	if err := puzzle.WriteJSON(puzzle.FromGraph(board.Graph, board.Palette), &buf); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, buf.Bytes(), cache.TTLExtract)
		observability.Cache().OnCacheSet(ctx, "extract", buf.Len())
	}

	return board.Graph, board.Palette, false, nil
}

// Extract is a convenience wrapper that calls ExtractWithCacheInfo and
// discards the cache hit info.
func (r *Runner) Extract(ctx context.Context, opts Options) (*puzzle.Graph, []string, error) {
	g, palette, _, err := r.ExtractWithCacheInfo(ctx, opts)
	return g, palette, err
}

// SolveWithCacheInfo searches for a solution with caching and returns cache
// hit info. Results are keyed by the graph signature together with the move
// budget and heuristic weights, so the cache memoizes pure search outcomes.
// Cancelled searches are never cached.
func (r *Runner) SolveWithCacheInfo(ctx context.Context, g *puzzle.Graph, opts Options) (res solver.Result, hit bool, err error) {
	if err := opts.ValidateForSolve(); err != nil {
		return solver.Result{}, false, err
	}
	r.applyLogger(&opts)

	hooks := observability.Pipeline()
	hooks.OnSolveStart(ctx, g.RegionCount(), opts.MaxMoves)
	start := time.Now()
	defer func() {
		hooks.OnSolveComplete(ctx, res.Solved, res.NodesEvaluated, time.Since(start), err)
	}()

	cacheKey := r.Keyer.SolveKey(g.Signature(), cache.SolveKeyOpts{
		MaxMoves:     opts.MaxMoves,
		MergeRegions: opts.Weights.MergeRegions,
		MergeCells:   opts.Weights.MergeCells,
	})

	if !opts.Refresh {
		if cached, ok, err := r.Cache.Get(ctx, cacheKey); err == nil && ok {
			var res solver.Result
			if err := json.Unmarshal(cached, &res); err == nil {
				observability.Cache().OnCacheHit(ctx, "solve")
				return res, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "solve")
	}

	s := solver.Solver{
		Weights:  opts.Weights,
		Timeout:  opts.Timeout,
		Progress: opts.Progress,
	}
	res, err = s.Solve(ctx, g, opts.MaxMoves)
	if err != nil {
		return solver.Result{}, false, err
	}

	// A cancelled search carries no reusable answer.
	if !res.Cancelled {
		if data, err := json.Marshal(res); err == nil {
			_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLSolve)
			observability.Cache().OnCacheSet(ctx, "solve", len(data))
		}
	}

	return res, false, nil
}

// Solve is a convenience wrapper that calls SolveWithCacheInfo and discards
// the cache hit info.
func (r *Runner) Solve(ctx context.Context, g *puzzle.Graph, opts Options) (solver.Result, error) {
	res, _, err := r.SolveWithCacheInfo(ctx, g, opts)
	return res, err
}

// RenderWithCacheInfo renders the graph in every requested format with
// caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, g *puzzle.Graph, palette []string, opts Options) (arts map[string][]byte, hit bool, err error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)
	if len(opts.Formats) == 0 {
		return map[string][]byte{}, false, nil
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	defer func() {
		hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	}()

	graphHash := g.Signature()

	// Try to get all formats from cache
	allCached := true
	artifacts := make(map[string][]byte)
	if !opts.Refresh {
		for _, format := range opts.Formats {
			cacheKey := r.Keyer.RenderKey(graphHash, cache.RenderKeyOpts{Format: format, Detailed: opts.Detailed})
			if data, ok, err := r.Cache.Get(ctx, cacheKey); err == nil && ok {
				artifacts[format] = data
			} else {
				allCached = false
				break
			}
		}
		if allCached && len(artifacts) == len(opts.Formats) {
			observability.Cache().OnCacheHit(ctx, "render")
			return artifacts, true, nil
		}
		observability.Cache().OnCacheMiss(ctx, "render")
	}

	rendered, err := renderFormats(g, palette, opts)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		cacheKey := r.Keyer.RenderKey(graphHash, cache.RenderKeyOpts{Format: format, Detailed: opts.Detailed})
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLRender)
		observability.Cache().OnCacheSet(ctx, "render", len(data))
	}

	return rendered, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and
// discards the cache hit info.
func (r *Runner) Render(ctx context.Context, g *puzzle.Graph, palette []string, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, g, palette, opts)
	return artifacts, err
}

// renderFormats produces the artifact bytes for every requested format.
func renderFormats(g *puzzle.Graph, palette []string, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	dot := render.ToDOT(g, palette, render.Options{Detailed: opts.Detailed})

	for _, format := range opts.Formats {
		switch format {
		case FormatDOT:
			artifacts[format] = []byte(dot)
		case FormatSVG:
			svg, err := render.SVG(dot)
			if err != nil {
				return nil, fmt.Errorf("render svg: %w", err)
			}
			artifacts[format] = svg
		case FormatPNG:
			png, err := render.PNG(dot)
			if err != nil {
				return nil, fmt.Errorf("render png: %w", err)
			}
			artifacts[format] = png
		case FormatJSON:
			var buf bytes.Buffer
			if err := puzzle.WriteJSON(puzzle.FromGraph(g, palette), &buf); err != nil {
				return nil, fmt.Errorf("render json: %w", err)
			}
			artifacts[format] = buf.Bytes()
		default:
			return nil, fmt.Errorf("unknown format: %q", format)
		}
	}
	return artifacts, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
