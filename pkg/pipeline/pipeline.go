// Package pipeline provides the core puzzle-solving pipeline.
//
// This package implements the complete extract → solve → render pipeline
// that is shared by the CLI and the HTTP API. Centralizing this logic keeps
// caching and validation behavior identical across all entry points.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Extract: Turn a screenshot into a region graph
//  2. Solve: Search for a move sequence that makes the board one color
//  3. Render: Draw the region graph in various formats (DOT, SVG, PNG, JSON)
//
// Each stage can be run independently or as part of the complete pipeline,
// and each stage result is cached under a content-addressed key.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Screenshot: "level-42.png",
//	    MaxMoves:   5,
//	    Formats:    []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Solution.Moves)
//
// Run individual stages:
//
//	// Extract only
//	g, palette, err := runner.Extract(ctx, opts)
//
//	// Solve an existing graph
//	res, err := runner.Solve(ctx, g, opts)
//
//	// Render an existing graph
//	artifacts, err := runner.Render(ctx, g, palette, opts)
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	kamierrors "github.com/chrsmith/kami2-solver/pkg/errors"
	"github.com/chrsmith/kami2-solver/pkg/extract"
	"github.com/chrsmith/kami2-solver/pkg/puzzle"
	"github.com/chrsmith/kami2-solver/pkg/solver"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultMaxMoves is the move budget used when none is given. This is
	// intentionally conservative: search cost grows combinatorially with
	// the budget, and real boards rarely need more. CLI and API users can
	// override it explicitly.
	DefaultMaxMoves = 8

	// DefaultSolveTimeout bounds a single solve. The solver returns its
	// partial statistics when the deadline passes.
	DefaultSolveTimeout = 30 * time.Second
)

// Format constants for output formats.
const (
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatDOT:  true,
	FormatSVG:  true,
	FormatPNG:  true,
	FormatJSON: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the solving pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Extract options. Exactly one input is used, preferred in order:
	// Graph (with optional Palette), Image, Screenshot.
	Screenshot  string `json:"screenshot,omitempty"`
	Columns     int    `json:"columns,omitempty"`
	Rows        int    `json:"rows,omitempty"`
	Tolerance   int    `json:"tolerance,omitempty"`
	TopInset    int    `json:"top_inset,omitempty"`
	BottomInset int    `json:"bottom_inset,omitempty"`
	MaxColors   int    `json:"max_colors,omitempty"`
	Refresh     bool   `json:"refresh,omitempty"` // Bypass cache reads

	// Solve options
	MaxMoves int            `json:"max_moves,omitempty"`
	Timeout  time.Duration  `json:"timeout,omitempty"`
	Weights  solver.Weights `json:"weights,omitempty"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Detailed bool     `json:"detailed,omitempty"`

	// Runtime options (not serialized)
	Image    []byte                      `json:"-"` // Raw screenshot bytes (API uploads)
	Graph    *puzzle.Graph               `json:"-"` // Pre-extracted graph input
	Palette  []string                    `json:"-"` // Palette for Graph input
	Logger   *log.Logger                 `json:"-"`
	Progress func(evaluated, culled int) `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Graph is the extracted (unsolved) region graph.
	Graph *puzzle.Graph

	// Palette holds the board colors discovered during extraction,
	// one #rrggbb entry per color index.
	Palette []string

	// GraphHash is the signature of the unsolved graph.
	GraphHash string

	// Solution is the search outcome.
	Solution solver.Result

	// Artifacts contains rendered outputs keyed by format. Empty when no
	// formats were requested.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	RegionCount int
	ColorCount  int
	ExtractTime time.Duration
	SolveTime   time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	ExtractHit bool // Whether the graph came from cache
	SolveHit   bool // Whether the solution came from cache
	RenderHit  bool // Whether all artifacts came from cache
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the
// full pipeline. This method is idempotent - calling it multiple times has
// the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForExtract(); err != nil {
		return err
	}
	if err := o.ValidateForSolve(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForExtract checks required fields for extraction and applies grid
// defaults. The defaults are applied here rather than inside the extractor
// so cache keys always see the effective values.
func (o *Options) ValidateForExtract() error {
	if o.Graph == nil && len(o.Image) == 0 && o.Screenshot == "" {
		return fmt.Errorf("screenshot, image, or graph is required")
	}
	if o.Screenshot != "" && o.Graph == nil && len(o.Image) == 0 {
		if err := kamierrors.ValidateImagePath(o.Screenshot); err != nil {
			return err
		}
	}
	if err := kamierrors.ValidateGridSize(
		defaultInt(o.Columns, extract.DefaultColumns),
		defaultInt(o.Rows, extract.DefaultRows)); err != nil {
		return err
	}

	if o.Columns == 0 {
		o.Columns = extract.DefaultColumns
	}
	if o.Rows == 0 {
		o.Rows = extract.DefaultRows
	}
	if o.Tolerance == 0 {
		o.Tolerance = extract.DefaultTolerance
	}
	if o.MaxColors == 0 {
		o.MaxColors = extract.DefaultMaxColors
	}
	o.applyLoggerDefault()
	return nil
}

// ValidateForSolve validates and sets defaults for solving.
func (o *Options) ValidateForSolve() error {
	if o.MaxMoves == 0 {
		o.MaxMoves = DefaultMaxMoves
	}
	if err := kamierrors.ValidateMaxMoves(o.MaxMoves); err != nil {
		return err
	}
	if o.Timeout == 0 {
		o.Timeout = DefaultSolveTimeout
	}
	if o.Weights == (solver.Weights{}) {
		o.Weights = solver.DefaultWeights
	}
	if err := o.Weights.Validate(); err != nil {
		return kamierrors.Wrap(kamierrors.ErrCodeInvalidWeights, err, "heuristic weights")
	}
	o.applyLoggerDefault()
	return nil
}

// ValidateForRender validates requested output formats. An empty format
// list is valid and skips the render stage.
func (o *Options) ValidateForRender() error {
	for _, f := range o.Formats {
		if err := kamierrors.ValidateFormat(f, ValidFormats); err != nil {
			return err
		}
	}
	o.applyLoggerDefault()
	return nil
}

// ExtractOptions converts pipeline options to extractor options.
func (o *Options) ExtractOptions() extract.Options {
	return extract.Options{
		Columns:     o.Columns,
		Rows:        o.Rows,
		Tolerance:   o.Tolerance,
		TopInset:    o.TopInset,
		BottomInset: o.BottomInset,
		MaxColors:   o.MaxColors,
	}
}

// source names the extraction input for logs and hooks.
func (o *Options) source() string {
	switch {
	case o.Graph != nil:
		return "graph"
	case len(o.Image) > 0:
		return "upload"
	default:
		return o.Screenshot
	}
}

func (o *Options) applyLoggerDefault() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

func defaultInt(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}
