package pipeline

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/chrsmith/kami2-solver/pkg/cache"
	"github.com/chrsmith/kami2-solver/pkg/extract"
	"github.com/chrsmith/kami2-solver/pkg/puzzle"
	"github.com/chrsmith/kami2-solver/pkg/solver"
)

// testGraph builds a three-region path 0(red) - 1(blue) - 2(red).
// Recoloring region 1 to red floods the whole board in one move.
func testGraph(t *testing.T) *puzzle.Graph {
	t.Helper()
	g := puzzle.New()
	regions := []puzzle.Region{
		{ID: 0, Color: 0, Size: 2},
		{ID: 1, Color: 1, Size: 1},
		{ID: 2, Color: 0, Size: 3},
	}
	for _, r := range regions {
		if err := g.AddRegion(r); err != nil {
			t.Fatalf("AddRegion(%d) failed: %v", r.ID, err)
		}
	}
	if err := g.Link(0, 1); err != nil {
		t.Fatalf("Link(0, 1) failed: %v", err)
	}
	if err := g.Link(1, 2); err != nil {
		t.Fatalf("Link(1, 2) failed: %v", err)
	}
	return g
}

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func TestValidateForRender(t *testing.T) {
	tests := []struct {
		name    string
		formats []string
		wantErr bool
	}{
		{"all supported", []string{"dot", "svg", "png", "json"}, false},
		{"empty skips render", nil, false},
		{"unknown format", []string{"svg", "pdf"}, true},
		{"case-sensitive", []string{"SVG"}, true},
		{"blank entry", []string{""}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := Options{Formats: tt.formats}
			err := opts.ValidateForRender()
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateForRender(%v) error = %v, wantErr %v", tt.formats, err, tt.wantErr)
			}
		})
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{Graph: testGraph(t)}

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Valid options should pass: %v", err)
	}

	if opts.Columns != extract.DefaultColumns {
		t.Errorf("Columns should be %d, got %d", extract.DefaultColumns, opts.Columns)
	}
	if opts.Rows != extract.DefaultRows {
		t.Errorf("Rows should be %d, got %d", extract.DefaultRows, opts.Rows)
	}
	if opts.Tolerance != extract.DefaultTolerance {
		t.Errorf("Tolerance should be %d, got %d", extract.DefaultTolerance, opts.Tolerance)
	}
	if opts.MaxColors != extract.DefaultMaxColors {
		t.Errorf("MaxColors should be %d, got %d", extract.DefaultMaxColors, opts.MaxColors)
	}
	if opts.MaxMoves != DefaultMaxMoves {
		t.Errorf("MaxMoves should be %d, got %d", DefaultMaxMoves, opts.MaxMoves)
	}
	if opts.Timeout != DefaultSolveTimeout {
		t.Errorf("Timeout should be %v, got %v", DefaultSolveTimeout, opts.Timeout)
	}
	if opts.Weights != solver.DefaultWeights {
		t.Errorf("Weights should be %+v, got %+v", solver.DefaultWeights, opts.Weights)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}
}

func TestOptionsValidateForExtract(t *testing.T) {
	// Missing input
	opts := Options{}
	if err := opts.ValidateForExtract(); err == nil {
		t.Error("Missing input should fail")
	}

	// Unsupported screenshot extension
	opts = Options{Screenshot: "board.gif"}
	if err := opts.ValidateForExtract(); err == nil {
		t.Error("Unsupported extension should fail")
	}

	// Grid too large
	opts = Options{Screenshot: "board.png", Columns: 4096}
	if err := opts.ValidateForExtract(); err == nil {
		t.Error("Oversized grid should fail")
	}

	// Valid screenshot path
	opts = Options{Screenshot: "board.png"}
	if err := opts.ValidateForExtract(); err != nil {
		t.Errorf("Valid screenshot options should pass: %v", err)
	}
}

func TestOptionsValidateForSolve(t *testing.T) {
	tests := []struct {
		name     string
		maxMoves int
		wantErr  bool
	}{
		{"zero takes default", 0, false},
		{"small budget", 3, false},
		{"negative budget", -1, true},
		{"beyond cap", 1 << 20, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := Options{MaxMoves: tt.maxMoves}
			err := opts.ValidateForSolve()
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateForSolve() with MaxMoves=%d error = %v, wantErr %v", tt.maxMoves, err, tt.wantErr)
			}
		})
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{Graph: testGraph(t), MaxMoves: 3}

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("First validation failed: %v", err)
	}

	originalMaxMoves := opts.MaxMoves
	originalTimeout := opts.Timeout
	originalColumns := opts.Columns

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Second validation failed: %v", err)
	}

	if opts.MaxMoves != originalMaxMoves {
		t.Error("MaxMoves changed on second call")
	}
	if opts.Timeout != originalTimeout {
		t.Error("Timeout changed on second call")
	}
	if opts.Columns != originalColumns {
		t.Error("Columns changed on second call")
	}
}

func TestExtractOptions(t *testing.T) {
	opts := Options{
		Columns:     12,
		Rows:        20,
		Tolerance:   25,
		TopInset:    100,
		BottomInset: 150,
		MaxColors:   6,
	}

	eo := opts.ExtractOptions()
	want := extract.Options{
		Columns:     12,
		Rows:        20,
		Tolerance:   25,
		TopInset:    100,
		BottomInset: 150,
		MaxColors:   6,
	}
	if eo != want {
		t.Errorf("ExtractOptions() = %+v, want %+v", eo, want)
	}
}

func TestRunnerExecuteGraphInput(t *testing.T) {
	g := testGraph(t)
	runner := NewRunner(nil, nil, quietLogger())

	result, err := runner.Execute(context.Background(), Options{
		Graph:    g,
		Palette:  []string{"#ff0000", "#0000ff"},
		MaxMoves: 2,
		Formats:  []string{"dot", "json"},
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if !result.Solution.Solved {
		t.Fatal("Expected a solution")
	}
	wantMoves := []puzzle.Move{{Region: 1, Color: 0}}
	if len(result.Solution.Moves) != len(wantMoves) || result.Solution.Moves[0] != wantMoves[0] {
		t.Errorf("Moves = %v, want %v", result.Solution.Moves, wantMoves)
	}

	if result.GraphHash != g.Signature() {
		t.Errorf("GraphHash = %q, want %q", result.GraphHash, g.Signature())
	}
	if result.Stats.RegionCount != 3 {
		t.Errorf("RegionCount = %d, want 3", result.Stats.RegionCount)
	}
	if result.Stats.ColorCount != 2 {
		t.Errorf("ColorCount = %d, want 2", result.Stats.ColorCount)
	}

	dot := string(result.Artifacts["dot"])
	if !strings.Contains(dot, "graph G {") {
		t.Errorf("DOT artifact should contain header, got %q", dot)
	}
	jsonArt := result.Artifacts["json"]
	rt, palette, err := puzzle.ReadJSON(bytes.NewReader(jsonArt))
	if err != nil {
		t.Fatalf("JSON artifact should round-trip: %v", err)
	}
	if rt.Signature() != g.Signature() {
		t.Error("JSON artifact should encode the extracted graph")
	}
	if len(palette) != 2 {
		t.Errorf("Palette length = %d, want 2", len(palette))
	}

	// The null cache never hits.
	if result.CacheInfo.ExtractHit || result.CacheInfo.SolveHit || result.CacheInfo.RenderHit {
		t.Errorf("Null cache should never hit, got %+v", result.CacheInfo)
	}
}

func TestRunnerExecuteNoFormats(t *testing.T) {
	runner := NewRunner(nil, nil, quietLogger())

	result, err := runner.Execute(context.Background(), Options{Graph: testGraph(t)})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if len(result.Artifacts) != 0 {
		t.Errorf("No formats requested, got artifacts %v", result.Artifacts)
	}
	if result.Stats.RenderTime != 0 {
		t.Errorf("RenderTime should be zero when render is skipped, got %v", result.Stats.RenderTime)
	}
}

func TestRunnerExecuteInvalidOptions(t *testing.T) {
	runner := NewRunner(nil, nil, quietLogger())

	if _, err := runner.Execute(context.Background(), Options{}); err == nil {
		t.Error("Execute without input should fail")
	}
}

func TestRunnerSolveCache(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache failed: %v", err)
	}
	runner := NewRunner(fc, nil, quietLogger())
	defer runner.Close()

	g := testGraph(t)
	opts := Options{MaxMoves: 2, Timeout: 10 * time.Second}

	first, hit, err := runner.SolveWithCacheInfo(context.Background(), g, opts)
	if err != nil {
		t.Fatalf("First solve failed: %v", err)
	}
	if hit {
		t.Error("First solve should miss the cache")
	}
	if !first.Solved {
		t.Fatal("Expected a solution")
	}

	second, hit, err := runner.SolveWithCacheInfo(context.Background(), g, opts)
	if err != nil {
		t.Fatalf("Second solve failed: %v", err)
	}
	if !hit {
		t.Error("Second solve should hit the cache")
	}
	if len(second.Moves) != len(first.Moves) {
		t.Errorf("Cached moves = %v, want %v", second.Moves, first.Moves)
	}

	// Refresh bypasses the cached entry.
	opts.Refresh = true
	_, hit, err = runner.SolveWithCacheInfo(context.Background(), g, opts)
	if err != nil {
		t.Fatalf("Refresh solve failed: %v", err)
	}
	if hit {
		t.Error("Refresh should bypass the cache")
	}
}

func TestRunnerSolveCacheKeyedByBudget(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache failed: %v", err)
	}
	runner := NewRunner(fc, nil, quietLogger())
	defer runner.Close()

	g := testGraph(t)

	if _, _, err := runner.SolveWithCacheInfo(context.Background(), g, Options{MaxMoves: 2}); err != nil {
		t.Fatalf("First solve failed: %v", err)
	}

	// A different budget is a different cache entry.
	_, hit, err := runner.SolveWithCacheInfo(context.Background(), g, Options{MaxMoves: 3})
	if err != nil {
		t.Fatalf("Second solve failed: %v", err)
	}
	if hit {
		t.Error("Different budget should not share a cache entry")
	}
}

func TestRunnerRenderCache(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache failed: %v", err)
	}
	runner := NewRunner(fc, nil, quietLogger())
	defer runner.Close()

	g := testGraph(t)
	palette := []string{"#ff0000", "#0000ff"}
	opts := Options{Formats: []string{"dot", "json"}}

	first, hit, err := runner.RenderWithCacheInfo(context.Background(), g, palette, opts)
	if err != nil {
		t.Fatalf("First render failed: %v", err)
	}
	if hit {
		t.Error("First render should miss the cache")
	}

	second, hit, err := runner.RenderWithCacheInfo(context.Background(), g, palette, opts)
	if err != nil {
		t.Fatalf("Second render failed: %v", err)
	}
	if !hit {
		t.Error("Second render should hit the cache")
	}
	if !bytes.Equal(first["dot"], second["dot"]) {
		t.Error("Cached DOT should match the rendered DOT")
	}
	if !bytes.Equal(first["json"], second["json"]) {
		t.Error("Cached JSON should match the rendered JSON")
	}

	// Detailed labels key separately from plain labels.
	opts.Detailed = true
	_, hit, err = runner.RenderWithCacheInfo(context.Background(), g, palette, opts)
	if err != nil {
		t.Fatalf("Detailed render failed: %v", err)
	}
	if hit {
		t.Error("Detailed render should not share plain render entries")
	}
}

func TestRunnerSolveGraphUnchanged(t *testing.T) {
	runner := NewRunner(nil, nil, quietLogger())

	g := testGraph(t)
	before := g.Signature()

	res, err := runner.Solve(context.Background(), g, Options{MaxMoves: 2})
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	if !res.Solved {
		t.Fatal("Expected a solution")
	}

	if g.Signature() != before {
		t.Error("Solving should not mutate the input graph")
	}
}
