package render

import (
	"strings"
	"testing"

	"github.com/chrsmith/kami2-solver/pkg/puzzle"
)

// board builds a small validated graph for rendering tests.
func board(t *testing.T) *puzzle.Graph {
	t.Helper()
	g := puzzle.New()
	regions := [][3]int{{0, 0, 2}, {1, 1, 1}, {2, 0, 3}}
	for _, r := range regions {
		if err := g.AddRegion(puzzle.Region{ID: r[0], Color: r[1], Size: r[2]}); err != nil {
			t.Fatalf("AddRegion: %v", err)
		}
	}
	for _, l := range [][2]int{{0, 1}, {1, 2}} {
		if err := g.Link(l[0], l[1]); err != nil {
			t.Fatalf("Link: %v", err)
		}
	}
	return g
}

func TestToDOT(t *testing.T) {
	g := board(t)
	palette := []string{"#ff0000", "#0000ff"}

	dot := ToDOT(g, palette, Options{})

	if !strings.HasPrefix(dot, "graph G {") {
		t.Errorf("DOT should declare an undirected graph, got prefix %q", dot[:20])
	}
	for _, want := range []string{
		`"0" [label="0", fillcolor="#ff0000"`,
		`"1" [label="1", fillcolor="#0000ff"`,
		`"2" [label="2", fillcolor="#ff0000"`,
		`"0" -- "1";`,
		`"1" -- "2";`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}

	// Each adjacency appears exactly once.
	if strings.Contains(dot, `"1" -- "0"`) || strings.Contains(dot, `"2" -- "1"`) {
		t.Errorf("DOT contains duplicate edges:\n%s", dot)
	}
}

func TestToDOTDetailed(t *testing.T) {
	g := board(t)

	dot := ToDOT(g, nil, Options{Detailed: true})

	if !strings.Contains(dot, "2 cells") {
		t.Errorf("detailed DOT should include cell counts:\n%s", dot)
	}
	if !strings.Contains(dot, "color 1") {
		t.Errorf("detailed DOT should include color indices:\n%s", dot)
	}
}

func TestToDOTFallbackPalette(t *testing.T) {
	g := board(t)

	// No palette provided: fills come from the default palette.
	dot := ToDOT(g, nil, Options{})
	if !strings.Contains(dot, DefaultPalette[0]) || !strings.Contains(dot, DefaultPalette[1]) {
		t.Errorf("DOT should fall back to default palette:\n%s", dot)
	}

	// Short palette: out-of-range indices also fall back.
	dot = ToDOT(g, []string{"#123456"}, Options{})
	if !strings.Contains(dot, "#123456") || !strings.Contains(dot, DefaultPalette[1]) {
		t.Errorf("DOT should mix palette and fallback:\n%s", dot)
	}
}

func TestTextColor(t *testing.T) {
	tests := []struct {
		fill string
		want string
	}{
		{"#ffffff", "#000000"},
		{"#ffff00", "#000000"},
		{"#000000", "#ffffff"},
		{"#1f77b4", "#ffffff"},
		{"not-a-color", "#000000"},
	}
	for _, tt := range tests {
		if got := textColor(tt.fill); got != tt.want {
			t.Errorf("textColor(%q) = %q, want %q", tt.fill, got, tt.want)
		}
	}
}

func TestSolutionSteps(t *testing.T) {
	g := board(t)
	moves := []puzzle.Move{{Region: 1, Color: 0}}

	steps, err := SolutionSteps(g, nil, moves, Options{})
	if err != nil {
		t.Fatalf("SolutionSteps error: %v", err)
	}

	if len(steps) != 2 {
		t.Fatalf("len(steps) = %d, want 2", len(steps))
	}
	if steps[0].Move != nil {
		t.Error("initial step should have no move")
	}
	if steps[1].Move == nil || *steps[1].Move != moves[0] {
		t.Errorf("step 1 move = %v, want %v", steps[1].Move, moves[0])
	}

	// After merging everything into one region only node 1 remains.
	if !strings.Contains(steps[1].DOT, `"1" [`) {
		t.Errorf("final step should contain the surviving region:\n%s", steps[1].DOT)
	}
	if strings.Contains(steps[1].DOT, `"0" [`) || strings.Contains(steps[1].DOT, `"2" [`) {
		t.Errorf("final step should not contain absorbed regions:\n%s", steps[1].DOT)
	}

	// The input graph must be untouched.
	if g.RegionCount() != 3 {
		t.Errorf("input graph modified: RegionCount = %d, want 3", g.RegionCount())
	}
}

func TestSolutionStepsInvalidMove(t *testing.T) {
	g := board(t)

	_, err := SolutionSteps(g, nil, []puzzle.Move{{Region: 99, Color: 0}}, Options{})
	if err == nil {
		t.Error("SolutionSteps should reject a move on an unknown region")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<?xml version="1.0"?><svg width="100pt" height="200pt" viewBox="0.00 0.00 100.00 200.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := normalizeViewBox(in)

	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 200.00" width="100" height="200">`
	if !strings.Contains(string(out), want) {
		t.Errorf("normalizeViewBox = %s, want to contain %s", out, want)
	}

	// SVGs without a viewBox pass through untouched.
	plain := []byte(`<svg width="10"><g/></svg>`)
	if got := normalizeViewBox(plain); string(got) != string(plain) {
		t.Errorf("normalizeViewBox should leave %s untouched, got %s", plain, got)
	}
}
