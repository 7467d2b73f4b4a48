package cli

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/chrsmith/kami2-solver/pkg/puzzle"
)

// writeTestScreenshot writes a uniform red PNG to dir and returns its path.
// Extracted on a 2x2 grid it yields a single already-solved region.
func writeTestScreenshot(t *testing.T, dir, name string) string {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, 100, 100))
	red := color.NRGBA{R: 255, A: 255}
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			img.SetNRGBA(x, y, red)
		}
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	return path
}

func TestExtractCommand(t *testing.T) {
	dir := t.TempDir()
	screenshot := writeTestScreenshot(t, dir, "board.png")
	out := filepath.Join(dir, "board.graph.json")

	root := newTestRoot(t)
	root.SetArgs([]string{"extract", screenshot, "--no-cache", "--columns", "2", "--rows", "2", "-o", out})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("extract failed: %v", err)
	}

	g, palette, err := puzzle.ImportJSON(out)
	if err != nil {
		t.Fatalf("ImportJSON failed: %v", err)
	}
	if got := g.RegionCount(); got != 1 {
		t.Errorf("RegionCount = %d, want 1", got)
	}
	if !g.Solved() {
		t.Error("uniform board should be solved")
	}
	if len(palette) != 1 || palette[0] != "#ff0000" {
		t.Errorf("palette = %v, want [#ff0000]", palette)
	}
}

func TestExtractCommandDefaultOutput(t *testing.T) {
	dir := t.TempDir()
	screenshot := writeTestScreenshot(t, dir, "level42.png")

	root := newTestRoot(t)
	root.SetArgs([]string{"extract", screenshot, "--no-cache", "--columns", "2", "--rows", "2"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("extract failed: %v", err)
	}

	want := filepath.Join(dir, "level42.graph.json")
	if _, err := os.Stat(want); err != nil {
		t.Errorf("default output should be <input>.graph.json: %v", err)
	}
}

func TestExtractCommandMissingInput(t *testing.T) {
	root := newTestRoot(t)
	root.SetArgs([]string{"extract", filepath.Join(t.TempDir(), "nope.png"), "--no-cache"})
	if err := root.ExecuteContext(context.Background()); err == nil {
		t.Error("expected error for a missing screenshot")
	}
}
