package render

import (
	"bytes"
	"fmt"
	"math"
	"strconv"

	"github.com/chrsmith/kami2-solver/pkg/puzzle"
)

// Options configures region graph rendering.
type Options struct {
	// Detailed includes cell counts and color indices in node labels.
	// When false, only the region ID is shown.
	Detailed bool
}

// DefaultPalette supplies fill colors for graphs imported without a
// palette. Indexed modulo its length.
var DefaultPalette = []string{
	"#1f77b4", // blue
	"#ff7f0e", // orange
	"#2ca02c", // green
	"#d62728", // red
	"#9467bd", // purple
	"#8c564b", // brown
	"#e377c2", // pink
	"#7f7f7f", // gray
	"#bcbd22", // olive
	"#17becf", // cyan
}

// ToDOT converts a region graph to Graphviz DOT format. The resulting DOT
// string can be rendered with [SVG] or [PNG].
//
// Nodes are filled with their palette color and scaled by cell count, so
// the drawing reads like a schematic of the board. Every adjacency appears
// as a single undirected edge.
func ToDOT(g *puzzle.Graph, palette []string, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  overlap=false;\n")
	buf.WriteString("  splines=true;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=circle, style=filled, fontsize=14];\n")
	buf.WriteString("\n")

	for _, r := range g.Regions() {
		fill := colorFor(palette, r.Color)
		fmt.Fprintf(&buf, "  %q [label=%q, fillcolor=%q, fontcolor=%q, width=%.2f];\n",
			strconv.Itoa(r.ID), label(r, opts.Detailed), fill, textColor(fill), nodeWidth(r.Size))
	}

	buf.WriteString("\n")
	for _, r := range g.Regions() {
		for _, n := range r.Neighbors() {
			// Each pair once, lowest id first.
			if r.ID < n {
				fmt.Fprintf(&buf, "  %q -- %q;\n", strconv.Itoa(r.ID), strconv.Itoa(n))
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func label(r puzzle.Region, detailed bool) string {
	if !detailed {
		return strconv.Itoa(r.ID)
	}
	return fmt.Sprintf("%d\n%d cells\ncolor %d", r.ID, r.Size, r.Color)
}

// colorFor resolves a color index against the palette, falling back to the
// default palette for graphs that were imported without one.
func colorFor(palette []string, color int) string {
	if color >= 0 && color < len(palette) {
		return palette[color]
	}
	return DefaultPalette[((color%len(DefaultPalette))+len(DefaultPalette))%len(DefaultPalette)]
}

// textColor picks black or white for readable labels on a #rrggbb fill.
func textColor(fill string) string {
	if len(fill) != 7 || fill[0] != '#' {
		return "#000000"
	}
	v, err := strconv.ParseUint(fill[1:], 16, 32)
	if err != nil {
		return "#000000"
	}
	r := float64((v >> 16) & 0xff)
	g := float64((v >> 8) & 0xff)
	b := float64(v & 0xff)
	luma := 0.299*r + 0.587*g + 0.114*b
	if luma > 140 {
		return "#000000"
	}
	return "#ffffff"
}

// nodeWidth maps a region's cell count to a circle diameter in inches.
// Grows with the square root so large regions don't dwarf the drawing.
func nodeWidth(size int) float64 {
	return 0.4 + 0.12*math.Sqrt(float64(size))
}
