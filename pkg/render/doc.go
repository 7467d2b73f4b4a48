// Package render draws region graphs and solutions.
//
// # Overview
//
// This package turns a [puzzle.Graph] into Graphviz DOT source and renders
// it to SVG or PNG in-process. Regions appear as filled circles colored by
// their palette entry and sized by their cell count; edges connect touching
// regions.
//
// # Usage
//
// Convert a graph to DOT, then render:
//
//	dot := render.ToDOT(g, board.Palette, render.Options{})
//	svg, err := render.SVG(dot)
//	png, err := render.PNG(dot)
//
// # Solution Steps
//
// [SolutionSteps] replays a move sequence and produces one DOT document per
// board state, starting with the unsolved board:
//
//	steps, err := render.SolutionSteps(g, palette, result.Moves, render.Options{})
//	for _, s := range steps {
//		svg, err := render.SVG(s.DOT)
//		// write svg to solution-03.svg etc.
//	}
//
// # Dependencies
//
// Rendering uses [github.com/goccy/go-graphviz], which embeds Graphviz as
// WebAssembly, so SVG and PNG output need no external tools.
package render
