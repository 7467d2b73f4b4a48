// Package extract turns KAMI 2 screenshots into region graphs.
//
// # Overview
//
// A KAMI 2 board is a lattice of colored triangles. Extraction lays a grid
// over the screenshot, samples the color at the center of every triangle,
// groups the samples into a palette, and flood-fills same-colored triangles
// into regions. The output is a [puzzle.Graph] ready for solving, plus the
// discovered palette for rendering.
//
// # Geometry
//
// The board is modeled as columns × rows triangles (10×28 covers the
// standard board). Orientation alternates checkerboard style: a triangle
// at (col, row) points up when col+row is even, down otherwise. Triangles
// always share their slanted edges with horizontal neighbors; the
// horizontal base edge connects an upward triangle to the row below and a
// downward one to the row above.
//
// # Color Classification
//
// Each triangle contributes the average of a small pixel window at its
// centroid. Samples are clustered greedily: a sample joins the nearest
// existing palette entry when the RGB distance is within [Options.Tolerance],
// otherwise it founds a new entry. Cluster indices become the color indices
// of the graph.
//
// # Usage
//
// Extract straight from a screenshot file:
//
//	board, err := extract.FromFile("level-42.png", extract.Options{})
//	if err != nil {
//		return err
//	}
//	fmt.Println(board.Graph.RegionCount(), board.Palette)
//
// The zero [Options] value applies the standard board defaults.
package extract
