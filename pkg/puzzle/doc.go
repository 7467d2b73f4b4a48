// Package puzzle provides the region graph model for flood-fill coloring
// puzzles and the recolor-and-merge transition that drives them.
//
// # Overview
//
// A puzzle board is abstracted as an undirected graph of regions. Each region
// is a maximal connected area of one color; its size counts the primitive
// cells (triangles on a KAMI 2 board) it covers. Two regions are adjacent when
// they share at least one cell border. Colors are small integer indices into a
// palette that lives outside this package.
//
// The puzzle is solved when every region carries the same color, i.e. the
// whole board has been flooded.
//
// # Basic Usage
//
// Create a graph with [New], add regions with [Graph.AddRegion], and declare
// adjacency with [Graph.Link]:
//
//	g := puzzle.New()
//	g.AddRegion(puzzle.Region{ID: 0, Color: 0, Size: 4})
//	g.AddRegion(puzzle.Region{ID: 1, Color: 1, Size: 2})
//	g.Link(0, 1)
//
// Use [Graph.Validate] to verify structural integrity after building, and
// [Graph.Apply] to play a move. Apply is pure: it returns a new independent
// graph and never touches the receiver, so search code can branch freely.
//
// # Moves
//
// A [Move] recolors one region. When the new color matches one or more
// neighbors, those neighbors are absorbed into the recolored region: sizes
// add up, adjacency sets merge, and the absorbed ids disappear from the
// graph. [Graph.Moves] enumerates exactly the moves that cause at least one
// merge, in deterministic (region, color) order.
//
// # Signatures
//
// [Graph.Signature] produces a canonical SHA-256 fingerprint of the graph:
// regions are serialized in sorted id order with sorted adjacency lists, so
// two graphs that hold the same regions compare equal regardless of insertion
// order. Signatures are the keys for duplicate-state detection during search
// and for caching solve results. Region ids participate in the signature, so
// relabeled but structurally identical graphs hash differently. Within one
// search run ids are stable (merges keep the surviving region's id), which is
// the case duplicate detection actually needs.
//
// # Concurrency
//
// Graph instances are not safe for concurrent mutation. The build API
// (AddRegion, Link) is meant for single-goroutine construction; after that,
// read-only use (queries, Apply, Signature) is safe from multiple goroutines
// because Apply works on a private clone.
package puzzle
