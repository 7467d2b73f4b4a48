package puzzle

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

var (
	// ErrInvalidRegionID is returned by [Graph.AddRegion] when the region ID
	// is negative. Extraction numbers regions from zero, and negative ids are
	// reserved as sentinels in a few call sites.
	ErrInvalidRegionID = errors.New("region ID must not be negative")

	// ErrDuplicateRegionID is returned by [Graph.AddRegion] when a region
	// with the same ID already exists. Region IDs must be unique.
	ErrDuplicateRegionID = errors.New("duplicate region ID")

	// ErrUnknownRegion is returned by [Graph.Link] and [Graph.Apply] when a
	// referenced region does not exist in the graph.
	ErrUnknownRegion = errors.New("unknown region")

	// ErrInvalidSize is returned by [Graph.AddRegion] and [Graph.Validate]
	// when a region covers no cells. Every region must have size >= 1.
	ErrInvalidSize = errors.New("region size must be positive")

	// ErrInvalidColor is returned when a color index is negative. Colors are
	// indices into an external palette and are never negative.
	ErrInvalidColor = errors.New("color must not be negative")

	// ErrSelfLink is returned by [Graph.Link] when both endpoints are the
	// same region. Adjacency is irreflexive: a region never neighbors itself.
	ErrSelfLink = errors.New("region cannot neighbor itself")

	// ErrDanglingAdjacency is returned by [Graph.Validate] when an adjacency
	// set references a region that doesn't exist. This indicates graph
	// corruption, not recoverable input error.
	ErrDanglingAdjacency = errors.New("adjacency references unknown region")

	// ErrAsymmetricAdjacency is returned by [Graph.Validate] when region A
	// lists B as a neighbor but B does not list A. Adjacency must be
	// symmetric because the underlying board borders are.
	ErrAsymmetricAdjacency = errors.New("adjacency must be symmetric")

	// ErrSameColor is returned by [Graph.Apply] when a move recolors a region
	// to the color it already has. Such a move would never change the graph.
	ErrSameColor = errors.New("region already has that color")
)

// Region is one uniformly colored area of the board. ID identifies the
// region for the lifetime of a puzzle: when regions merge, the recolored
// region keeps its id and the absorbed ids retire permanently.
//
// The zero value is usable as input to [Graph.AddRegion] only after setting
// ID, Color and Size. Adjacency is managed by the graph via [Graph.Link];
// any adjacency carried by the argument is ignored.
type Region struct {
	ID    int // Unique identifier, >= 0
	Color int // Palette index, >= 0
	Size  int // Number of primitive cells covered, >= 1

	neighbors map[int]struct{}
}

// Neighbors returns the ids of adjacent regions in ascending order.
// The returned slice is a copy and can be modified freely.
func (r Region) Neighbors() []int {
	return slices.Sorted(maps.Keys(r.neighbors))
}

// Adjacent reports whether the region borders the region with the given id.
func (r Region) Adjacent(id int) bool {
	_, ok := r.neighbors[id]
	return ok
}

// Degree returns the number of adjacent regions.
func (r Region) Degree() int { return len(r.neighbors) }

// Graph is an undirected graph of colored regions. Adjacency is symmetric
// and irreflexive, and the total cell count is conserved by every move: a
// merge grows one region by exactly the sizes of the regions it absorbs.
//
// The zero value is not usable - use [New]. Graphs are not safe for
// concurrent mutation; see the package documentation for the read-only
// concurrency guarantees.
type Graph struct {
	regions map[int]*Region
}

// New creates an empty region graph.
func New() *Graph {
	return &Graph{regions: make(map[int]*Region)}
}

// AddRegion adds a region to the graph. Returns ErrInvalidRegionID for a
// negative id, ErrDuplicateRegionID if the id is taken, ErrInvalidColor for
// a negative color, or ErrInvalidSize for a size below one.
//
// The region starts with no neighbors regardless of where the argument came
// from; declare adjacency with [Graph.Link].
func (g *Graph) AddRegion(r Region) error {
	if r.ID < 0 {
		return ErrInvalidRegionID
	}
	if _, exists := g.regions[r.ID]; exists {
		return ErrDuplicateRegionID
	}
	if r.Color < 0 {
		return ErrInvalidColor
	}
	if r.Size < 1 {
		return ErrInvalidSize
	}
	r.neighbors = make(map[int]struct{})
	g.regions[r.ID] = &r
	return nil
}

// Link declares regions a and b adjacent, in both directions. Linking the
// same pair twice is a no-op. Returns ErrSelfLink when a == b, or
// ErrUnknownRegion (wrapped with the offending id) when either endpoint is
// missing.
func (g *Graph) Link(a, b int) error {
	if a == b {
		return ErrSelfLink
	}
	ra, ok := g.regions[a]
	if !ok {
		return fmt.Errorf("region %d: %w", a, ErrUnknownRegion)
	}
	rb, ok := g.regions[b]
	if !ok {
		return fmt.Errorf("region %d: %w", b, ErrUnknownRegion)
	}
	ra.neighbors[b] = struct{}{}
	rb.neighbors[a] = struct{}{}
	return nil
}

// Region returns a read-only copy of the region with the given id and true,
// or a zero region and false if it doesn't exist. The copy shares no mutable
// state that callers can reach: adjacency is only exposed through
// [Region.Neighbors], which copies.
func (g *Graph) Region(id int) (Region, bool) {
	r, ok := g.regions[id]
	if !ok {
		return Region{}, false
	}
	return *r, true
}

// Regions returns read-only copies of all regions in ascending id order.
func (g *Graph) Regions() []Region {
	out := make([]Region, 0, len(g.regions))
	for _, id := range g.IDs() {
		out = append(out, *g.regions[id])
	}
	return out
}

// IDs returns all region ids in ascending order.
func (g *Graph) IDs() []int {
	return slices.Sorted(maps.Keys(g.regions))
}

// RegionCount returns the number of regions in the graph.
func (g *Graph) RegionCount() int { return len(g.regions) }

// TotalSize returns the number of primitive cells covered by all regions.
// Moves conserve this value - it identifies the board across a whole search.
func (g *Graph) TotalSize() int {
	total := 0
	for _, r := range g.regions {
		total += r.Size
	}
	return total
}

// Colors returns the distinct colors present in the graph in ascending order.
func (g *Graph) Colors() []int {
	set := make(map[int]struct{})
	for _, r := range g.regions {
		set[r.Color] = struct{}{}
	}
	return slices.Sorted(maps.Keys(set))
}

// ColorCount returns the number of distinct colors present in the graph.
// A solvable position needs at least ColorCount()-1 more moves; search uses
// this as its feasibility bound.
func (g *Graph) ColorCount() int {
	set := make(map[int]struct{})
	for _, r := range g.regions {
		set[r.Color] = struct{}{}
	}
	return len(set)
}

// Solved reports whether every region carries the same color. A graph with
// one region (or none) is trivially solved.
func (g *Graph) Solved() bool {
	first := -1
	for _, r := range g.regions {
		if first < 0 {
			first = r.Color
			continue
		}
		if r.Color != first {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the graph. The copy shares nothing with the
// receiver; mutations on either side are invisible to the other.
func (g *Graph) Clone() *Graph {
	clone := &Graph{regions: make(map[int]*Region, len(g.regions))}
	for id, r := range g.regions {
		clone.regions[id] = &Region{
			ID:        r.ID,
			Color:     r.Color,
			Size:      r.Size,
			neighbors: maps.Clone(r.neighbors),
		}
	}
	return clone
}

// Validate checks graph integrity and returns nil if valid. It verifies that
// every region has a non-negative color and positive size, that no region
// neighbors itself, and that adjacency sets reference existing regions
// symmetrically. Errors wrap the package sentinels with the offending region
// id for context.
//
// Graphs built through [Graph.AddRegion] and [Graph.Link] cannot violate
// these constraints; Validate guards data that arrived through decoding.
func (g *Graph) Validate() error {
	for _, id := range g.IDs() {
		r := g.regions[id]
		if r.Color < 0 {
			return fmt.Errorf("region %d: %w", id, ErrInvalidColor)
		}
		if r.Size < 1 {
			return fmt.Errorf("region %d: %w", id, ErrInvalidSize)
		}
		for nb := range r.neighbors {
			if nb == id {
				return fmt.Errorf("region %d: %w", id, ErrSelfLink)
			}
			other, ok := g.regions[nb]
			if !ok {
				return fmt.Errorf("region %d -> %d: %w", id, nb, ErrDanglingAdjacency)
			}
			if _, ok := other.neighbors[id]; !ok {
				return fmt.Errorf("region %d -> %d: %w", id, nb, ErrAsymmetricAdjacency)
			}
		}
	}
	return nil
}

// Signature returns a canonical SHA-256 fingerprint of the graph. Regions
// are encoded in ascending id order with sorted adjacency, so the result is
// independent of map iteration and insertion order. Two graphs with equal
// regions, colors, sizes and adjacency produce the same signature.
func (g *Graph) Signature() string {
	var b strings.Builder
	for _, id := range g.IDs() {
		r := g.regions[id]
		b.WriteString(strconv.Itoa(id))
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(r.Color))
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(r.Size))
		b.WriteByte(':')
		for i, nb := range r.Neighbors() {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.Itoa(nb))
		}
		b.WriteByte(';')
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
