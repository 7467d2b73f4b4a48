package puzzle

import (
	"fmt"
	"maps"
	"slices"
)

// Move recolors one region. Applying it merges every neighbor that already
// carries the new color into the recolored region.
type Move struct {
	Region int `json:"region" bson:"region"`
	Color  int `json:"color" bson:"color"`
}

// String renders the move for logs and CLI output.
func (m Move) String() string {
	return fmt.Sprintf("region %d -> color %d", m.Region, m.Color)
}

// Apply plays the move and returns the resulting graph. The receiver is
// never modified: the result is an independent deep copy, so callers can
// branch from one position into many.
//
// Neighbors of the moved region that already hold the new color are absorbed
// into it: their sizes add onto the moved region, their neighbors become its
// neighbors, and their ids disappear from every adjacency set. Regions that
// were adjacent to an absorbed region end up adjacent to the moved region
// instead, without duplicates and never to themselves.
//
// Returns ErrUnknownRegion (wrapped with the id) if the region doesn't
// exist, ErrSameColor if the move would not change the region's color, or
// ErrInvalidColor for a negative color. Recoloring to a color no neighbor
// holds is legal and simply recolors without a merge; [Graph.Moves] never
// generates such moves because they cannot make progress.
func (g *Graph) Apply(m Move) (*Graph, error) {
	src, ok := g.regions[m.Region]
	if !ok {
		return nil, fmt.Errorf("region %d: %w", m.Region, ErrUnknownRegion)
	}
	if m.Color < 0 {
		return nil, ErrInvalidColor
	}
	if m.Color == src.Color {
		return nil, fmt.Errorf("region %d color %d: %w", m.Region, m.Color, ErrSameColor)
	}

	next := g.Clone()
	target := next.regions[m.Region]
	target.Color = m.Color

	absorbed := make(map[int]struct{})
	for nb := range target.neighbors {
		if next.regions[nb].Color == m.Color {
			absorbed[nb] = struct{}{}
		}
	}

	for id := range absorbed {
		dead := next.regions[id]
		target.Size += dead.Size
		for nb := range dead.neighbors {
			if nb == target.ID {
				continue
			}
			if _, gone := absorbed[nb]; gone {
				continue
			}
			// Re-point the survivor's adjacency from the absorbed region
			// to the grown target, both directions.
			other := next.regions[nb]
			delete(other.neighbors, id)
			other.neighbors[target.ID] = struct{}{}
			target.neighbors[nb] = struct{}{}
		}
	}
	for id := range absorbed {
		delete(target.neighbors, id)
		delete(next.regions, id)
	}

	return next, nil
}

// Absorbs returns how much the move would merge: the number of neighbors
// holding the move's color and the total cells they cover. Both are zero
// when the move merges nothing, references an unknown region, or repeats
// the region's current color.
//
// This is the cheap read-only probe behind move scoring - it answers the
// question without paying for [Graph.Apply]'s clone.
func (g *Graph) Absorbs(m Move) (regions, cells int) {
	src, ok := g.regions[m.Region]
	if !ok || m.Color == src.Color {
		return 0, 0
	}
	for nb := range src.neighbors {
		if r := g.regions[nb]; r.Color == m.Color {
			regions++
			cells += r.Size
		}
	}
	return regions, cells
}

// Moves enumerates every move that merges at least one neighbor: for each
// region, one move per distinct color held by its neighbors, excluding the
// region's own color. The result is ordered by ascending (region id, color)
// so enumeration is deterministic across runs.
//
// Recolorings that merge nothing are excluded - they spend a move without
// shrinking the graph.
func (g *Graph) Moves() []Move {
	var moves []Move
	for _, id := range g.IDs() {
		r := g.regions[id]
		colors := make(map[int]struct{})
		for nb := range r.neighbors {
			if c := g.regions[nb].Color; c != r.Color {
				colors[c] = struct{}{}
			}
		}
		for _, c := range slices.Sorted(maps.Keys(colors)) {
			moves = append(moves, Move{Region: id, Color: c})
		}
	}
	return moves
}
