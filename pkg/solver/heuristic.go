package solver

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/chrsmith/kami2-solver/pkg/puzzle"
)

var (
	// ErrInvalidWeights is returned when scoring weights are not positive or
	// do not rank region merges above cell count.
	ErrInvalidWeights = errors.New("invalid scoring weights")

	// ErrNegativeBudget is returned by [Solver.Solve] when maxMoves is
	// negative. A zero budget is valid: it solves exactly the boards that
	// are already one color.
	ErrNegativeBudget = errors.New("max moves must not be negative")

	// ErrNilGraph is returned by [Solver.Solve] when the graph is nil.
	ErrNilGraph = errors.New("nil graph")
)

// Weights tunes move scoring. MergeRegions rewards the number of neighbors a
// move absorbs, MergeCells the cells those neighbors cover. MergeRegions
// must outweigh MergeCells: collapsing the region graph is what ends the
// game, cell count only breaks ties between merges of equal arity.
type Weights struct {
	MergeRegions int `json:"merge_regions" toml:"merge_regions" bson:"merge_regions"`
	MergeCells   int `json:"merge_cells" toml:"merge_cells" bson:"merge_cells"`
}

// DefaultWeights are the scoring weights used when a [Solver] carries the
// zero value. One absorbed region is worth ten cells.
var DefaultWeights = Weights{MergeRegions: 10, MergeCells: 1}

// Validate checks that both weights are positive and that MergeRegions
// outranks MergeCells. Returns an error wrapping [ErrInvalidWeights]
// describing the first violation.
func (w Weights) Validate() error {
	if w.MergeRegions < 1 || w.MergeCells < 1 {
		return fmt.Errorf("%w: weights must be positive, got merge_regions=%d merge_cells=%d",
			ErrInvalidWeights, w.MergeRegions, w.MergeCells)
	}
	if w.MergeRegions <= w.MergeCells {
		return fmt.Errorf("%w: merge_regions (%d) must exceed merge_cells (%d)",
			ErrInvalidWeights, w.MergeRegions, w.MergeCells)
	}
	return nil
}

// Score rates playing m from g with movesRemaining moves still available,
// m included. Higher is better; zero means the move is not worth exploring.
//
// When g holds more distinct colors than movesRemaining+1 the position is
// unwinnable (one move eliminates at most one color) and every move scores
// zero. Otherwise the score is MergeRegions times the neighbors absorbed
// plus MergeCells times the cells they cover.
func (w Weights) Score(g *puzzle.Graph, m puzzle.Move, movesRemaining int) int {
	if g.ColorCount() > movesRemaining+1 {
		return 0
	}
	regions, cells := g.Absorbs(m)
	return w.MergeRegions*regions + w.MergeCells*cells
}

// scoredMove pairs a candidate move with its score for ordering.
type scoredMove struct {
	move  puzzle.Move
	score int
}

// rank enumerates, scores and orders the moves worth exploring from g.
// Moves scoring zero or less are dropped; survivors are sorted by descending
// score. The sort is stable over [puzzle.Graph.Moves] order, so equal scores
// keep ascending (region, color) order and ranking stays deterministic.
func rank(w Weights, g *puzzle.Graph, movesRemaining int) []scoredMove {
	// Feasibility depends on the position alone, so one check covers
	// every move from it.
	if g.ColorCount() > movesRemaining+1 {
		return nil
	}
	moves := g.Moves()
	ranked := make([]scoredMove, 0, len(moves))
	for _, m := range moves {
		regions, cells := g.Absorbs(m)
		score := w.MergeRegions*regions + w.MergeCells*cells
		if score <= 0 {
			continue
		}
		ranked = append(ranked, scoredMove{move: m, score: score})
	}
	slices.SortStableFunc(ranked, func(a, b scoredMove) int {
		return cmp.Compare(b.score, a.score)
	})
	return ranked
}
