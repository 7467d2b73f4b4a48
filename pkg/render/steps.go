package render

import (
	"fmt"

	"github.com/chrsmith/kami2-solver/pkg/puzzle"
)

// Step is one board state in a rendered solution.
type Step struct {
	// Index is the number of moves applied to reach this state.
	Index int

	// Move is the move that produced this state, nil for the initial board.
	Move *puzzle.Move

	// DOT is the board state in Graphviz DOT format.
	DOT string
}

// SolutionSteps replays a move sequence and renders every intermediate
// board, starting with the unsolved one. The input graph is not modified.
func SolutionSteps(g *puzzle.Graph, palette []string, moves []puzzle.Move, opts Options) ([]Step, error) {
	steps := make([]Step, 0, len(moves)+1)
	steps = append(steps, Step{Index: 0, DOT: ToDOT(g, palette, opts)})

	state := g
	for i, m := range moves {
		next, err := state.Apply(m)
		if err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i+1, m, err)
		}
		state = next
		steps = append(steps, Step{Index: i + 1, Move: &m, DOT: ToDOT(state, palette, opts)})
	}

	return steps, nil
}
