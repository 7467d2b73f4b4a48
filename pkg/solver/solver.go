package solver

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/chrsmith/kami2-solver/pkg/puzzle"
)

// progressInterval is the number of evaluated nodes between progress
// callbacks. Deep searches evaluate millions of nodes; reporting every
// node would dominate the runtime.
const progressInterval = 10000

// Solver configures the search. The zero value is ready to use: default
// weights, no timeout, no progress reporting.
//
// A Solver holds no per-search state, so one value can serve concurrent
// [Solver.Solve] and [Solver.Start] calls.
type Solver struct {
	// Weights tune move ordering. The zero value means [DefaultWeights].
	Weights Weights

	// Timeout bounds a single Solve call. Zero means no limit; the caller's
	// context still applies either way. When the timeout fires the search
	// unwinds and returns its partial result with Cancelled set.
	Timeout time.Duration

	// Progress, when set, is called roughly every ten thousand evaluated
	// nodes and once when the search finishes, with the running counters.
	// It executes on the searching goroutine and must not block.
	Progress func(evaluated, culled int)
}

// Result is the outcome of one search.
type Result struct {
	// Moves is the winning sequence in play order. Nil unless Solved.
	Moves []puzzle.Move `json:"moves,omitempty" bson:"moves,omitempty"`

	// Solved reports whether Moves floods the board to a single color
	// within the budget.
	Solved bool `json:"solved" bson:"solved"`

	// Cancelled reports that the search stopped early through context
	// cancellation or timeout. The counters cover the work done up to
	// that point.
	Cancelled bool `json:"cancelled,omitempty" bson:"cancelled,omitempty"`

	// NodesEvaluated counts the positions the search entered.
	NodesEvaluated int `json:"nodes_evaluated" bson:"nodes_evaluated"`

	// DuplicatesCulled counts the positions skipped because an identical
	// signature had already been expanded.
	DuplicatesCulled int `json:"duplicates_culled" bson:"duplicates_culled"`

	// Duration is the wall-clock time the search took.
	Duration time.Duration `json:"duration" bson:"duration"`
}

// outcome tags what ended the exploration of one position.
type outcome int

const (
	outcomeExhausted outcome = iota // every candidate explored, no solution
	outcomeDuplicate                // position already expanded elsewhere
	outcomeSolved                   // board reached a single color
	outcomeCancelled                // context cancelled or timed out
)

// search is the per-invocation state. Each Solve call builds a fresh one,
// and only the searching goroutine touches it.
type search struct {
	weights  Weights
	visited  map[string]struct{}
	path     []puzzle.Move
	progress func(evaluated, culled int)

	evaluated int
	culled    int
}

// Solve searches for a move sequence that floods g to one color in at most
// maxMoves moves. The graph is validated first; a malformed graph fails
// immediately. The receiver's Timeout, if set, bounds the call.
//
// Cancellation is not an error: a cancelled or timed-out search returns its
// partial counters in a Result with Cancelled set and a nil error. The error
// return covers invalid input only.
func (s *Solver) Solve(ctx context.Context, g *puzzle.Graph, maxMoves int) (Result, error) {
	if g == nil {
		return Result{}, ErrNilGraph
	}
	if maxMoves < 0 {
		return Result{}, fmt.Errorf("max moves %d: %w", maxMoves, ErrNegativeBudget)
	}
	weights := s.Weights
	if weights == (Weights{}) {
		weights = DefaultWeights
	}
	if err := weights.Validate(); err != nil {
		return Result{}, err
	}
	if err := g.Validate(); err != nil {
		return Result{}, fmt.Errorf("malformed graph: %w", err)
	}

	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	run := &search{
		weights:  weights,
		visited:  make(map[string]struct{}),
		progress: s.Progress,
	}

	start := time.Now()
	out := run.dfs(ctx, g, maxMoves)

	result := Result{
		NodesEvaluated:   run.evaluated,
		DuplicatesCulled: run.culled,
		Duration:         time.Since(start),
	}
	switch out {
	case outcomeSolved:
		result.Solved = true
		result.Moves = slices.Clone(run.path)
	case outcomeCancelled:
		result.Cancelled = true
	}

	if run.progress != nil {
		run.progress(run.evaluated, run.culled)
	}
	return result, nil
}

// dfs explores the position g with remaining moves left in the budget. The
// current move path lives in s.path; when a position solves the board the
// stack unwinds with outcomeSolved and the path intact.
func (s *search) dfs(ctx context.Context, g *puzzle.Graph, remaining int) outcome {
	select {
	case <-ctx.Done():
		return outcomeCancelled
	default:
	}

	s.evaluated++
	if s.progress != nil && s.evaluated%progressInterval == 0 {
		s.progress(s.evaluated, s.culled)
	}

	sig := g.Signature()
	if _, seen := s.visited[sig]; seen {
		s.culled++
		return outcomeDuplicate
	}
	s.visited[sig] = struct{}{}

	if g.Solved() {
		return outcomeSolved
	}
	if remaining <= 0 {
		return outcomeExhausted
	}

	for _, candidate := range rank(s.weights, g, remaining) {
		next, err := g.Apply(candidate.move)
		if err != nil {
			// Generated moves always apply to the graph they came from.
			panic(fmt.Sprintf("apply generated move %v: %v", candidate.move, err))
		}
		s.path = append(s.path, candidate.move)
		switch out := s.dfs(ctx, next, remaining-1); out {
		case outcomeSolved, outcomeCancelled:
			return out
		}
		s.path = s.path[:len(s.path)-1]
	}
	return outcomeExhausted
}
