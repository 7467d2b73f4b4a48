package solver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/chrsmith/kami2-solver/pkg/puzzle"
)

// stripe is a 0-1-2-3 chain solvable in two moves from region 1.
func stripe(t *testing.T) *puzzle.Graph {
	t.Helper()
	return board(t,
		[][3]int{{0, 0, 2}, {1, 1, 1}, {2, 0, 3}, {3, 2, 1}},
		[][2]int{{0, 1}, {1, 2}, {2, 3}},
	)
}

// replay applies moves in order and fails the test on any invalid move.
func replay(t *testing.T, g *puzzle.Graph, moves []puzzle.Move) *puzzle.Graph {
	t.Helper()
	for _, m := range moves {
		next, err := g.Apply(m)
		if err != nil {
			t.Fatalf("replay %v: %v", m, err)
		}
		g = next
	}
	return g
}

func TestSolveInputErrors(t *testing.T) {
	var s Solver
	g := stripe(t)

	if _, err := s.Solve(context.Background(), g, -1); !errors.Is(err, ErrNegativeBudget) {
		t.Errorf("Solve(maxMoves=-1) error = %v, want %v", err, ErrNegativeBudget)
	}

	bad := Solver{Weights: Weights{MergeRegions: 1, MergeCells: 1}}
	if _, err := bad.Solve(context.Background(), g, 3); !errors.Is(err, ErrInvalidWeights) {
		t.Errorf("Solve with equal weights error = %v, want %v", err, ErrInvalidWeights)
	}

	if _, err := s.Solve(context.Background(), nil, 3); !errors.Is(err, ErrNilGraph) {
		t.Errorf("Solve(nil) error = %v, want %v", err, ErrNilGraph)
	}
}

func TestSolveAlreadySolved(t *testing.T) {
	g := board(t, [][3]int{{0, 4, 7}}, nil)

	var s Solver
	result, err := s.Solve(context.Background(), g, 0)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}

	if !result.Solved {
		t.Error("single-color board not reported solved")
	}
	if len(result.Moves) != 0 {
		t.Errorf("Moves = %v, want none", result.Moves)
	}
	if result.NodesEvaluated != 1 {
		t.Errorf("NodesEvaluated = %d, want 1", result.NodesEvaluated)
	}
}

func TestSolveStripe(t *testing.T) {
	g := stripe(t)

	var s Solver
	result, err := s.Solve(context.Background(), g, 2)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}

	if !result.Solved {
		t.Fatalf("board not solved: %+v", result)
	}
	if len(result.Moves) > 2 {
		t.Errorf("solution uses %d moves, budget was 2", len(result.Moves))
	}
	if !replay(t, g, result.Moves).Solved() {
		t.Error("replaying the solution does not solve the board")
	}
	if result.Cancelled {
		t.Error("completed search reported cancelled")
	}
}

func TestSolveBestFirst(t *testing.T) {
	// Region 1 absorbing its two color-1 neighbors is the strongest first
	// move; the follow-up flood finishes the board. The exact sequence is
	// pinned to catch ordering regressions.
	g := board(t,
		[][3]int{{0, 1, 1}, {1, 0, 1}, {2, 1, 1}, {3, 2, 1}},
		[][2]int{{0, 1}, {1, 2}, {2, 3}},
	)

	var s Solver
	result, err := s.Solve(context.Background(), g, 2)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if !result.Solved {
		t.Fatalf("board not solved: %+v", result)
	}

	// After the double merge, recoloring region 3 absorbs the larger
	// region and outscores the reverse direction.
	want := []puzzle.Move{{Region: 1, Color: 1}, {Region: 3, Color: 1}}
	if len(result.Moves) != len(want) {
		t.Fatalf("Moves = %v, want %v", result.Moves, want)
	}
	for i := range want {
		if result.Moves[i] != want[i] {
			t.Errorf("Moves[%d] = %v, want %v", i, result.Moves[i], want[i])
		}
	}
}

func TestSolveExhaustsBudget(t *testing.T) {
	// Five alternating regions need at least two moves; give one.
	g := board(t,
		[][3]int{{0, 0, 1}, {1, 1, 1}, {2, 0, 1}, {3, 1, 1}, {4, 0, 1}},
		[][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 4}},
	)

	var s Solver
	result, err := s.Solve(context.Background(), g, 1)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}

	if result.Solved {
		t.Errorf("impossible board reported solved with moves %v", result.Moves)
	}
	if result.Cancelled {
		t.Error("exhausted search reported cancelled")
	}
	if result.NodesEvaluated < 2 {
		t.Errorf("NodesEvaluated = %d, want at least the root and one child", result.NodesEvaluated)
	}
}

func TestSolveFeasibilityPrune(t *testing.T) {
	// Four distinct colors cannot collapse in one move. The prune fires at
	// the root, so only one node is ever evaluated.
	g := board(t,
		[][3]int{{0, 0, 1}, {1, 1, 1}, {2, 2, 1}, {3, 3, 1}},
		[][2]int{{0, 1}, {1, 2}, {2, 3}},
	)

	var s Solver
	result, err := s.Solve(context.Background(), g, 1)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}

	if result.Solved {
		t.Error("infeasible board reported solved")
	}
	if result.NodesEvaluated != 1 {
		t.Errorf("NodesEvaluated = %d, want 1 (prune should fire at the root)", result.NodesEvaluated)
	}

	// Three moves are enough once the budget admits them.
	result, err = s.Solve(context.Background(), g, 3)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if !result.Solved {
		t.Errorf("board not solved with sufficient budget: %+v", result)
	}
}

// twoIslands is unsolvable: region 4 is isolated with a unique color, so no
// move sequence can ever unify it. Searching it exercises duplicate culling
// because the two pair-merges commute into identical states.
func twoIslands(t *testing.T) *puzzle.Graph {
	t.Helper()
	return board(t,
		[][3]int{{0, 0, 1}, {1, 1, 1}, {2, 0, 1}, {3, 1, 1}, {4, 2, 1}},
		[][2]int{{0, 1}, {2, 3}},
	)
}

func TestSolveCullsDuplicates(t *testing.T) {
	var s Solver
	result, err := s.Solve(context.Background(), twoIslands(t), 3)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}

	if result.Solved {
		t.Errorf("unsolvable board reported solved with moves %v", result.Moves)
	}
	if result.DuplicatesCulled == 0 {
		t.Error("commuting merges produced no duplicate culls")
	}
}

func TestSolveDeterministic(t *testing.T) {
	var s Solver
	first, err := s.Solve(context.Background(), twoIslands(t), 3)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}

	for range 5 {
		again, err := s.Solve(context.Background(), twoIslands(t), 3)
		if err != nil {
			t.Fatalf("Solve: %v", err)
		}
		if again.NodesEvaluated != first.NodesEvaluated ||
			again.DuplicatesCulled != first.DuplicatesCulled ||
			again.Solved != first.Solved {
			t.Fatalf("results differ across runs: %+v vs %+v", again, first)
		}
	}
}

func TestSolvePreCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var s Solver
	result, err := s.Solve(ctx, stripe(t), 2)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}

	if !result.Cancelled {
		t.Error("pre-cancelled context did not mark the result cancelled")
	}
	if result.Solved {
		t.Error("cancelled search reported solved")
	}
	if result.NodesEvaluated > 1 {
		t.Errorf("NodesEvaluated = %d, want at most 1 after pre-cancellation", result.NodesEvaluated)
	}
}

func TestSolveTimeout(t *testing.T) {
	// A 30-region two-color ring needs 15 moves; 13 force a full exhaustive
	// search far beyond the timeout.
	g := puzzle.New()
	const n = 30
	for i := range n {
		if err := g.AddRegion(puzzle.Region{ID: i, Color: i % 2, Size: 1}); err != nil {
			t.Fatalf("AddRegion: %v", err)
		}
	}
	for i := range n {
		if err := g.Link(i, (i+1)%n); err != nil {
			t.Fatalf("Link: %v", err)
		}
	}

	s := Solver{Timeout: 50 * time.Millisecond}
	start := time.Now()
	result, err := s.Solve(context.Background(), g, 13)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}

	if !result.Cancelled {
		t.Errorf("timeout did not cancel the search (took %v, evaluated %d)",
			time.Since(start), result.NodesEvaluated)
	}
	if result.Solved {
		t.Error("cancelled search reported solved")
	}
	if result.NodesEvaluated == 0 {
		t.Error("search did no work before the timeout")
	}
}

func TestSolveProgress(t *testing.T) {
	calls := 0
	var lastEvaluated int
	s := Solver{Progress: func(evaluated, culled int) {
		calls++
		lastEvaluated = evaluated
	}}

	result, err := s.Solve(context.Background(), stripe(t), 2)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}

	if calls == 0 {
		t.Fatal("progress callback never fired")
	}
	if lastEvaluated != result.NodesEvaluated {
		t.Errorf("final progress evaluated = %d, want %d", lastEvaluated, result.NodesEvaluated)
	}
}

func TestStartAndWait(t *testing.T) {
	var s Solver
	run := s.Start(context.Background(), stripe(t), 2)

	select {
	case <-run.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("search did not finish")
	}

	result, err := run.Wait()
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if !result.Solved {
		t.Errorf("board not solved: %+v", result)
	}

	// Wait is repeatable and Cancel after completion is a no-op.
	run.Cancel()
	again, err := run.Wait()
	if err != nil || again.Solved != result.Solved {
		t.Errorf("second Wait = (%+v, %v), want same result", again, err)
	}
}

func TestStartCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var s Solver
	run := s.Start(ctx, stripe(t), 2)
	result, err := run.Wait()
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if !result.Cancelled {
		t.Error("run with cancelled parent context not marked cancelled")
	}
}
