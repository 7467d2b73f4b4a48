// Package solver searches for move sequences that flood a region graph to a
// single color within a move budget.
//
// # Overview
//
// The search is a depth-first walk over the state space spanned by
// [puzzle.Graph.Moves], bounded by the move budget. At every node candidate
// moves are scored by how much they merge and explored best-first, so boards
// with a greedy solution resolve almost immediately while adversarial boards
// degrade into an ordered exhaustive search. The first solution found wins;
// the solver does not prove minimality.
//
// Two mechanisms keep the walk tractable:
//
//   - Duplicate states are culled. Every visited position is fingerprinted
//     with [puzzle.Graph.Signature] and never expanded twice, which collapses
//     move sequences that differ only in order.
//   - Hopeless branches are cut. A position with more distinct colors than
//     movesRemaining+1 cannot reach a single color in budget (a move removes
//     at most one color), so its moves all score zero and are dropped.
//
// # Usage
//
//	s := solver.Solver{Timeout: 30 * time.Second}
//	result, err := s.Solve(ctx, g, 5)
//
// [Solver.Solve] runs synchronously; [Solver.Start] runs the same search in a
// goroutine and returns a [Run] handle for cancellation and completion. Both
// honor context cancellation cooperatively: the walk checks the context at
// every recursion entry and unwinds with a partial [Result] marked Cancelled.
//
// # Determinism
//
// Given the same graph, budget and weights, the search visits states in the
// same order every run: move enumeration is ordered, scoring is pure, and
// ties keep enumeration order. Results are reproducible across processes.
//
// Each invocation owns its entire search state, so a single Solver value can
// serve concurrent Solve calls.
package solver
