package solver

import (
	"context"

	"github.com/chrsmith/kami2-solver/pkg/puzzle"
)

// Run is a handle to a search running in its own goroutine. It decouples
// starting a search from collecting its result, so callers can race the
// search against timers, UI events or other work and cancel it at any time.
type Run struct {
	cancel context.CancelFunc
	done   chan struct{}

	// Written once by the searching goroutine before done closes.
	result Result
	err    error
}

// Start launches Solve on a new goroutine and returns immediately. The
// search inherits cancellation from ctx and from the Solver's Timeout; it
// can additionally be stopped through [Run.Cancel].
//
// The typical timeout-then-cancel pattern:
//
//	run := s.Start(ctx, g, maxMoves)
//	select {
//	case <-run.Done():
//	case <-time.After(30 * time.Second):
//	    run.Cancel()
//	}
//	result, err := run.Wait()
func (s *Solver) Start(ctx context.Context, g *puzzle.Graph, maxMoves int) *Run {
	ctx, cancel := context.WithCancel(ctx)
	r := &Run{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer cancel()
		r.result, r.err = s.Solve(ctx, g, maxMoves)
		close(r.done)
	}()
	return r
}

// Done returns a channel that closes when the search has finished, whether
// it solved the board, exhausted the budget, failed or was cancelled.
func (r *Run) Done() <-chan struct{} { return r.done }

// Cancel asks the search to stop. The search notices at its next recursion
// entry and unwinds with a partial result; Cancel itself does not wait.
// Cancelling a finished run is a no-op.
func (r *Run) Cancel() { r.cancel() }

// Wait blocks until the search finishes and returns its outcome. Like
// [Solver.Solve], a cancelled search is not an error: it yields a Result
// with Cancelled set. Wait can be called any number of times.
func (r *Run) Wait() (Result, error) {
	<-r.done
	return r.result, r.err
}
