package cli

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
)

// searchLogger converts solver progress callbacks into spinner updates and
// periodic log heartbeats. The solver invokes the callback on the searching
// goroutine roughly every ten thousand nodes; heartbeats are throttled to
// one every ten seconds so long searches stay visible without flooding the
// terminal.
//
// A searchLogger serves a single search; it is not safe for concurrent use.
type searchLogger struct {
	logger  *log.Logger
	spinner *Spinner

	start   time.Time
	lastLog time.Time

	evaluated, culled int
}

// newSearchLogger creates a search logger. The spinner may be nil, in which
// case only heartbeats are emitted.
func newSearchLogger(logger *log.Logger, spinner *Spinner) *searchLogger {
	now := time.Now()
	return &searchLogger{
		logger:  logger,
		spinner: spinner,
		start:   now,
		lastLog: now,
	}
}

// onProgress is wired into solver.Solver.Progress. It must not block.
func (s *searchLogger) onProgress(evaluated, culled int) {
	s.evaluated, s.culled = evaluated, culled

	if s.spinner != nil {
		s.spinner.SetMessage(fmt.Sprintf("Searching... %s nodes, %s duplicates culled",
			humanCount(evaluated), humanCount(culled)))
	}

	if time.Since(s.lastLog) >= 10*time.Second {
		elapsed := time.Since(s.start).Truncate(time.Second)
		s.logger.Infof("Searching... %v elapsed, %d nodes evaluated (%d duplicates culled)",
			elapsed, evaluated, culled)
		s.lastLog = time.Now()
	}
}

// humanCount formats a node count for the spinner line: 950 stays 950,
// 12345 becomes "12.3k", 4200000 becomes "4.2M".
func humanCount(n int) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fk", float64(n)/1_000)
	default:
		return fmt.Sprintf("%d", n)
	}
}
