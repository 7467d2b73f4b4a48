// Package pkg provides the core libraries for KAMI 2 puzzle solving.
//
// # Overview
//
// Kami2solver reads puzzle screenshots from the game KAMI 2, reduces them to
// region adjacency graphs, and searches for the shortest sequence of
// recoloring moves that floods the whole board to a single color. The pkg
// directory is organized into four main areas:
//
//  1. [puzzle] - Domain model (region graphs, moves, serialization)
//  2. [extract] / [solver] / [render] - The three pipeline stages
//  3. [pipeline] - Orchestration with caching shared by CLI and API
//  4. [cache] / [config] / [errors] / [observability] - Infrastructure
//
// # Architecture
//
// The typical data flow through kami2solver:
//
//	Screenshot (PNG/JPEG)
//	         ↓
//	    [extract] package (triangle-grid sampling + color clustering)
//	         ↓
//	    [puzzle] package (region graph + flood-merge moves)
//	         ↓
//	    [solver] package (weighted depth-first search)
//	         ↓
//	    [render] package (DOT/SVG/PNG drawings + replay steps)
//
// # Quick Start
//
// Extract a board and search for a solution:
//
//	import (
//	    "context"
//	    "os"
//
//	    "github.com/chrsmith/kami2-solver/pkg/extract"
//	    "github.com/chrsmith/kami2-solver/pkg/solver"
//	)
//
//	// 1. Extract the region graph
//	data, _ := os.ReadFile("level.png")
//	board, _ := extract.FromBytes(data, extract.Options{})
//
//	// 2. Search within a move budget
//	var s solver.Solver
//	result, _ := s.Solve(context.Background(), board.Graph, 8)
//
//	// 3. Play the moves
//	for _, m := range result.Moves {
//	    fmt.Println(m) // "region 3 -> color 1"
//	}
//
// # Main Packages
//
// ## Domain Model
//
// [puzzle] - Region graphs: uniformly colored areas with adjacency, the Move
// type, and the flood-merge rule ([puzzle.Graph.Apply]). Also the canonical
// JSON document format shared by CLI artifacts, API payloads and cache
// entries.
//
// ## Pipeline Stages
//
// [extract] - Screenshot to region graph. Samples the game's triangle grid,
// clusters samples into a palette within a tolerance, and merges connected
// same-color cells into regions.
//
// [solver] - Bounded depth-first search over move sequences. Moves are
// ranked by how much they merge before descending, and already-seen
// positions are culled by graph signature. Supports cancellation, progress
// callbacks, and a background [solver.Run] handle.
//
// [render] - Region graph drawings. DOT generation plus SVG and PNG via
// Graphviz, and per-move board states for solution replays.
//
// ## Orchestration
//
// [pipeline] - The extract, solve and render stages behind one Runner with
// transparent result caching. CLI commands and API handlers both run on it,
// so a board solved anywhere is warm everywhere.
//
// ## Infrastructure
//
// [cache] - Result cache backends: files for the CLI, Redis and MongoDB for
// deployments that share results across machines, and a no-op backend.
//
// [config] - Optional TOML configuration with flag > file > default
// precedence.
//
// [errors] - Error classification (invalid input, not found, unavailable)
// that the API maps to HTTP status codes.
//
// [observability] - Hook points for metrics and tracing around pipeline
// stages and HTTP handling.
//
// [buildinfo] - Version information embedded at build time.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...           # All tests
//	go test ./pkg/solver/...    # Specific package
//	go test -run Example        # Examples only
//
// [puzzle]: https://pkg.go.dev/github.com/chrsmith/kami2-solver/pkg/puzzle
// [extract]: https://pkg.go.dev/github.com/chrsmith/kami2-solver/pkg/extract
// [solver]: https://pkg.go.dev/github.com/chrsmith/kami2-solver/pkg/solver
// [render]: https://pkg.go.dev/github.com/chrsmith/kami2-solver/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/chrsmith/kami2-solver/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/chrsmith/kami2-solver/pkg/cache
// [config]: https://pkg.go.dev/github.com/chrsmith/kami2-solver/pkg/config
// [errors]: https://pkg.go.dev/github.com/chrsmith/kami2-solver/pkg/errors
// [observability]: https://pkg.go.dev/github.com/chrsmith/kami2-solver/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/chrsmith/kami2-solver/pkg/buildinfo
package pkg
