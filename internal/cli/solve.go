package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/chrsmith/kami2-solver/pkg/extract"
	"github.com/chrsmith/kami2-solver/pkg/pipeline"
	"github.com/chrsmith/kami2-solver/pkg/puzzle"
	"github.com/chrsmith/kami2-solver/pkg/render"
	"github.com/chrsmith/kami2-solver/pkg/solver"
)

// defaultConcurrency bounds parallel solves in batch mode. Solving is CPU
// bound, so a small pool keeps the machine responsive.
const defaultConcurrency = 4

// Report formats for the solve command.
const (
	reportText = "text"
	reportJSON = "json"
)

// solveOpts holds the command-line flags for the solve command.
type solveOpts struct {
	output      string // report file path (stdout if empty, JSON format only)
	format      string // report format: text or json
	concurrency int    // parallel workers in batch mode
	noCache     bool   // disable caching
	steps       bool   // print the board after every move
	stepsDir    string // write a DOT drawing per move to this directory
	interactive bool   // replay the solution in a TUI
}

// solveReport is the outcome for one board, emitted as JSON by --format json.
type solveReport struct {
	Input     string        `json:"input"`
	GraphHash string        `json:"graph_hash,omitempty"`
	Regions   int           `json:"regions,omitempty"`
	Colors    int           `json:"colors,omitempty"`
	CacheHit  bool          `json:"cache_hit,omitempty"`
	Result    solver.Result `json:"result"`
	Error     string        `json:"error,omitempty"`
}

// solveCommand creates the solve command.
func (c *CLI) solveCommand() *cobra.Command {
	var so solveOpts
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "solve [screenshot-or-graph...]",
		Short: "Find a move sequence that floods the board to one color",
		Long: `Solve one or more KAMI 2 puzzles.

Inputs may be screenshots (solved end to end) or graph.json documents
produced by 'extract'. With multiple inputs the boards are solved
concurrently and a summary table is printed at the end.

A move recolors one region, merging same-colored neighbors into it.
The solver searches for a sequence within the move budget that leaves
the whole board a single color, trying the most promising moves first.

Solutions are cached locally keyed by board signature and move budget,
so solving the same board again is instant.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateReportFormat(so.format); err != nil {
				return err
			}
			if so.interactive && len(args) > 1 {
				return fmt.Errorf("--interactive supports a single input")
			}
			c.applyExtractConfig(cmd, &opts)
			c.applySolveConfig(cmd, &opts)
			if len(args) > 1 {
				return c.runSolveBatch(cmd.Context(), args, opts, so)
			}
			return c.runSolve(cmd.Context(), args[0], opts, so)
		},
	}

	// Common flags
	cmd.Flags().StringVarP(&so.output, "output", "o", "", "report file for --format json (stdout if empty)")
	cmd.Flags().StringVarP(&so.format, "format", "f", reportText, "report format: text (default), json")
	cmd.Flags().BoolVar(&so.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "bypass cache reads")

	// Search flags
	cmd.Flags().IntVarP(&opts.MaxMoves, "max-moves", "m", pipeline.DefaultMaxMoves, "move budget")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", pipeline.DefaultSolveTimeout, "search timeout")
	cmd.Flags().IntVar(&opts.Weights.MergeRegions, "merge-regions", solver.DefaultWeights.MergeRegions, "move scoring weight per absorbed region")
	cmd.Flags().IntVar(&opts.Weights.MergeCells, "merge-cells", solver.DefaultWeights.MergeCells, "move scoring weight per absorbed cell")

	// Replay flags
	cmd.Flags().BoolVar(&so.steps, "steps", false, "print the board after every move")
	cmd.Flags().StringVar(&so.stepsDir, "steps-dir", "", "write a DOT drawing of the board after every move to this directory")
	cmd.Flags().BoolVarP(&so.interactive, "interactive", "i", false, "replay the solution in an interactive viewer")

	// Batch flags
	cmd.Flags().IntVar(&so.concurrency, "concurrency", defaultConcurrency, "parallel solves in batch mode")

	// Grid flags (screenshot inputs)
	cmd.Flags().IntVar(&opts.Columns, "columns", extract.DefaultColumns, "grid columns")
	cmd.Flags().IntVar(&opts.Rows, "rows", extract.DefaultRows, "grid rows")
	cmd.Flags().IntVar(&opts.Tolerance, "tolerance", extract.DefaultTolerance, "RGB distance treated as the same color")
	cmd.Flags().IntVar(&opts.TopInset, "top-inset", 0, "pixels to crop off the top before sampling")
	cmd.Flags().IntVar(&opts.BottomInset, "bottom-inset", 0, "pixels to crop off the bottom (in-game palette bar)")
	cmd.Flags().IntVar(&opts.MaxColors, "max-colors", extract.DefaultMaxColors, "maximum palette size")

	return cmd
}

// validateReportFormat checks the --format flag of the solve command.
func validateReportFormat(s string) error {
	if s != reportText && s != reportJSON {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", s)
	}
	return nil
}

// isGraphInput reports whether path names a graph document rather than a
// screenshot, judged by file extension.
func isGraphInput(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// loadBoard produces the region graph for one input, extracting it from a
// screenshot unless the input already is a graph document.
func (c *CLI) loadBoard(ctx context.Context, runner *pipeline.Runner, input string, opts pipeline.Options) (*puzzle.Graph, []string, bool, error) {
	if isGraphInput(input) {
		g, palette, err := puzzle.ImportJSON(input)
		if err != nil {
			return nil, nil, false, fmt.Errorf("load graph %s: %w", input, err)
		}
		return g, palette, false, nil
	}
	opts.Screenshot = input
	g, palette, hit, err := runner.ExtractWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, nil, false, fmt.Errorf("extract %s: %w", input, err)
	}
	return g, palette, hit, nil
}

// runSolve solves a single board and prints or writes the outcome.
func (c *CLI) runSolve(ctx context.Context, input string, opts pipeline.Options, so solveOpts) error {
	runner, err := c.newRunner(so.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger

	g, palette, _, err := c.loadBoard(ctx, runner, input, opts)
	if err != nil {
		return err
	}
	c.Logger.Debugf("Loaded board: %d regions, %d colors", g.RegionCount(), g.ColorCount())

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Searching (budget %d moves)...", opts.MaxMoves))
	opts.Progress = newSearchLogger(c.Logger, spinner).onProgress
	spinner.Start()

	res, solveHit, err := runner.SolveWithCacheInfo(ctx, g, opts)
	if err != nil {
		spinner.StopWithError("Search failed")
		return fmt.Errorf("solve %s: %w", input, err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	if so.format == reportJSON {
		report := solveReport{
			Input:     input,
			GraphHash: g.Signature(),
			Regions:   g.RegionCount(),
			Colors:    g.ColorCount(),
			CacheHit:  solveHit,
			Result:    res,
		}
		return writeJSONOutput(report, so.output)
	}

	printSolution(g, palette, res, solveHit)

	if so.stepsDir != "" && res.Solved {
		if err := writeSolutionSteps(g, palette, res.Moves, so.stepsDir); err != nil {
			return err
		}
	}

	switch {
	case so.interactive && res.Solved:
		return c.replaySolution(g, palette, res.Moves)
	case so.steps && res.Solved:
		printNewline()
		return printSteps(g, palette, res.Moves)
	}
	return nil
}

// printSolution prints the search outcome for one board.
func printSolution(g *puzzle.Graph, palette []string, res solver.Result, cached bool) {
	switch {
	case res.Solved:
		printSuccess("Solved in %d moves", len(res.Moves))
		for i, m := range res.Moves {
			printMove(i+1, describeMove(palette, m))
		}
	case res.Cancelled:
		printWarning("Search stopped after %s without a solution", res.Duration.Round(time.Millisecond))
	default:
		printWarning("No solution within the move budget")
	}
	printDetail("%d nodes evaluated · %d duplicates culled · %s",
		res.NodesEvaluated, res.DuplicatesCulled, res.Duration.Round(time.Millisecond))
	printStats(g.RegionCount(), g.ColorCount(), cached)
}

// describeMove renders one move with a color swatch.
func describeMove(palette []string, m puzzle.Move) string {
	hex := paletteColor(palette, m.Color)
	swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render("██")
	return fmt.Sprintf("region %d %s %s %s", m.Region, iconArrow, swatch, StyleDim.Render(hex))
}

// printSteps replays the solution, printing the board after every move.
func printSteps(g *puzzle.Graph, palette []string, moves []puzzle.Move) error {
	printInfo("Replay")
	fmt.Println("  " + boardLine(g, palette))
	state := g
	for i, m := range moves {
		next, err := state.Apply(m)
		if err != nil {
			return fmt.Errorf("replay move %d (%s): %w", i+1, m, err)
		}
		state = next
		printMove(i+1, describeMove(palette, m))
		fmt.Println("  " + boardLine(state, palette))
	}
	return nil
}

// writeSolutionSteps renders every board state of the solution and writes
// one DOT drawing per step to dir.
func writeSolutionSteps(g *puzzle.Graph, palette []string, moves []puzzle.Move, dir string) error {
	steps, err := render.SolutionSteps(g, palette, moves, render.Options{})
	if err != nil {
		return fmt.Errorf("render steps: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	printNewline()
	printInfo("Solution steps")
	for _, s := range steps {
		path := filepath.Join(dir, fmt.Sprintf("step%02d.dot", s.Index))
		if err := os.WriteFile(path, []byte(s.DOT), 0o644); err != nil {
			return fmt.Errorf("write step %s: %w", path, err)
		}
		printFile(path)
	}
	return nil
}

// writeJSONOutput marshals v and writes it to path, or stdout when empty.
func writeJSONOutput(v any, path string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if path == "" || path == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", path, err)
	}
	return nil
}

// =============================================================================
// Batch Mode
// =============================================================================

// runSolveBatch solves several boards concurrently and prints a summary
// table. Individual failures are recorded per board instead of aborting the
// batch; only context cancellation stops it.
func (c *CLI) runSolveBatch(ctx context.Context, inputs []string, opts pipeline.Options, so solveOpts) error {
	runner, err := c.newRunner(so.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger

	prog := newProgress(c.Logger)
	reports := make([]solveReport, len(inputs))

	grp, gctx := errgroup.WithContext(ctx)
	grp.SetLimit(so.concurrency)
	for i, input := range inputs {
		grp.Go(func() error {
			logger := loggerFromContext(gctx)
			logger.Debugf("Solving %s", input)
			reports[i] = c.solveOne(gctx, runner, input, opts)
			return gctx.Err()
		})
	}
	if err := grp.Wait(); err != nil {
		return err
	}

	solved := 0
	for _, r := range reports {
		if r.Result.Solved {
			solved++
		}
	}
	prog.done(fmt.Sprintf("Solved %d/%d boards", solved, len(inputs)))

	if so.format == reportJSON {
		return writeJSONOutput(reports, so.output)
	}

	printBatchTable(reports)
	for _, r := range reports {
		if r.Error != "" {
			printDetail("%s: %s", r.Input, r.Error)
		}
	}
	return nil
}

// solveOne runs extract and solve for one batch input, capturing failures
// in the report instead of returning them.
func (c *CLI) solveOne(ctx context.Context, runner *pipeline.Runner, input string, opts pipeline.Options) solveReport {
	report := solveReport{Input: input}

	g, _, _, err := c.loadBoard(ctx, runner, input, opts)
	if err != nil {
		report.Error = err.Error()
		return report
	}
	report.GraphHash = g.Signature()
	report.Regions = g.RegionCount()
	report.Colors = g.ColorCount()

	res, hit, err := runner.SolveWithCacheInfo(ctx, g, opts)
	if err != nil {
		report.Error = err.Error()
		return report
	}
	report.CacheHit = hit
	report.Result = res
	return report
}

// printBatchTable prints one row per board with its outcome.
func printBatchTable(reports []solveReport) {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	rows := make([][]string, 0, len(reports))
	for _, r := range reports {
		moves := "-"
		if r.Result.Solved {
			moves = fmt.Sprintf("%d", len(r.Result.Moves))
		}
		rows = append(rows, []string{
			r.Input,
			fmt.Sprintf("%d", r.Regions),
			moves,
			humanCount(r.Result.NodesEvaluated),
			r.Result.Duration.Round(time.Millisecond).String(),
			batchStatus(r),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Board", "Regions", "Moves", "Nodes", "Time", "Status").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			base := lipgloss.NewStyle()
			if row < 0 || row >= len(reports) || col != 5 {
				return base
			}
			r := reports[row]
			switch {
			case r.Result.Solved:
				return base.Foreground(colorGreen)
			case r.Error != "":
				return base.Foreground(colorRed)
			default:
				return base.Foreground(colorYellow)
			}
		})

	fmt.Println(t.Render())
}

// batchStatus summarizes one batch outcome for the table.
func batchStatus(r solveReport) string {
	switch {
	case r.Result.Solved:
		return iconSuccess + " solved"
	case r.Error != "":
		return iconError + " error"
	case r.Result.Cancelled:
		return iconWarning + " timeout"
	default:
		return iconWarning + " no solution"
	}
}
