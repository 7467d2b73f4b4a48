package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chrsmith/kami2-solver/pkg/extract"
	"github.com/chrsmith/kami2-solver/pkg/pipeline"
	"github.com/chrsmith/kami2-solver/pkg/puzzle"
)

// extractCommand creates the extract command for turning screenshots into
// region graphs.
func (c *CLI) extractCommand() *cobra.Command {
	var (
		output  string
		noCache bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "extract [screenshot.png]",
		Short: "Extract a region graph from a puzzle screenshot",
		Long: `Extract a region graph from a KAMI 2 puzzle screenshot.

The screenshot is sampled on the game's triangle grid, samples are
clustered into a palette, and connected same-color cells are merged
into regions. The output is a graph.json document that 'solve' and
'render' accept directly.

Results are cached locally keyed by image content, so repeat runs are
instant. Use --refresh to force re-extraction.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c.applyExtractConfig(cmd, &opts)
			return c.runExtract(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	// Common flags
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, '-' for stdout (default: <input>.graph.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "bypass cache reads")

	// Grid flags
	cmd.Flags().IntVar(&opts.Columns, "columns", extract.DefaultColumns, "grid columns")
	cmd.Flags().IntVar(&opts.Rows, "rows", extract.DefaultRows, "grid rows")
	cmd.Flags().IntVar(&opts.Tolerance, "tolerance", extract.DefaultTolerance, "RGB distance treated as the same color")
	cmd.Flags().IntVar(&opts.TopInset, "top-inset", 0, "pixels to crop off the top before sampling")
	cmd.Flags().IntVar(&opts.BottomInset, "bottom-inset", 0, "pixels to crop off the bottom (in-game palette bar)")
	cmd.Flags().IntVar(&opts.MaxColors, "max-colors", extract.DefaultMaxColors, "maximum palette size")

	return cmd
}

// runExtract reads the screenshot, extracts the region graph, and writes
// the graph document.
func (c *CLI) runExtract(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Screenshot = input
	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, "Reading board...")
	spinner.Start()

	g, palette, cacheHit, err := runner.ExtractWithCacheInfo(ctx, opts)
	if err != nil {
		spinner.StopWithError("Extraction failed")
		return fmt.Errorf("extract %s: %w", input, err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	if output == "-" {
		return puzzle.WriteJSON(puzzle.FromGraph(g, palette), os.Stdout)
	}

	outputPath := output
	if outputPath == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		outputPath = base + ".graph.json"
	}

	if err := puzzle.ExportJSON(g, palette, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Board extracted")
	printFile(outputPath)
	printStats(g.RegionCount(), g.ColorCount(), cacheHit)
	printNewline()
	printNextStep("Solve", appName+" solve "+outputPath)

	return nil
}
