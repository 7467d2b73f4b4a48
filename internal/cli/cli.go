// Package cli implements the kami2solver command-line interface.
package cli

import (
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/chrsmith/kami2-solver/pkg/buildinfo"
	"github.com/chrsmith/kami2-solver/pkg/cache"
	"github.com/chrsmith/kami2-solver/pkg/config"
	"github.com/chrsmith/kami2-solver/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "kami2solver"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config config.Config

	configPath string
}

// New creates a new CLI instance with a default logger and the built-in
// configuration. The config file is loaded when the root command runs.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "kami2solver",
		Short:        "Kami2solver finds flood-fill solutions for KAMI 2 puzzles",
		Long:         `Kami2solver reads KAMI 2 puzzle screenshots, reduces them to region graphs, and searches for the shortest sequence of recoloring moves that floods the whole board to a single color.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: ~/.config/kami2solver/config.toml)")
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(c.configPath)
		if err != nil {
			return err
		}
		c.Config = cfg
		cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		return nil
	}

	// Register all subcommands
	root.AddCommand(c.extractCommand())
	root.AddCommand(c.solveCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	store, err := c.newCache(noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(store, nil, c.Logger), nil
}

// newCache builds the cache backend selected in the configuration file.
// Remote backends fail loudly when misconfigured; the file backend falls
// back to a no-op cache when no directory can be determined.
func (c *CLI) newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	cfg := c.Config.Cache
	switch cfg.Backend {
	case config.BackendNull:
		return cache.NewNullCache(), nil
	case config.BackendRedis:
		return cache.NewRedisCache(cfg.RedisURL)
	case config.BackendMongo:
		return cache.NewMongoCache(cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
	default:
		dir := c.cacheDir()
		if dir == "" {
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the directory backing the file cache, preferring the
// configured location over the XDG default (~/.cache/kami2solver/).
func (c *CLI) cacheDir() string {
	if c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir
	}
	return config.DefaultCacheDir()
}

// =============================================================================
// Options Helpers
// =============================================================================

// applyExtractConfig fills extract options from the config file for every
// flag the user did not set on the command line. Flags beat the file, the
// file beats built-in defaults.
func (c *CLI) applyExtractConfig(cmd *cobra.Command, opts *pipeline.Options) {
	cfg := c.Config.Extract
	flags := cmd.Flags()
	if !flags.Changed("columns") && cfg.Columns > 0 {
		opts.Columns = cfg.Columns
	}
	if !flags.Changed("rows") && cfg.Rows > 0 {
		opts.Rows = cfg.Rows
	}
	if !flags.Changed("tolerance") && cfg.Tolerance > 0 {
		opts.Tolerance = cfg.Tolerance
	}
	if !flags.Changed("top-inset") && cfg.TopInset > 0 {
		opts.TopInset = cfg.TopInset
	}
	if !flags.Changed("bottom-inset") && cfg.BottomInset > 0 {
		opts.BottomInset = cfg.BottomInset
	}
}

// applySolveConfig fills solve options from the config file, with the same
// precedence as applyExtractConfig.
func (c *CLI) applySolveConfig(cmd *cobra.Command, opts *pipeline.Options) {
	cfg := c.Config.Solver
	flags := cmd.Flags()
	if !flags.Changed("max-moves") && cfg.MaxMoves > 0 {
		opts.MaxMoves = cfg.MaxMoves
	}
	if !flags.Changed("timeout") && cfg.Timeout.Duration > 0 {
		opts.Timeout = cfg.Timeout.Duration
	}
	if !flags.Changed("merge-regions") && cfg.MergeRegions > 0 {
		opts.Weights.MergeRegions = cfg.MergeRegions
	}
	if !flags.Changed("merge-cells") && cfg.MergeCells > 0 {
		opts.Weights.MergeCells = cfg.MergeCells
	}
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatDOT}
	}
	return strings.Split(s, ",")
}
