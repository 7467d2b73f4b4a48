package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chrsmith/kami2-solver/pkg/cache"
	"github.com/chrsmith/kami2-solver/pkg/config"
)

// cacheCommand creates the cache management command. The subcommands
// operate on the local file backend; redis and mongo backends expire
// entries on their own.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the local result cache",
	}

	cmd.AddCommand(c.cacheInfoCommand())
	cmd.AddCommand(c.cachePruneCommand())
	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// fileCache opens the file cache at the configured directory.
func (c *CLI) fileCache() (*cache.FileCache, error) {
	dir := c.cacheDir()
	if dir == "" {
		return nil, fmt.Errorf("no cache directory configured")
	}
	return cache.NewFileCache(dir)
}

// cacheInfoCommand creates the "cache info" subcommand.
func (c *CLI) cacheInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show cache location and size",
		RunE: func(cmd *cobra.Command, args []string) error {
			fc, err := c.fileCache()
			if err != nil {
				return err
			}
			stats, err := fc.Stats()
			if err != nil {
				return fmt.Errorf("read cache stats: %w", err)
			}

			printKeyValue("Directory", c.cacheDir())
			printKeyValue("Backend", c.Config.Cache.Backend)
			printKeyValue("Entries", fmt.Sprintf("%d", stats.Entries))
			printKeyValue("Size", humanBytes(stats.Bytes))

			if b := c.Config.Cache.Backend; b == config.BackendRedis || b == config.BackendMongo {
				printNewline()
				printDetail("Results are stored in the %s backend; these numbers cover the local file cache only.", b)
			}
			return nil
		},
	}
}

// cachePruneCommand creates the "cache prune" subcommand.
func (c *CLI) cachePruneCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Remove expired cache entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			fc, err := c.fileCache()
			if err != nil {
				return err
			}
			removed, err := fc.Prune()
			if err != nil {
				return fmt.Errorf("prune cache: %w", err)
			}
			printSuccess("Removed %d expired entries", removed)
			printDetail("Directory: %s", c.cacheDir())
			return nil
		},
	}
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached results",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := c.cacheDir()
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				printInfo("Cache is empty")
				return nil
			}

			fc, err := c.fileCache()
			if err != nil {
				return err
			}
			removed, err := fc.Clear()
			if err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}
			printSuccess("Cleared %d cached entries", removed)
			printDetail("Directory: %s", dir)
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := c.cacheDir()
			if dir == "" {
				return fmt.Errorf("no cache directory configured")
			}
			fmt.Println(dir)
			return nil
		},
	}
}

// humanBytes formats a byte count with a binary unit suffix.
func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
