package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chrsmith/kami2-solver/internal/server"
	"github.com/chrsmith/kami2-solver/pkg/config"
)

// serveCommand creates the serve command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP solving API",
		Long: `Run the HTTP API backing non-CLI clients.

The API exposes the same pipeline as the CLI:

  POST /api/extract    screenshot to region graph
  POST /api/solve      synchronous solve
  POST /api/jobs       asynchronous solve job
  GET  /api/jobs/{id}  job status and result
  GET  /healthz        liveness probe

The server shares the CLI's result cache, so boards solved on the
command line are already warm for API clients.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") && c.Config.Server.Addr != "" {
				addr = c.Config.Server.Addr
			}
			return c.runServe(cmd.Context(), addr, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", config.DefaultAddr, "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// runServe starts the API server and blocks until the context is cancelled
// or the listener fails.
func (c *CLI) runServe(ctx context.Context, addr string, noCache bool) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	srv := server.New(runner, c.Logger, server.Options{
		JobTTL: c.Config.Server.JobTTL.Duration,
	})
	return srv.ListenAndServe(ctx, addr)
}
