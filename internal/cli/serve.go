package cli

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/layerspec/pkg/server"
)

const shutdownTimeout = 10 * time.Second

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	addr := os.Getenv(EnvAddr)
	if addr == "" {
		addr = server.DefaultAddr
	}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the rewrite pipeline over HTTP",
		Long: `Serve the rewrite pipeline over HTTP.

Endpoints:
  POST /v1/rewrite   {"spec": {...}, "plugins": [...], "config": {"layers": {...}}}
  POST /v1/check     a chart spec
  GET  /v1/plugins   registered plugins
  GET  /v1/version   build information
  GET  /healthz      liveness probe

The listen address defaults to $LAYERSPEC_ADDR, else :8080.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", addr, "listen address")

	return cmd
}

// runServe serves until ctx is cancelled, then shuts down gracefully.
func (c *CLI) runServe(ctx context.Context, addr string) error {
	logger := loggerFromContext(ctx).WithPrefix("server")
	srv := server.New(addr, server.NewHandler(logger), logger)

	errc := make(chan error, 1)
	go func() { errc <- srv.Start() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errc
}
