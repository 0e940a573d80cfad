package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/bjoernmichaelsen/ghdepup/internal/server"
	"github.com/bjoernmichaelsen/ghdepup/pkg/kv"
	"github.com/bjoernmichaelsen/ghdepup/pkg/observability"
	"github.com/bjoernmichaelsen/ghdepup/pkg/pipeline"
)

const defaultAddr = "127.0.0.1:8080"

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		source = defaultSourceOpts(cacheFile)
		addr   string
	)

	cmd := &cobra.Command{
		Use:   "serve <config>...",
		Short: "Serve dependency resolutions over HTTP",
		Long: `Start an HTTP server that resolves the dependencies declared in the
config files on every API request. The files are re-read each time.

Routes:
  GET /healthz
  GET /metrics
  GET /api/v1/dependencies
  GET /api/v1/dependencies/{name}`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), args, &source, addr)
		},
	}

	source.register(cmd)
	cmd.Flags().StringVar(&addr, "addr", defaultAddr, "listen address")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, inputs []string, source *sourceOpts, addr string) error {
	runner, closeCache, err := c.newRunner(ctx, source)
	if err != nil {
		return err
	}
	defer closeCache()

	metrics := observability.NewMetrics()
	observability.SetPipelineHooks(metrics)
	observability.SetCacheHooks(metrics)
	observability.SetHTTPHooks(metrics)
	defer observability.Reset()

	srv := server.New(server.Config{
		Resolver: configResolver(runner, inputs),
		Metrics:  metrics.Handler(),
		Logger:   runner.Logger,
	})
	return srv.ListenAndServe(ctx, addr)
}

// configResolver resolves the dependencies declared in inputs, reading the
// files on every call.
func configResolver(runner *pipeline.Runner, inputs []string) server.ResolverFunc {
	return func(ctx context.Context) (*pipeline.Result, error) {
		store, err := kv.ReadFiles(inputs...)
		if err != nil {
			return nil, err
		}
		return runner.Resolve(ctx, store)
	}
}
