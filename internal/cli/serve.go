package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/zonemap/internal/server"
	"github.com/matzehuels/zonemap/pkg/buildinfo"
	"github.com/matzehuels/zonemap/pkg/cache"
	"github.com/matzehuels/zonemap/pkg/config"
	"github.com/matzehuels/zonemap/pkg/observability"
	"github.com/matzehuels/zonemap/pkg/observability/prom"
	"github.com/matzehuels/zonemap/pkg/pipeline"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		flags     chartFlags
		addr      string
		noCache   bool
		noMetrics bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API.

  POST /v1/render?format=svg   CSV body in, chart out
  POST /v1/check               CSV body in, table report out
  GET  /v1/zones               rule sets and their coverage
  GET  /healthz                liveness
  GET  /metrics                Prometheus metrics

Chart flags and the config file set the defaults; query parameters
(title, preset, size_scale, width, height, scale, axis_min, axis_max,
hide_grid, hide_boundaries, hide_zone_labels, refresh) override them per
request.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, defaults, err := c.chartOptions(cmd, &flags)
			if err != nil {
				return err
			}
			probe := defaults
			if err := probe.ValidateAndSetDefaults(); err != nil {
				return err
			}
			if !cmd.Flags().Changed("addr") && cfg.Server.Addr != "" {
				addr = cfg.Server.Addr
			}

			cc, err := c.newCache(cfg, noCache)
			if err != nil {
				return fmt.Errorf("initialize cache: %w", err)
			}
			runner := pipeline.NewRunner(cc, cache.NewScopedKeyer(nil, "api:"), c.Logger)
			defer runner.Close()

			srvCfg := server.Config{
				Runner:   runner,
				Defaults: defaults,
				Logger:   c.Logger,
				MaxBody:  cfg.Server.MaxBody,
				Version:  buildinfo.Version,
			}
			if !noMetrics {
				m := prom.New(appName)
				observability.SetPipelineHooks(m)
				observability.SetCacheHooks(m)
				observability.SetHTTPHooks(m)
				defer observability.Reset()
				srvCfg.Metrics = m.Handler()
			}

			return server.New(srvCfg).ListenAndServe(cmd.Context(), addr)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&addr, "addr", config.DefaultAddr, "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "do not serve /metrics")
	return cmd
}
