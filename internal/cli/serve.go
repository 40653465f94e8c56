package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/kgview/internal/server"
	"github.com/matzehuels/kgview/pkg/format"
	"github.com/matzehuels/kgview/pkg/metrics"
	"github.com/matzehuels/kgview/pkg/observability"
)

func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		noMetrics bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the transform and format API over HTTP",
		Long: `Serve the kgview HTTP API.

Routes:
  GET  /health
  POST /v1/graph/transform
  GET  /v1/knowledge/{id}/graph
  GET  /v1/knowledge/{id}/snapshots
  GET  /v1/snapshots/{id}
  GET  /v1/format/{amount,score,timestamp,filesize}
  GET  /metrics`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if addr == "" {
				addr = c.Config.Server.Addr
			}
			loc, err := c.Config.Location()
			if err != nil {
				return err
			}

			svc, err := c.newServices(ctx, false)
			if err != nil {
				return err
			}
			defer svc.close(ctx)

			opts := server.Options{
				Runner:          svc.runner,
				Snapshots:       svc.snapshots,
				Logger:          c.Logger,
				Units:           format.Units(c.Config.Format.Units),
				TimestampLayout: c.Config.Format.TimestampLayout,
				Location:        loc,
				ReadTimeout:     c.Config.Server.ReadTimeout.Std(),
				WriteTimeout:    c.Config.Server.WriteTimeout.Std(),
			}
			if !noMetrics {
				reg := metrics.NewRegistry()
				reg.Install()
				if c.verbose {
					observability.SetPipelineHooks(observability.Fanout{reg, logHooks{logger: c.Logger}})
				}
				opts.Metrics = reg
			}
			if svc.runner.Fetcher == nil {
				printWarning("No api.base_url configured; /v1/knowledge routes will fail")
			}
			printInfo("Serving on %s", StyleLink.Render("http://"+addr))
			return server.New(opts).ListenAndServe(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "disable the /metrics endpoint")
	return cmd
}
