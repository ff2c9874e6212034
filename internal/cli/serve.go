package cli

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/meteomap/internal/server"
	"github.com/matzehuels/meteomap/pkg/editor"
	"github.com/matzehuels/meteomap/pkg/export"
	"github.com/matzehuels/meteomap/pkg/interact"
	"github.com/matzehuels/meteomap/pkg/observability"
)

// serveOptions holds configuration for the serve command.
type serveOptions struct {
	addr       string
	noAutosave bool
}

// serveCommand creates the serve command for the HTTP editing service.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve an editing session over HTTP",
		Long: `Serve one editing session over HTTP.

The session starts from the last autosave and is autosaved while it runs.
Prometheus metrics are exposed on /metrics.`,
		Example: `  meteomap serve
  meteomap serve --addr 127.0.0.1:9000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (overrides config)")
	cmd.Flags().BoolVar(&opts.noAutosave, "no-autosave", false, "disable periodic autosave")

	return cmd
}

// runServe runs the HTTP server until ctx is cancelled.
func (c *CLI) runServe(ctx context.Context, opts serveOptions) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}
	cat, err := c.catalog(cfg)
	if err != nil {
		return err
	}
	store, err := c.openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	observability.Install(observability.NewMetrics(reg))

	doc, err := c.startDocument(ctx, "", store)
	if err != nil {
		return err
	}
	sessionOpts := []editor.Option{}
	if doc != nil {
		sessionOpts = append(sessionOpts, editor.WithDocument(*doc))
	}
	machine := interact.New(editor.New(cat, sessionOpts...), interact.WithLogger(c.Logger))

	srv := server.New(machine,
		server.WithLogger(c.Logger),
		server.WithRasterizer(export.NewRasterizer()),
		server.WithExport(server.ExportSettings{
			Width:      cfg.Export.Width,
			PixelRatio: cfg.Export.PixelRatio,
			Fill:       cfg.Export.Fill,
		}),
		server.WithMetricsHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
	)

	addr := cfg.Server.Addr
	if opts.addr != "" {
		addr = opts.addr
	}

	saver := newAutosaver(cfg, store, srv.Snapshot, opts.noAutosave, c.Logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx, addr, cfg.Server.ShutdownTimeout)
	})
	if saver != nil {
		saver.Start(gctx)
	}
	runErr := g.Wait()

	if saver != nil {
		saver.Stop()
		if err := saver.SaveNow(context.WithoutCancel(ctx)); err != nil {
			c.Logger.Warn("final autosave failed", "err", err)
		}
	}
	return runErr
}
