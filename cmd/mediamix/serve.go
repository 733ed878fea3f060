package main

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/gauthierbraillon/mediamix/internal/config"
	"github.com/gauthierbraillon/mediamix/internal/generate"
	"github.com/gauthierbraillon/mediamix/internal/logger"
	"github.com/gauthierbraillon/mediamix/internal/server"
)

// newServeCmd creates the serve subcommand.
func newServeCmd(root *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the live gallery over HTTP",
		Long:  "Keep the gallery up to date and expose it, manual refresh and generation requests through an HTTP API.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := root.load()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()
			if addr != "" {
				cfg.Server.Addr = addr
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)

			g, ctx := errgroup.WithContext(cmd.Context())

			e, err := newEngine(ctx, cfg, log, reg, nil)
			if err != nil {
				return err
			}
			defer e.close()

			opts := []server.Option{
				server.WithLogger(log),
				server.WithMetrics(e.metrics),
				server.WithGatherer(reg),
				server.WithRefresher(e.poller),
			}
			if cfg.Generate.WebhookURL != "" {
				opts = append(opts, server.WithGenerator(generate.NewClient(cfg.Generate.WebhookURL,
					generate.WithHTTPClient(&http.Client{Timeout: cfg.Generate.Timeout}),
					generate.WithLogger(log),
					generate.WithMetrics(e.metrics),
					generate.OnDelivered(func() { e.poller.TriggerNow() }),
				)))
			}
			srv := server.New(server.Config{
				Addr:    cfg.Server.Addr,
				Debug:   cfg.Server.Debug,
				Version: cmd.Root().Version,
			}, e.state, opts...)

			if err := e.poller.Start(ctx); err != nil {
				return err
			}
			defer e.poller.Stop()

			g.Go(srv.Start)
			g.Go(func() error {
				<-ctx.Done()
				return srv.Shutdown(context.Background())
			})
			if path := config.Path(root.configPath); path != "" {
				g.Go(func() error { return watchConfig(ctx, path, log, e.poller) })
			}

			log.Info("mediamix serving", logger.String("address", cfg.Server.Addr), logger.String("source", cfg.Source.Kind))
			return g.Wait()
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (overrides server.addr)")

	return cmd
}
