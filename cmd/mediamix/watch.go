package main

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/gauthierbraillon/mediamix/internal/config"
	"github.com/gauthierbraillon/mediamix/internal/display"
	"github.com/gauthierbraillon/mediamix/internal/events"
	"github.com/gauthierbraillon/mediamix/internal/gallery"
	"github.com/gauthierbraillon/mediamix/internal/logger"
	"github.com/gauthierbraillon/mediamix/internal/metrics"
	"github.com/gauthierbraillon/mediamix/internal/poller"
	"github.com/gauthierbraillon/mediamix/internal/source"
)

// engine is a poller wired to its source, publisher and metrics.
type engine struct {
	state   *gallery.State
	poller  *poller.Poller
	metrics *metrics.Metrics
	close   func()
}

// newEngine builds the poller for cfg. out receives deltas and notices
// when non-nil.
func newEngine(ctx context.Context, cfg *config.Config, log logger.Logger, reg prometheus.Registerer, out io.Writer) (*engine, error) {
	src, err := newSource(cfg, log)
	if err != nil {
		return nil, err
	}
	schedule, err := poller.ParseSchedule(cfg.Poll.Interval, cfg.Poll.Schedule)
	if err != nil {
		return nil, err
	}

	pub := events.Fanout{events.NewLogPublisher(log)}
	closeFn := func() {}
	if client := events.NewRedisClient(cfg.Events); client != nil {
		pub = append(pub, events.NewRedisPublisher(client, cfg.Events.Channel))
		closeFn = func() { _ = client.Close() }
	}
	publish := events.Handler(ctx, pub, log)

	formatter := display.NewTerminalFormatter()
	m := metrics.New(reg)
	state := gallery.New()
	p := poller.New(src, state,
		poller.WithSchedule(schedule),
		poller.WithFetchTimeout(cfg.Poll.FetchTimeout),
		poller.WithLogger(log),
		poller.WithMetrics(m),
		poller.OnDelta(func(d poller.Delta) {
			if out != nil {
				fmt.Fprint(out, formatter.FormatDelta(d))
			}
			publish(d)
		}),
		poller.OnNotice(func(n poller.Notice) {
			if out != nil {
				fmt.Fprint(out, formatter.FormatNotice(n))
			}
		}),
	)

	return &engine{state: state, poller: p, metrics: m, close: closeFn}, nil
}

func newSource(cfg *config.Config, log logger.Logger) (source.Source, error) {
	return source.New(cfg.Source,
		source.WithHTTPClient(&http.Client{}),
		source.WithLogger(log))
}

// watchConfig reconfigures the poller whenever the config file changes.
func watchConfig(ctx context.Context, path string, log logger.Logger, p *poller.Poller) error {
	return config.Watch(ctx, path, log, func(cfg *config.Config) {
		src, err := newSource(cfg, log)
		if err != nil {
			log.Warn("ignoring reloaded source", logger.Error(err))
			return
		}
		p.Reconfigure(src)
	})
}

// newWatchCmd creates the watch subcommand.
func newWatchCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep the gallery up to date in the terminal",
		Long:  "Load the gallery, then refresh it on the poll interval and print new items as they arrive. Stop with Ctrl+C.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := root.load()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			formatter := display.NewTerminalFormatter()

			e, err := newEngine(ctx, cfg, log, prometheus.NewRegistry(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer e.close()

			updates, unsubscribe := e.state.Subscribe()
			defer unsubscribe()

			if err := e.poller.Start(ctx); err != nil {
				return err
			}
			defer e.poller.Stop()

			g, gctx := errgroup.WithContext(ctx)
			if path := config.Path(root.configPath); path != "" {
				g.Go(func() error { return watchConfig(gctx, path, log, e.poller) })
			}
			g.Go(func() error {
				select {
				case snap := <-updates:
					fmt.Fprint(out, formatter.FormatGallery(snap.Items))
				case <-gctx.Done():
					return nil
				}
				<-gctx.Done()
				return nil
			})
			return g.Wait()
		},
	}

	return cmd
}
