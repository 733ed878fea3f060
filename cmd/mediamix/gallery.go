package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/gauthierbraillon/mediamix/internal/config"
	"github.com/gauthierbraillon/mediamix/internal/content"
	"github.com/gauthierbraillon/mediamix/internal/display"
	"github.com/gauthierbraillon/mediamix/internal/gallery"
	"github.com/gauthierbraillon/mediamix/internal/logger"
	"github.com/gauthierbraillon/mediamix/internal/normalize"
	"github.com/gauthierbraillon/mediamix/internal/source"
	"github.com/gauthierbraillon/mediamix/pkg/browser"
)

// loadGallery fetches the configured source once. A listing that cannot be
// parsed yields an empty gallery and a warning instead of an error.
func loadGallery(ctx context.Context, cfg *config.Config, log logger.Logger, warn io.Writer) (*gallery.State, error) {
	src, err := source.New(cfg.Source,
		source.WithHTTPClient(&http.Client{Timeout: cfg.Poll.FetchTimeout}),
		source.WithLogger(log))
	if err != nil {
		return nil, err
	}

	fetchCtx, cancel := context.WithTimeout(ctx, cfg.Poll.FetchTimeout)
	defer cancel()

	records, err := src.Fetch(fetchCtx)
	switch {
	case content.IsParse(err):
		fmt.Fprintf(warn, "warning: %v\n", err)
		records = nil
	case err != nil:
		return nil, describe(src.Name(), err)
	}

	state := gallery.New()
	state.Replace(normalize.New(normalize.WithLogger(log)).Normalize(records, src.Policy()))
	return state, nil
}

// describe turns adapter errors into messages for the terminal.
func describe(sourceName string, err error) error {
	var cfgErr *content.ConfigurationError
	if errors.As(err, &cfgErr) {
		return fmt.Errorf("%s is not configured: %s %s", sourceName, cfgErr.Field, cfgErr.Reason)
	}
	return fmt.Errorf("could not load %s: %w", sourceName, err)
}

// newFetchCmd creates the fetch subcommand.
func newFetchCmd(root *rootOptions) *cobra.Command {
	var types []string
	var limit int
	var format string

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Display the gallery once",
		Long:  "Fetch the configured source once and display the resulting gallery.",
		RunE: func(cmd *cobra.Command, args []string) error {
			view := gallery.ViewOptions{Limit: limit}
			for _, raw := range types {
				t, ok := content.ParseType(raw)
				if !ok {
					return fmt.Errorf("invalid type %q: must be image, video or text", raw)
				}
				view.Types = append(view.Types, t)
			}

			cfg, log, err := root.load()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			state, err := loadGallery(cmd.Context(), cfg, log, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			formatter := display.NewTerminalFormatter()
			out := cmd.OutOrStdout()
			switch format {
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(state.View(view))
			case "table":
				formatter.RenderTable(out, state.View(view))
			case "columns":
				fmt.Fprint(out, formatter.FormatPartitions(state.Partition()))
			case "list":
				fmt.Fprint(out, formatter.FormatGallery(state.View(view)))
			default:
				return fmt.Errorf("invalid format %q: must be list, table, columns or json", format)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&types, "type", "t", nil, "Filter by type (image, video, text)")
	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "Maximum number of items to display (0 for all)")
	cmd.Flags().StringVarP(&format, "format", "f", "list", "Output format (list, table, columns, json)")

	return cmd
}

// newOpenCmd creates the open subcommand.
func newOpenCmd(root *rootOptions) *cobra.Command {
	var printOnly bool

	cmd := &cobra.Command{
		Use:   "open <id>",
		Short: "Open a gallery item in the browser",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := root.load()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			state, err := loadGallery(cmd.Context(), cfg, log, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			for _, item := range state.Items() {
				if item.ID != args[0] {
					continue
				}
				if printOnly {
					fmt.Fprintln(cmd.OutOrStdout(), item.URL)
					return nil
				}
				if err := browser.New().Open(item.URL); err != nil {
					return fmt.Errorf("could not open %s: %w", item.Name, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Opening %s...\n", item.Name)
				return nil
			}
			return fmt.Errorf("%w: %s", content.ErrItemNotFound, args[0])
		},
	}

	cmd.Flags().BoolVar(&printOnly, "print", false, "Print the item URL instead of opening it")

	return cmd
}
