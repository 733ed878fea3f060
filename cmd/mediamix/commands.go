package main

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gauthierbraillon/mediamix/internal/config"
	"github.com/gauthierbraillon/mediamix/internal/content"
	"github.com/gauthierbraillon/mediamix/internal/generate"
)

// newGenerateCmd creates the generate subcommand.
func newGenerateCmd(root *rootOptions) *cobra.Command {
	var contentType string

	cmd := &cobra.Command{
		Use:   "generate <url>",
		Short: "Request AI content generated from a URL",
		Long:  "Send a URL to the generation workflow. The result appears in the gallery once the workflow adds it to the source.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t := content.Type(strings.ToLower(contentType))
			if err := generate.Validate(args[0], t); err != nil {
				return err
			}

			cfg, log, err := root.load()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			client := generate.NewClient(cfg.Generate.WebhookURL,
				generate.WithHTTPClient(&http.Client{Timeout: cfg.Generate.Timeout}),
				generate.WithLogger(log))
			receipt, err := client.Submit(cmd.Context(), args[0], t)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Content generation started!")
			fmt.Fprintln(cmd.OutOrStdout(), receipt.Message)
			return nil
		},
	}

	cmd.Flags().StringVarP(&contentType, "type", "t", "image", "Content type to generate (image or video)")

	return cmd
}

// newConfigCmd creates the config subcommand.
func newConfigCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show configuration",
		Long:  "Show the effective mediamix configuration and whether it is valid.",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.Path(root.configPath)
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if path == "" {
				path = "(none, using environment)"
			}
			fmt.Fprintf(out, "Config file: %s\n", path)
			fmt.Fprintf(out, "Source: %s\n", cfg.Source.Kind)
			switch cfg.Source.Kind {
			case config.KindSpreadsheet:
				fmt.Fprintf(out, "  url: %s\n  format: %s\n", cfg.Source.Spreadsheet.URL, cfg.Source.Spreadsheet.Format)
			case config.KindBucket:
				fmt.Fprintf(out, "  base_url: %s\n  bucket: %s\n  prefix: %s\n  api_key: %s\n",
					cfg.Source.Bucket.BaseURL, cfg.Source.Bucket.Bucket, cfg.Source.Bucket.Prefix, redact(cfg.Source.Bucket.APIKey))
			case config.KindDrive:
				fmt.Fprintf(out, "  folder_id: %s\n  api_key: %s\n", cfg.Source.Drive.FolderID, redact(cfg.Source.Drive.APIKey))
			}
			if cfg.Poll.Schedule != "" {
				fmt.Fprintf(out, "Poll schedule: %s\n", cfg.Poll.Schedule)
			} else {
				fmt.Fprintf(out, "Poll interval: %s\n", cfg.Poll.Interval)
			}
			fmt.Fprintf(out, "Server address: %s\n", cfg.Server.Addr)
			if cfg.Generate.WebhookURL != "" {
				fmt.Fprintf(out, "Generation webhook: %s\n", cfg.Generate.WebhookURL)
			}

			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			fmt.Fprintln(out, "Configuration is valid.")
			return nil
		},
	}

	return cmd
}

func redact(secret string) string {
	if secret == "" {
		return "(not set)"
	}
	return "********"
}
