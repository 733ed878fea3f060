// Package main provides the mediamix CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gauthierbraillon/mediamix/internal/config"
	"github.com/gauthierbraillon/mediamix/internal/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// resolveVersion prefers the ldflags version and falls back to the module
// version recorded by go install.
func resolveVersion(ldflagsVersion string, info *debug.BuildInfo) string {
	if ldflagsVersion != "dev" {
		return ldflagsVersion
	}
	if info == nil || info.Main.Version == "" || info.Main.Version == "(devel)" {
		return "dev"
	}
	return info.Main.Version
}

func buildInfo() *debug.BuildInfo {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return nil
	}
	return info
}

// rootOptions holds the persistent flags.
type rootOptions struct {
	configPath string
	logLevel   string
}

// newRootCmd creates the root command for mediamix CLI.
func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:          "mediamix",
		Short:        "Browse an AI-media gallery from a spreadsheet, bucket or drive folder",
		Long:         "Mediamix aggregates generated images, videos and documents from one configured source into a live gallery.",
		Version:      resolveVersion(version, buildInfo()),
		SilenceUsage: true,
	}

	rootCmd.SetVersionTemplate("mediamix version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to YAML config file (or MEDIAMIX_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(newFetchCmd(opts))
	rootCmd.AddCommand(newWatchCmd(opts))
	rootCmd.AddCommand(newServeCmd(opts))
	rootCmd.AddCommand(newGenerateCmd(opts))
	rootCmd.AddCommand(newOpenCmd(opts))
	rootCmd.AddCommand(newConfigCmd(opts))

	return rootCmd
}

// load reads and validates the configuration and builds the logger.
func (o *rootOptions) load() (*config.Config, logger.Logger, error) {
	cfg, err := config.Load(config.Path(o.configPath))
	if err != nil {
		return nil, nil, err
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("create logger: %w", err)
	}
	return cfg, log, nil
}
