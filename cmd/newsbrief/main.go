// Package main is the entry point for the newsbrief CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/helixml/newsbrief"
	"github.com/helixml/newsbrief/internal/config"
	"github.com/helixml/newsbrief/internal/log"
	"github.com/spf13/cobra"
)

// Version information set via ldflags during build.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:           "newsbrief",
		Short:         "Financial news brief scraper and sentiment service",
		Long:          `newsbrief scrapes short financial news briefs, stores each once, annotates them with company names and sentiment, and serves them over HTTP.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")

	cmd.AddCommand(serveCmd(&envFile))
	cmd.AddCommand(scrapeCmd(&envFile))
	cmd.AddCommand(annotateCmd(&envFile))
	cmd.AddCommand(listenCmd(&envFile))
	cmd.AddCommand(downloadModelsCmd())
	cmd.AddCommand(versionCmd())

	return cmd
}

// loadConfig loads configuration from the .env file and environment
// variables, applies flag overrides, and validates the result.
func loadConfig(envFile string, overrides ...config.AppConfigOption) (config.AppConfig, error) {
	cfg, err := config.LoadConfig(envFile)
	if err != nil {
		return config.AppConfig{}, fmt.Errorf("load config: %w", err)
	}
	cfg = cfg.Apply(overrides...)
	if err := cfg.Validate(); err != nil {
		if errors.Is(err, config.ErrMissingDatabaseURL) {
			return config.AppConfig{}, fmt.Errorf("%w: set it in the environment or the .env file", err)
		}
		return config.AppConfig{}, err
	}
	return cfg, nil
}

// openClient configures logging and builds the client for cfg.
func openClient(cfg config.AppConfig, command string) (*newsbrief.Client, *slog.Logger, error) {
	logger := log.Configure(cfg)

	attrs := append([]slog.Attr{
		slog.String("version", version),
		slog.String("command", command),
	}, cfg.LogAttrs()...)
	logger.LogAttrs(context.Background(), slog.LevelInfo, "starting newsbrief", attrs...)

	client, err := newsbrief.New(
		newsbrief.WithConfig(cfg),
		newsbrief.WithLogger(logger),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("create newsbrief client: %w", err)
	}
	return client, logger, nil
}

func closeClient(client *newsbrief.Client, logger *slog.Logger) {
	if err := client.Close(); err != nil {
		logger.Error("failed to close newsbrief client", slog.Any("error", err))
	}
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
