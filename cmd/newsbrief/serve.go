package main

import (
	"context"
	"log/slog"

	"github.com/helixml/newsbrief/application/service"
	"github.com/helixml/newsbrief/internal/config"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func serveCmd(envFile *string) *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server and background loops",
		Long: `Start the HTTP server and, depending on configuration, the periodic
scraper and the annotation loop.

Configuration is loaded in the following order (later sources override earlier):
  1. Default values
  2. .env file (if --env-file specified or .env exists in current directory)
  3. Environment variables
  4. Command line flags

Environment variables:
  DATABASE_URL                 postgres://..., postgresql://... or sqlite:///path (required)
  HOST                         Server host to bind to (default: 0.0.0.0)
  PORT                         Server port to listen on (default: 10000)
  LOG_LEVEL                    Log level: DEBUG, INFO, WARN, ERROR (default: INFO)
  LOG_FORMAT                   Log format: pretty, json (default: pretty)
  TRIGGER_SECRET               Shared secret for POST /run-analysis

  MIN_BRIEF_LENGTH             Keep briefs longer than this (default: 180)
  MAX_BRIEF_LENGTH             Drop briefs longer than this, 0 = off (default: 0)
  MAX_BRIEF_AGE_SECONDS        Drop older briefs, 0 = off (default: 0)
  MAX_ENTRIES                  Retention bound on stored briefs (default: 300)
  ANNOTATION_BATCH_SIZE        Briefs per annotation pass (default: 5)

  ANNOTATE_MODE                trigger, poll or listen (default: trigger)
  ANNOTATE_POLL_INTERVAL_SECONDS  Poll period (default: 300)
  SCRAPE_INTERVAL_SECONDS      In-process scrape period, 0 = off (default: 0)

  SCRAPER_*                    URL, SECTIONS, USER_AGENT, NAVIGATION_TIMEOUT_SECONDS,
                               WAIT_TIMEOUT_SECONDS, SCREENSHOT_PATH, EXECUTABLE_PATH
  MODEL_NER_PATH               Token classification model (default: models/ner)
  MODEL_SENTIMENT_PATH         Text classification model (default: models/sentiment)
  NOTIFY_*                     BACKEND (none, postgres, nats, redis), CHANNEL,
                               NATS_URL, REDIS_URL, LIVENESS_TIMEOUT_SECONDS`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(*envFile, host, port)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "Server host to bind to (default: 0.0.0.0)")
	cmd.Flags().IntVar(&port, "port", 0, "Server port to listen on (default: 10000)")

	return cmd
}

func runServe(envFile, host string, port int) error {
	cfg, err := loadConfig(envFile, serveOverrides(host, port)...)
	if err != nil {
		return err
	}

	client, logger, err := openClient(cfg, "serve")
	if err != nil {
		return err
	}
	defer closeClient(client, logger)

	ctx, stop := signalContext()
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return client.APIServer().Run(gctx, cfg.Addr())
	})

	scrape := service.NewPeriodic("scrape", cfg.Scraper().Interval(), func(ctx context.Context) error {
		_, err := client.Scrape.Run(ctx)
		return err
	}, logger)
	if scrape.Enabled() {
		g.Go(func() error { return scrape.Run(gctx) })
	}

	switch cfg.AnnotateMode() {
	case config.AnnotateModePoll:
		annotate := service.NewPeriodic("annotate", cfg.AnnotatePollInterval(), func(ctx context.Context) error {
			_, err := client.Annotator.RunBatch(ctx, 0)
			return err
		}, logger)
		g.Go(func() error { return annotate.Run(gctx) })
	case config.AnnotateModeListen:
		g.Go(func() error {
			if err := client.Listen(gctx); err != nil {
				logger.Error("listener stopped, notifications are not annotated", slog.String("error", err.Error()))
			}
			return nil
		})
	case config.AnnotateModeTrigger:
		logger.Info("annotation runs on POST /run-analysis")
	}

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("shutdown complete", slog.String("addr", cfg.Addr()))
	return nil
}

// serveOverrides turns command line flags into config options.
func serveOverrides(host string, port int) []config.AppConfigOption {
	var opts []config.AppConfigOption
	if host != "" {
		opts = append(opts, config.WithHost(host))
	}
	if port != 0 {
		opts = append(opts, config.WithPort(port))
	}
	return opts
}
