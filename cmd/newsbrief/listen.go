package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

func listenCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "listen",
		Short: "Annotate briefs as their notifications arrive",
		Long:  `Subscribe to the configured NOTIFY_BACKEND and annotate each new brief as soon as it is announced. Runs until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*envFile)
			if err != nil {
				return err
			}
			client, logger, err := openClient(cfg, "listen")
			if err != nil {
				return err
			}
			defer closeClient(client, logger)

			ctx, stop := signalContext()
			defer stop()

			if err := client.Warmup(ctx); err != nil {
				logger.Warn("model warmup failed", slog.String("error", err.Error()))
			}
			return client.Listen(ctx)
		},
	}
}
