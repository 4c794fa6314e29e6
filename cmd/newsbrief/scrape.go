package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func scrapeCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "scrape",
		Short: "Run one scrape-and-save cycle",
		Long:  `Fetch the configured sections once, store new briefs, and announce them on the notify backend. Suitable for cron.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*envFile)
			if err != nil {
				return err
			}
			client, logger, err := openClient(cfg, "scrape")
			if err != nil {
				return err
			}
			defer closeClient(client, logger)

			ctx, stop := signalContext()
			defer stop()

			result, err := client.Scrape.Run(ctx)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "fetched %d, kept %d, inserted %d, skipped %d, failed %d\n",
				result.Fetched, result.Kept, len(result.Saved.Inserted), result.Saved.Skipped, result.Saved.Failed)
			return nil
		},
	}
}
