package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func annotateCmd(envFile *string) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "annotate",
		Short: "Run one bounded annotation pass",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*envFile)
			if err != nil {
				return err
			}
			client, logger, err := openClient(cfg, "annotate")
			if err != nil {
				return err
			}
			defer closeClient(client, logger)

			ctx, stop := signalContext()
			defer stop()

			result, err := client.Annotator.RunBatch(ctx, limit)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "processed %d, failed %d\n", result.Processed, result.Failed)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum briefs to annotate (default: ANNOTATION_BATCH_SIZE)")

	return cmd
}
