package main

import (
	"fmt"
	"os"

	"github.com/knights-analytics/hugot"
	"github.com/spf13/cobra"
)

// Default Hugging Face repositories with ONNX exports usable by the built-in analyzer.
const (
	defaultNERModel       = "KnightsAnalytics/distilbert-NER"
	defaultSentimentModel = "KnightsAnalytics/distilbert-base-uncased-finetuned-sst-2-english"
)

func downloadModelsCmd() *cobra.Command {
	var (
		dest           string
		nerModel       string
		sentimentModel string
	)

	cmd := &cobra.Command{
		Use:   "download-models",
		Short: "Download the NER and sentiment ONNX models",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := os.MkdirAll(dest, 0o755); err != nil {
				return fmt.Errorf("create directory: %w", err)
			}

			out := cmd.OutOrStdout()
			paths := make(map[string]string, 2)
			for _, m := range []struct{ env, name string }{
				{"MODEL_NER_PATH", nerModel},
				{"MODEL_SENTIMENT_PATH", sentimentModel},
			} {
				_, _ = fmt.Fprintf(out, "Downloading %s to %s...\n", m.name, dest)
				path, err := hugot.DownloadModel(m.name, dest, hugot.NewDownloadOptions())
				if err != nil {
					return fmt.Errorf("download %s: %w", m.name, err)
				}
				paths[m.env] = path
			}

			_, _ = fmt.Fprintln(out, "Models downloaded. Configure:")
			_, _ = fmt.Fprintf(out, "  MODEL_NER_PATH=%s\n", paths["MODEL_NER_PATH"])
			_, _ = fmt.Fprintf(out, "  MODEL_SENTIMENT_PATH=%s\n", paths["MODEL_SENTIMENT_PATH"])
			return nil
		},
	}

	cmd.Flags().StringVar(&dest, "dest", "models", "Directory to download models into")
	cmd.Flags().StringVar(&nerModel, "ner-model", defaultNERModel, "Hugging Face token classification model")
	cmd.Flags().StringVar(&sentimentModel, "sentiment-model", defaultSentimentModel, "Hugging Face text classification model")

	return cmd
}
