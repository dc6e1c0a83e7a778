package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/slurpgg/bloom-wikisync/internal/db"
	"github.com/slurpgg/bloom-wikisync/internal/pipeline"
)

var extractTokensCmd = &cobra.Command{
	Use:   "extract-tokens",
	Short: "Extract design tokens from the cached brand guidelines page",
	Long:  "Parses the cached page with dataType designTokens and writes its color and typography tokens as Style Dictionary JSON.",
	RunE:  runExtractTokens,
}

func init() {
	rootCmd.AddCommand(extractTokensCmd)
}

func runExtractTokens(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	return a.runStages(cmd.Context(), "extract-tokens", func(string, *db.DB) []pipeline.Stage {
		return []pipeline.Stage{{Name: "extract-tokens", Run: func(context.Context) error {
			return a.tokensStage()
		}}}
	})
}
