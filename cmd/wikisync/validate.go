package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/slurpgg/bloom-wikisync/internal/db"
	"github.com/slurpgg/bloom-wikisync/internal/pipeline"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the datasets against their schemas and domain rules",
	Long:  "Checks every faction and biome against its JSON Schema, the expected entity counts and WCAG AA contrast between faction colors. Exits 1 when any critical issue is found; warnings are reported only.",
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	return a.runStages(cmd.Context(), "validate", func(string, *db.DB) []pipeline.Stage {
		return []pipeline.Stage{{Name: pipeline.StageValidate, Run: func(context.Context) error {
			return a.validateStage()
		}}}
	})
}
