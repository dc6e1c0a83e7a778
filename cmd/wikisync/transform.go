package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/slurpgg/bloom-wikisync/internal/db"
	"github.com/slurpgg/bloom-wikisync/internal/pipeline"
)

var transformCmd = &cobra.Command{
	Use:   "transform",
	Short: "Update the datasets from the cached wiki pages",
	Long:  "Reads the cached faction and biome pages, refreshes factions.json and biomes.json (backing up the previous files to .bak) and writes wiki-metadata.json.",
	RunE:  runTransform,
}

func init() {
	rootCmd.AddCommand(transformCmd)
}

func runTransform(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	return a.runStages(cmd.Context(), "transform", func(runID string, _ *db.DB) []pipeline.Stage {
		return []pipeline.Stage{{Name: pipeline.StageTransform, Run: func(context.Context) error {
			return a.transformStage(runID)
		}}}
	})
}
