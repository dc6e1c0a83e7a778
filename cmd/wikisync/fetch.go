package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/slurpgg/bloom-wikisync/internal/db"
	"github.com/slurpgg/bloom-wikisync/internal/pipeline"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download wiki pages into the local cache",
	Long:  "Fetches every page listed in the wiki config, reusing cached copies younger than the cache TTL. Pages that do not exist are skipped; the stage fails only when no page could be fetched or read from cache.",
	RunE:  runFetch,
}

var fetchForce bool

func init() {
	fetchCmd.Flags().BoolVarP(&fetchForce, "force", "f", false, "Ignore the cache and fetch every page")
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	return a.runStages(cmd.Context(), "fetch", func(string, *db.DB) []pipeline.Stage {
		return []pipeline.Stage{{Name: pipeline.StageFetch, Run: func(ctx context.Context) error {
			return a.fetchStage(ctx, fetchForce)
		}}}
	})
}
