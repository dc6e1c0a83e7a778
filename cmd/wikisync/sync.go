package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/slurpgg/bloom-wikisync/internal/db"
	"github.com/slurpgg/bloom-wikisync/internal/pipeline"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run the full pipeline: fetch, transform, validate, audit",
	Long:  "Runs every stage in order under one run id and stops at the first stage that fails.",
	RunE:  runSync,
}

var (
	syncForce     bool
	syncSkipFetch bool
)

func init() {
	syncCmd.Flags().BoolVarP(&syncForce, "force", "f", false, "Ignore the cache and fetch every page")
	syncCmd.Flags().BoolVar(&syncSkipFetch, "skip-fetch", false, "Use the cached pages as they are")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	return a.runStages(cmd.Context(), "sync", func(runID string, history *db.DB) []pipeline.Stage {
		return syncStages(a, runID, history, syncForce, syncSkipFetch)
	})
}

func syncStages(a *app, runID string, history *db.DB, force, skipFetch bool) []pipeline.Stage {
	var stages []pipeline.Stage
	if !skipFetch {
		stages = append(stages, pipeline.Stage{Name: pipeline.StageFetch, Run: func(ctx context.Context) error {
			return a.fetchStage(ctx, force)
		}})
	}
	return append(stages,
		pipeline.Stage{Name: pipeline.StageTransform, Run: func(context.Context) error {
			return a.transformStage(runID)
		}},
		pipeline.Stage{Name: pipeline.StageValidate, Run: func(context.Context) error {
			return a.validateStage()
		}},
		a.auditStageFor(runID, history),
	)
}
