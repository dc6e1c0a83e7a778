package main

import (
	"github.com/spf13/cobra"

	"github.com/slurpgg/bloom-wikisync/internal/db"
	"github.com/slurpgg/bloom-wikisync/internal/pipeline"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Compare the datasets with their pre-sync backups",
	Long:  "Diffs factions.json and biomes.json against the .bak copies written by transform and writes audit-report.json, audit-report.md and audit-report.html. Exits 1 when critical discrepancies are found.",
	RunE:  runAudit,
}

func init() {
	rootCmd.AddCommand(auditCmd)
}

func runAudit(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	return a.runStages(cmd.Context(), "audit", func(runID string, history *db.DB) []pipeline.Stage {
		return []pipeline.Stage{a.auditStageFor(runID, history)}
	})
}
