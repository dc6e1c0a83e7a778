package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/slurpgg/bloom-wikisync/internal/audit"
	"github.com/slurpgg/bloom-wikisync/internal/config"
	"github.com/slurpgg/bloom-wikisync/internal/db"
)

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "Show recorded pipeline runs",
	Long:  "Without arguments, lists the most recent runs stored in the run history database. With a run id, prints that run's stages and the summary of its stored audit report. Requires --db-url or DATABASE_URL.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHistory,
}

var historyLimit int

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", db.DefaultListLimit, "Number of runs to list")
	rootCmd.AddCommand(historyCmd)
}

// historyReader is the read side of the run history database.
type historyReader interface {
	ListRuns(ctx context.Context, limit int) ([]db.Run, error)
	GetRun(ctx context.Context, runID uuid.UUID) (*db.Run, error)
	ListRunStages(ctx context.Context, runID uuid.UUID) ([]db.StageRecord, error)
	GetAuditReport(ctx context.Context, runID uuid.UUID) ([]byte, error)
}

func runHistory(cmd *cobra.Command, args []string) error {
	var runID uuid.UUID
	if len(args) == 1 {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid run id %q: %w", args[0], err)
		}
		runID = id
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	if a.cfg.DatabaseURL == "" {
		return &config.ConfigurationError{Problems: []string{
			fmt.Sprintf("run history needs a database (set --db-url or %s)", config.EnvDatabaseURL),
		}}
	}

	ctx := cmd.Context()
	database, err := db.Connect(ctx, a.cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()
	if err := database.EnsureSchema(ctx); err != nil {
		return err
	}

	if runID == uuid.Nil {
		return a.listRuns(ctx, database, historyLimit)
	}
	return a.showRun(ctx, database, runID)
}

func (a *app) listRuns(ctx context.Context, h historyReader, limit int) error {
	runs, err := h.ListRuns(ctx, limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		a.printf("No runs recorded\n")
		return nil
	}
	for _, run := range runs {
		a.printf("%s  %-8s %-9s %s  %s\n",
			run.ID, run.Command, run.Status, formatStarted(run.StartedAt), formatElapsed(run))
	}
	return nil
}

func (a *app) showRun(ctx context.Context, h historyReader, runID uuid.UUID) error {
	run, err := h.GetRun(ctx, runID)
	if err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("run %s not found", runID)
	}

	a.printf("Run %s\n", run.ID)
	a.printf("  Command: %s\n", run.Command)
	a.printf("  Status:  %s\n", run.Status)
	a.printf("  Started: %s (%s)\n", formatStarted(run.StartedAt), formatElapsed(*run))
	if run.Message != "" {
		a.printf("  Message: %s\n", run.Message)
	}

	stages, err := h.ListRunStages(ctx, runID)
	if err != nil {
		return err
	}
	a.printf("\nStages:\n")
	if len(stages) == 0 {
		a.printf("  (none recorded)\n")
	}
	for _, stage := range stages {
		line := fmt.Sprintf("  %-10s %-9s %s", stage.Stage, stage.Status, stage.Duration.Round(time.Millisecond))
		if stage.Message != "" {
			line += "  " + stage.Message
		}
		a.printf("%s\n", line)
	}

	content, err := h.GetAuditReport(ctx, runID)
	if err != nil {
		return err
	}
	if content == nil {
		a.printf("\nNo audit report stored\n")
		return nil
	}
	var report audit.Report
	if err := json.Unmarshal(content, &report); err != nil {
		return fmt.Errorf("failed to decode stored audit report: %w", err)
	}
	s := report.Summary
	a.printf("\nAudit: %d discrepancies (%d critical, %d warning, %d minor)\n",
		s.Total, s.Critical, s.Warning, s.Minor)
	for _, d := range report.Discrepancies {
		a.printf("  [%s] %s: %s\n", d.Severity, d.Field, d.Description)
	}
	return nil
}

func formatStarted(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatElapsed(run db.Run) string {
	if run.CompletedAt == nil {
		return "in progress"
	}
	return run.CompletedAt.Sub(run.StartedAt).Round(time.Millisecond).String()
}
