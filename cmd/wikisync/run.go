package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/slurpgg/bloom-wikisync/internal/db"
	"github.com/slurpgg/bloom-wikisync/internal/pipeline"
)

// stageBuilder returns the stages of a command for the given run id.
type stageBuilder func(runID string, history *db.DB) []pipeline.Stage

// runStages executes the stages of command under one run id, recording the
// run in the history database when one is configured.
func (a *app) runStages(ctx context.Context, command string, build stageBuilder) error {
	database := a.openHistory(ctx)
	if database != nil {
		defer database.Close()
	}

	runID := uuid.New()
	opts := []pipeline.Option{
		pipeline.WithRunID(runID),
		pipeline.WithLogger(a.logger),
		pipeline.WithMetrics(a.metrics),
		pipeline.WithClock(a.now),
	}
	var history *db.DB
	if database != nil {
		if err := database.CreateRun(ctx, runID, command); err != nil {
			a.logger.Warn("failed to record run", slog.String("error", err.Error()))
		} else {
			history = database
			opts = append(opts, pipeline.WithHistory(history))
		}
	}
	if a.cfg.Verbose {
		opts = append(opts, pipeline.WithProgress(func(e pipeline.ProgressEvent) {
			if e.Status == pipeline.StatusStarted {
				a.printf("==> %s\n", e.Stage)
			}
		}))
	}

	runner := pipeline.NewRunner(opts...)
	err := runner.Run(ctx, build(runID.String(), history))

	if history != nil {
		status, message := db.RunStatusCompleted, ""
		if err != nil {
			status, message = db.RunStatusFailed, err.Error()
		}
		completeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if cerr := history.CompleteRun(completeCtx, runID, status, message); cerr != nil {
			a.logger.Warn("failed to complete run record", slog.String("error", cerr.Error()))
		}
	}
	return err
}

// auditStageFor wraps auditStage for a runner, storing the report in history.
func (a *app) auditStageFor(runID string, history *db.DB) pipeline.Stage {
	return pipeline.Stage{Name: pipeline.StageAudit, Run: func(ctx context.Context) error {
		report, err := a.auditStage(runID)
		if report != nil && history != nil {
			id, perr := uuid.Parse(runID)
			if perr == nil {
				if serr := history.SaveAuditReport(ctx, id, report); serr != nil {
					a.logger.Warn("failed to store audit report", slog.String("error", serr.Error()))
				}
			}
		}
		return err
	}}
}
