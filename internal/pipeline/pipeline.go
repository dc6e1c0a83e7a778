// Package pipeline runs the sync stages in order under one run id.
//
// Stages are strictly sequential: each one reads the files the previous one
// wrote, so the first failure stops the run. Every stage is timed, counted in
// metrics, reported to the progress callback and, when a history store is
// configured, recorded there. History failures are logged and never fail a
// run.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/slurpgg/bloom-wikisync/internal/db"
	"github.com/slurpgg/bloom-wikisync/internal/logging"
	"github.com/slurpgg/bloom-wikisync/internal/metrics"
)

// Stage names in pipeline order.
const (
	StageFetch     = "fetch"
	StageTransform = "transform"
	StageValidate  = "validate"
	StageAudit     = "audit"
)

// Order lists the stages of a full sync.
var Order = []string{StageFetch, StageTransform, StageValidate, StageAudit}

// Stage is one named step of a run.
type Stage struct {
	Name string
	Run  func(ctx context.Context) error
}

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Stage    string        `json:"stage"`
	Status   string        `json:"status"`
	Message  string        `json:"message,omitempty"`
	RunID    string        `json:"run_id"`
	Duration time.Duration `json:"duration,omitempty"`
}

// Progress statuses.
const (
	StatusStarted   = "started"
	StatusCompleted = db.StageStatusCompleted
	StatusFailed    = db.StageStatusFailed
	StatusSkipped   = db.StageStatusSkipped
)

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// History stores stage outcomes. *db.DB implements it.
type History interface {
	RecordStage(ctx context.Context, runID uuid.UUID, rec db.StageRecord) error
}

// Runner executes stages.
type Runner struct {
	runID      uuid.UUID
	logger     *slog.Logger
	metrics    *metrics.Metrics
	history    History
	onProgress ProgressCallback
	now        func() time.Time
}

// Option customizes a Runner.
type Option func(*Runner)

// WithRunID fixes the run id instead of generating one.
func WithRunID(id uuid.UUID) Option {
	return func(r *Runner) { r.runID = id }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// WithMetrics records stage durations and failures.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Runner) { r.metrics = m }
}

// WithHistory records every stage outcome in h.
func WithHistory(h History) Option {
	return func(r *Runner) { r.history = h }
}

// WithProgress registers a progress callback.
func WithProgress(fn ProgressCallback) Option {
	return func(r *Runner) { r.onProgress = fn }
}

// WithClock replaces time.Now (tests).
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// NewRunner creates a runner with a fresh random run id.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{runID: uuid.New(), now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.OrDiscard(r.logger).With(slog.String("run_id", r.runID.String()))
	return r
}

// RunID returns the id shared by every stage of this runner.
func (r *Runner) RunID() uuid.UUID {
	return r.runID
}

// Run executes stages in order and stops at the first failure, which is
// returned as a *StageError. Stages after a failure are reported as skipped.
// A cancelled context fails the next stage before it starts.
func (r *Runner) Run(ctx context.Context, stages []Stage) error {
	for i, stage := range stages {
		if err := ctx.Err(); err != nil {
			r.skip(ctx, stages[i:])
			return &StageError{Stage: stage.Name, Cause: err}
		}

		r.emit(ProgressEvent{Stage: stage.Name, Status: StatusStarted})
		r.logger.Info("stage started", slog.String("stage", stage.Name))

		start := r.now()
		err := stage.Run(ctx)
		elapsed := r.now().Sub(start)

		r.metrics.ObserveStage(stage.Name, elapsed, err)
		r.record(ctx, db.NewStageRecord(stage.Name, elapsed, err))

		if err != nil {
			r.logger.Error("stage failed",
				slog.String("stage", stage.Name),
				slog.Duration("duration", elapsed),
				slog.String("error", err.Error()))
			r.emit(ProgressEvent{Stage: stage.Name, Status: StatusFailed, Message: err.Error(), Duration: elapsed})
			r.skip(ctx, stages[i+1:])
			return &StageError{Stage: stage.Name, Cause: err}
		}

		r.logger.Info("stage completed",
			slog.String("stage", stage.Name),
			slog.Duration("duration", elapsed))
		r.emit(ProgressEvent{Stage: stage.Name, Status: StatusCompleted, Duration: elapsed})
	}
	return nil
}

func (r *Runner) skip(ctx context.Context, stages []Stage) {
	for _, stage := range stages {
		r.emit(ProgressEvent{Stage: stage.Name, Status: StatusSkipped})
		r.record(ctx, db.StageRecord{Stage: stage.Name, Status: db.StageStatusSkipped})
	}
}

func (r *Runner) record(ctx context.Context, rec db.StageRecord) {
	if r.history == nil {
		return
	}
	// History is written even after ctx is cancelled.
	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := r.history.RecordStage(recordCtx, r.runID, rec); err != nil {
		r.logger.Warn("failed to record stage history",
			slog.String("stage", rec.Stage),
			slog.String("error", err.Error()))
	}
}

func (r *Runner) emit(event ProgressEvent) {
	if r.onProgress == nil {
		return
	}
	event.RunID = r.runID.String()
	r.onProgress(event)
}

// StageError identifies the stage that stopped a run.
type StageError struct {
	Stage string
	Cause error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s failed: %v", e.Stage, e.Cause)
}

func (e *StageError) Unwrap() error {
	return e.Cause
}
