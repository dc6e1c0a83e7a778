// Package db provides PostgreSQL storage for sync run history.
package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// EnsureSchema creates the history tables if they do not exist yet.
func (db *DB) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

// CreateRun inserts a running sync run with the caller's run id.
func (db *DB) CreateRun(ctx context.Context, runID uuid.UUID, command string) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO sync_runs (id, command, status)
		 VALUES ($1, $2, $3)`,
		runID, command, RunStatusRunning,
	)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

// CompleteRun marks a sync run as finished with the given status
func (db *DB) CompleteRun(ctx context.Context, runID uuid.UUID, status, message string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE sync_runs SET status = $1, message = NULLIF($2, ''), completed_at = NOW() WHERE id = $3`,
		status, message, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	return nil
}

// RecordStage stores the outcome of one pipeline stage. Recording the same
// stage twice for a run replaces the earlier row.
func (db *DB) RecordStage(ctx context.Context, runID uuid.UUID, rec StageRecord) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO sync_run_stages (run_id, stage, status, duration_ms, message)
		 VALUES ($1, $2, $3, $4, NULLIF($5, ''))
		 ON CONFLICT (run_id, stage) DO UPDATE
		 SET status = $3, duration_ms = $4, message = NULLIF($5, ''), recorded_at = NOW()`,
		runID, rec.Stage, rec.Status, rec.Duration.Milliseconds(), rec.Message,
	)
	if err != nil {
		return fmt.Errorf("failed to record stage %s: %w", rec.Stage, err)
	}
	return nil
}

// SaveAuditReport stores the JSON form of an audit report for a run
func (db *DB) SaveAuditReport(ctx context.Context, runID uuid.UUID, report any) error {
	jsonBytes, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal audit report: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO audit_reports (run_id, content)
		 VALUES ($1, $2)
		 ON CONFLICT (run_id) DO UPDATE SET content = $2, created_at = NOW()`,
		runID, jsonBytes,
	)
	if err != nil {
		return fmt.Errorf("failed to save audit report: %w", err)
	}
	return nil
}

// GetRun retrieves a sync run by ID. It returns nil when no run matches.
func (db *DB) GetRun(ctx context.Context, runID uuid.UUID) (*Run, error) {
	var run Run
	err := db.pool.QueryRow(ctx,
		`SELECT id, command, status, COALESCE(message, ''), started_at, completed_at
		 FROM sync_runs WHERE id = $1`,
		runID,
	).Scan(&run.ID, &run.Command, &run.Status, &run.Message, &run.StartedAt, &run.CompletedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &run, nil
}

// ListRuns retrieves recent sync runs, newest first
func (db *DB) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := db.pool.Query(ctx,
		`SELECT id, command, status, COALESCE(message, ''), started_at, completed_at
		 FROM sync_runs ORDER BY started_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.Command, &run.Status, &run.Message, &run.StartedAt, &run.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// ListRunStages retrieves the recorded stages of a run in recording order
func (db *DB) ListRunStages(ctx context.Context, runID uuid.UUID) ([]StageRecord, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT stage, status, duration_ms, COALESCE(message, '')
		 FROM sync_run_stages WHERE run_id = $1 ORDER BY recorded_at, id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list run stages: %w", err)
	}
	defer rows.Close()

	var stages []StageRecord
	for rows.Next() {
		var rec StageRecord
		var durationMs int64
		if err := rows.Scan(&rec.Stage, &rec.Status, &durationMs, &rec.Message); err != nil {
			return nil, fmt.Errorf("failed to scan run stage: %w", err)
		}
		rec.Duration = time.Duration(durationMs) * time.Millisecond
		stages = append(stages, rec)
	}
	return stages, rows.Err()
}

// GetAuditReport retrieves the stored audit report JSON for a run
func (db *DB) GetAuditReport(ctx context.Context, runID uuid.UUID) ([]byte, error) {
	var content []byte
	err := db.pool.QueryRow(ctx,
		`SELECT content FROM audit_reports WHERE run_id = $1`,
		runID,
	).Scan(&content)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get audit report: %w", err)
	}
	return content, nil
}
