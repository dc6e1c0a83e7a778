package db

// schemaStatements is idempotent DDL applied by EnsureSchema in order.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS sync_runs (
		id           UUID PRIMARY KEY,
		command      TEXT NOT NULL,
		status       TEXT NOT NULL,
		message      TEXT,
		started_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		completed_at TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS sync_run_stages (
		id          BIGSERIAL PRIMARY KEY,
		run_id      UUID NOT NULL REFERENCES sync_runs(id) ON DELETE CASCADE,
		stage       TEXT NOT NULL,
		status      TEXT NOT NULL,
		duration_ms BIGINT NOT NULL DEFAULT 0,
		message     TEXT,
		recorded_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (run_id, stage)
	)`,
	`CREATE TABLE IF NOT EXISTS audit_reports (
		run_id     UUID PRIMARY KEY REFERENCES sync_runs(id) ON DELETE CASCADE,
		content    JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sync_runs_started_at ON sync_runs (started_at DESC)`,
}
