package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS monitor (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		url TEXT NOT NULL,
		check_interval_ms BIGINT NOT NULL,
		ssl_check_enabled BOOLEAN NOT NULL DEFAULT FALSE,
		enabled BOOLEAN NOT NULL DEFAULT TRUE,
		pagerduty_integration_key TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS uptime_event (
		id BIGSERIAL PRIMARY KEY,
		monitor_id UUID NOT NULL REFERENCES monitor(id) ON DELETE CASCADE,
		status TEXT NOT NULL,
		error TEXT,
		started_at TIMESTAMPTZ NOT NULL,
		ended_at TIMESTAMPTZ,
		updated_at TIMESTAMPTZ NOT NULL
	)`,

	// at most one open event per monitor
	`CREATE UNIQUE INDEX IF NOT EXISTS uptime_event_open_idx
		ON uptime_event (monitor_id) WHERE ended_at IS NULL`,

	`CREATE TABLE IF NOT EXISTS ssl_event (
		id BIGSERIAL PRIMARY KEY,
		monitor_id UUID NOT NULL REFERENCES monitor(id) ON DELETE CASCADE,
		status TEXT NOT NULL,
		error TEXT,
		valid_until TIMESTAMPTZ,
		started_at TIMESTAMPTZ NOT NULL,
		ended_at TIMESTAMPTZ,
		updated_at TIMESTAMPTZ NOT NULL
	)`,

	`CREATE UNIQUE INDEX IF NOT EXISTS ssl_event_open_idx
		ON ssl_event (monitor_id) WHERE ended_at IS NULL`,

	`CREATE TABLE IF NOT EXISTS latency_log (
		id BIGSERIAL PRIMARY KEY,
		monitor_id UUID NOT NULL REFERENCES monitor(id) ON DELETE CASCADE,
		latency_ms INTEGER NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE INDEX IF NOT EXISTS latency_log_monitor_idx
		ON latency_log (monitor_id, created_at)`,
}

// Migrate creates the schema on startup. Every statement is idempotent.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range migrations {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
