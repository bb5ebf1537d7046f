package event

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"watchpost/pkg/utils"
)

type UptimeEventStore interface {
	// LatestByMonitor returns the open event for the monitor, nil when the
	// monitor has never been checked.
	LatestByMonitor(ctx context.Context, monitorID uuid.UUID) (*UptimeEvent, error)
	// Append ends the open event (if any) at ev.StartedAt and inserts ev as
	// the new open event, atomically. ev.ID is filled in on return.
	Append(ctx context.Context, ev *UptimeEvent) error
	// Touch bumps updated_at on the open event after a non-transition check.
	Touch(ctx context.Context, eventID int64, at time.Time) error
	ListByMonitor(ctx context.Context, monitorID uuid.UUID, limit int32) ([]UptimeEvent, error)
	// DeleteEndedBefore removes closed events older than the cutoff. Open
	// events are never deleted.
	DeleteEndedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type SSLEventStore interface {
	LatestByMonitor(ctx context.Context, monitorID uuid.UUID) (*SSLEvent, error)
	Append(ctx context.Context, ev *SSLEvent) error
	Touch(ctx context.Context, eventID int64, at time.Time) error
	ListByMonitor(ctx context.Context, monitorID uuid.UUID, limit int32) ([]SSLEvent, error)
	DeleteEndedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type LatencyStore interface {
	Append(ctx context.Context, monitorID uuid.UUID, latencyMs int64) error
	Stats(ctx context.Context, monitorID uuid.UUID) (*LatencyStats, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type LatencyStats struct {
	MinMs float64
	MaxMs float64
	AvgMs float64
	Count int64
}

type UptimeEventRepository struct {
	pool *pgxpool.Pool
	log  *zerolog.Logger
}

func NewUptimeEventRepository(pool *pgxpool.Pool, log *zerolog.Logger) *UptimeEventRepository {
	return &UptimeEventRepository{pool: pool, log: log}
}

func (r *UptimeEventRepository) LatestByMonitor(ctx context.Context, monitorID uuid.UUID) (*UptimeEvent, error) {
	const op = "uptimeEventRepo.LatestByMonitor"
	const query = `
		SELECT id, monitor_id, status, error, started_at, ended_at, updated_at
		FROM uptime_event
		WHERE monitor_id = $1 AND ended_at IS NULL`

	row := r.pool.QueryRow(ctx, query, utils.ToPgUUID(monitorID))
	ev, err := scanUptimeEvent(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, utils.WrapRepoError(op, err, false, r.log)
	}
	return ev, nil
}

func (r *UptimeEventRepository) Append(ctx context.Context, ev *UptimeEvent) error {
	const op = "uptimeEventRepo.Append"

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return utils.WrapRepoError(op, err, false, r.log)
	}
	defer tx.Rollback(ctx)

	const closeQuery = `
		UPDATE uptime_event
		SET ended_at = $2, updated_at = $2
		WHERE monitor_id = $1 AND ended_at IS NULL`
	if _, err := tx.Exec(ctx, closeQuery, utils.ToPgUUID(ev.MonitorID), ev.StartedAt); err != nil {
		return utils.WrapRepoError(op, err, false, r.log)
	}

	const insertQuery = `
		INSERT INTO uptime_event (monitor_id, status, error, started_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	err = tx.QueryRow(ctx, insertQuery,
		utils.ToPgUUID(ev.MonitorID), string(ev.Status), ev.Error, ev.StartedAt, ev.UpdatedAt,
	).Scan(&ev.ID)
	if err != nil {
		return utils.WrapRepoError(op, err, false, r.log)
	}

	if err := tx.Commit(ctx); err != nil {
		return utils.WrapRepoError(op, err, false, r.log)
	}
	return nil
}

func (r *UptimeEventRepository) Touch(ctx context.Context, eventID int64, at time.Time) error {
	const op = "uptimeEventRepo.Touch"
	const query = `UPDATE uptime_event SET updated_at = $2 WHERE id = $1`

	if _, err := r.pool.Exec(ctx, query, eventID, at); err != nil {
		return utils.WrapRepoError(op, err, false, r.log)
	}
	return nil
}

func (r *UptimeEventRepository) ListByMonitor(ctx context.Context, monitorID uuid.UUID, limit int32) ([]UptimeEvent, error) {
	const op = "uptimeEventRepo.ListByMonitor"
	const query = `
		SELECT id, monitor_id, status, error, started_at, ended_at, updated_at
		FROM uptime_event
		WHERE monitor_id = $1
		ORDER BY started_at DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, utils.ToPgUUID(monitorID), limit)
	if err != nil {
		return nil, utils.WrapRepoError(op, err, false, r.log)
	}
	defer rows.Close()

	events := make([]UptimeEvent, 0, limit)
	for rows.Next() {
		ev, err := scanUptimeEvent(rows)
		if err != nil {
			return nil, utils.WrapRepoError(op, err, false, r.log)
		}
		events = append(events, *ev)
	}
	if err := rows.Err(); err != nil {
		return nil, utils.WrapRepoError(op, err, false, r.log)
	}
	return events, nil
}

func (r *UptimeEventRepository) DeleteEndedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	const op = "uptimeEventRepo.DeleteEndedBefore"
	const query = `DELETE FROM uptime_event WHERE ended_at IS NOT NULL AND ended_at < $1`

	tag, err := r.pool.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, utils.WrapRepoError(op, err, false, r.log)
	}
	return tag.RowsAffected(), nil
}

type SSLEventRepository struct {
	pool *pgxpool.Pool
	log  *zerolog.Logger
}

func NewSSLEventRepository(pool *pgxpool.Pool, log *zerolog.Logger) *SSLEventRepository {
	return &SSLEventRepository{pool: pool, log: log}
}

func (r *SSLEventRepository) LatestByMonitor(ctx context.Context, monitorID uuid.UUID) (*SSLEvent, error) {
	const op = "sslEventRepo.LatestByMonitor"
	const query = `
		SELECT id, monitor_id, status, error, valid_until, started_at, ended_at, updated_at
		FROM ssl_event
		WHERE monitor_id = $1 AND ended_at IS NULL`

	row := r.pool.QueryRow(ctx, query, utils.ToPgUUID(monitorID))
	ev, err := scanSSLEvent(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, utils.WrapRepoError(op, err, false, r.log)
	}
	return ev, nil
}

func (r *SSLEventRepository) Append(ctx context.Context, ev *SSLEvent) error {
	const op = "sslEventRepo.Append"

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return utils.WrapRepoError(op, err, false, r.log)
	}
	defer tx.Rollback(ctx)

	const closeQuery = `
		UPDATE ssl_event
		SET ended_at = $2, updated_at = $2
		WHERE monitor_id = $1 AND ended_at IS NULL`
	if _, err := tx.Exec(ctx, closeQuery, utils.ToPgUUID(ev.MonitorID), ev.StartedAt); err != nil {
		return utils.WrapRepoError(op, err, false, r.log)
	}

	const insertQuery = `
		INSERT INTO ssl_event (monitor_id, status, error, valid_until, started_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	err = tx.QueryRow(ctx, insertQuery,
		utils.ToPgUUID(ev.MonitorID), string(ev.Status), ev.Error,
		utils.ToPgTimestamptz(ev.ValidUntil), ev.StartedAt, ev.UpdatedAt,
	).Scan(&ev.ID)
	if err != nil {
		return utils.WrapRepoError(op, err, false, r.log)
	}

	if err := tx.Commit(ctx); err != nil {
		return utils.WrapRepoError(op, err, false, r.log)
	}
	return nil
}

func (r *SSLEventRepository) Touch(ctx context.Context, eventID int64, at time.Time) error {
	const op = "sslEventRepo.Touch"
	const query = `UPDATE ssl_event SET updated_at = $2 WHERE id = $1`

	if _, err := r.pool.Exec(ctx, query, eventID, at); err != nil {
		return utils.WrapRepoError(op, err, false, r.log)
	}
	return nil
}

func (r *SSLEventRepository) ListByMonitor(ctx context.Context, monitorID uuid.UUID, limit int32) ([]SSLEvent, error) {
	const op = "sslEventRepo.ListByMonitor"
	const query = `
		SELECT id, monitor_id, status, error, valid_until, started_at, ended_at, updated_at
		FROM ssl_event
		WHERE monitor_id = $1
		ORDER BY started_at DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, utils.ToPgUUID(monitorID), limit)
	if err != nil {
		return nil, utils.WrapRepoError(op, err, false, r.log)
	}
	defer rows.Close()

	events := make([]SSLEvent, 0, limit)
	for rows.Next() {
		ev, err := scanSSLEvent(rows)
		if err != nil {
			return nil, utils.WrapRepoError(op, err, false, r.log)
		}
		events = append(events, *ev)
	}
	if err := rows.Err(); err != nil {
		return nil, utils.WrapRepoError(op, err, false, r.log)
	}
	return events, nil
}

func (r *SSLEventRepository) DeleteEndedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	const op = "sslEventRepo.DeleteEndedBefore"
	const query = `DELETE FROM ssl_event WHERE ended_at IS NOT NULL AND ended_at < $1`

	tag, err := r.pool.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, utils.WrapRepoError(op, err, false, r.log)
	}
	return tag.RowsAffected(), nil
}

type LatencyRepository struct {
	pool *pgxpool.Pool
	log  *zerolog.Logger
}

func NewLatencyRepository(pool *pgxpool.Pool, log *zerolog.Logger) *LatencyRepository {
	return &LatencyRepository{pool: pool, log: log}
}

func (r *LatencyRepository) Append(ctx context.Context, monitorID uuid.UUID, latencyMs int64) error {
	const op = "latencyRepo.Append"
	const query = `INSERT INTO latency_log (monitor_id, latency_ms) VALUES ($1, $2)`

	if _, err := r.pool.Exec(ctx, query, utils.ToPgUUID(monitorID), latencyMs); err != nil {
		return utils.WrapRepoError(op, err, false, r.log)
	}
	return nil
}

func (r *LatencyRepository) Stats(ctx context.Context, monitorID uuid.UUID) (*LatencyStats, error) {
	const op = "latencyRepo.Stats"
	const query = `
		SELECT COALESCE(MIN(latency_ms), 0), COALESCE(MAX(latency_ms), 0),
		       COALESCE(AVG(latency_ms), 0), COUNT(*)
		FROM latency_log
		WHERE monitor_id = $1`

	var stats LatencyStats
	err := r.pool.QueryRow(ctx, query, utils.ToPgUUID(monitorID)).
		Scan(&stats.MinMs, &stats.MaxMs, &stats.AvgMs, &stats.Count)
	if err != nil {
		return nil, utils.WrapRepoError(op, err, false, r.log)
	}
	return &stats, nil
}

func (r *LatencyRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	const op = "latencyRepo.DeleteBefore"
	const query = `DELETE FROM latency_log WHERE created_at < $1`

	tag, err := r.pool.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, utils.WrapRepoError(op, err, false, r.log)
	}
	return tag.RowsAffected(), nil
}

type pgxScanner interface {
	Scan(dest ...any) error
}

func scanUptimeEvent(row pgxScanner) (*UptimeEvent, error) {
	var (
		ev        UptimeEvent
		monitorID pgtype.UUID
		status    string
		errText   pgtype.Text
		endedAt   pgtype.Timestamptz
	)
	err := row.Scan(&ev.ID, &monitorID, &status, &errText, &ev.StartedAt, &endedAt, &ev.UpdatedAt)
	if err != nil {
		return nil, err
	}
	ev.MonitorID = utils.FromPgUUID(monitorID)
	ev.Status = UptimeStatus(status)
	ev.Error = utils.FromPgText(errText)
	ev.EndedAt = utils.FromPgTimestamptz(endedAt)
	return &ev, nil
}

func scanSSLEvent(row pgxScanner) (*SSLEvent, error) {
	var (
		ev         SSLEvent
		monitorID  pgtype.UUID
		status     string
		errText    pgtype.Text
		validUntil pgtype.Timestamptz
		endedAt    pgtype.Timestamptz
	)
	err := row.Scan(&ev.ID, &monitorID, &status, &errText, &validUntil, &ev.StartedAt, &endedAt, &ev.UpdatedAt)
	if err != nil {
		return nil, err
	}
	ev.MonitorID = utils.FromPgUUID(monitorID)
	ev.Status = SSLStatus(status)
	ev.Error = utils.FromPgText(errText)
	ev.ValidUntil = utils.FromPgTimestamptz(validUntil)
	ev.EndedAt = utils.FromPgTimestamptz(endedAt)
	return &ev, nil
}
