package monitor

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"watchpost/pkg/apperror"
	"watchpost/pkg/utils"
)

const monitorColumns = `id, name, url, check_interval_ms, ssl_check_enabled, enabled,
	pagerduty_integration_key, created_at, updated_at`

type Repository struct {
	pool *pgxpool.Pool
	log  *zerolog.Logger
}

func NewRepository(pool *pgxpool.Pool, log *zerolog.Logger) *Repository {
	return &Repository{pool: pool, log: log}
}

func (r *Repository) Create(ctx context.Context, mon *Monitor) error {
	const op = "monitorRepo.Create"
	const query = `
		INSERT INTO monitor (id, name, url, check_interval_ms, ssl_check_enabled, enabled)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		utils.ToPgUUID(mon.ID), mon.Name, mon.URL,
		mon.CheckIntervalMs, mon.SSLCheckEnabled, mon.Enabled,
	).Scan(&mon.CreatedAt, &mon.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.New(apperror.AlreadyExists, op, err).
				WithMessage("a monitor with this name already exists")
		}
		return utils.WrapRepoError(op, err, false, r.log)
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Monitor, error) {
	const op = "monitorRepo.GetByID"
	query := `SELECT ` + monitorColumns + ` FROM monitor WHERE id = $1`

	mon, err := scanMonitor(r.pool.QueryRow(ctx, query, utils.ToPgUUID(id)))
	if err != nil {
		return nil, utils.WrapRepoError(op, err, true, r.log)
	}
	return mon, nil
}

func (r *Repository) List(ctx context.Context) ([]Monitor, error) {
	const op = "monitorRepo.List"
	query := `SELECT ` + monitorColumns + ` FROM monitor ORDER BY created_at`

	return r.queryMonitors(ctx, op, query)
}

func (r *Repository) ListEnabled(ctx context.Context) ([]Monitor, error) {
	const op = "monitorRepo.ListEnabled"
	query := `SELECT ` + monitorColumns + ` FROM monitor WHERE enabled ORDER BY created_at`

	return r.queryMonitors(ctx, op, query)
}

func (r *Repository) Update(ctx context.Context, mon *Monitor) error {
	const op = "monitorRepo.Update"
	const query = `
		UPDATE monitor
		SET name = $2, url = $3, check_interval_ms = $4, ssl_check_enabled = $5, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`

	err := r.pool.QueryRow(ctx, query,
		utils.ToPgUUID(mon.ID), mon.Name, mon.URL, mon.CheckIntervalMs, mon.SSLCheckEnabled,
	).Scan(&mon.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.New(apperror.AlreadyExists, op, err).
				WithMessage("a monitor with this name already exists")
		}
		return utils.WrapRepoError(op, err, true, r.log)
	}
	return nil
}

func (r *Repository) SetEnabled(ctx context.Context, id uuid.UUID, enabled bool) (*Monitor, error) {
	const op = "monitorRepo.SetEnabled"
	query := `
		UPDATE monitor SET enabled = $2, updated_at = now()
		WHERE id = $1
		RETURNING ` + monitorColumns

	mon, err := scanMonitor(r.pool.QueryRow(ctx, query, utils.ToPgUUID(id), enabled))
	if err != nil {
		return nil, utils.WrapRepoError(op, err, true, r.log)
	}
	return mon, nil
}

func (r *Repository) SetPagerdutyKey(ctx context.Context, id uuid.UUID, key string) (*Monitor, error) {
	const op = "monitorRepo.SetPagerdutyKey"
	query := `
		UPDATE monitor SET pagerduty_integration_key = $2, updated_at = now()
		WHERE id = $1
		RETURNING ` + monitorColumns

	mon, err := scanMonitor(r.pool.QueryRow(ctx, query, utils.ToPgUUID(id), utils.ToPgText(key)))
	if err != nil {
		return nil, utils.WrapRepoError(op, err, true, r.log)
	}
	return mon, nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "monitorRepo.Delete"
	const query = `DELETE FROM monitor WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, utils.ToPgUUID(id))
	if err != nil {
		return utils.WrapRepoError(op, err, false, r.log)
	}
	if tag.RowsAffected() == 0 {
		return apperror.New(apperror.NotFound, op, pgx.ErrNoRows).
			WithMessage("monitor not found")
	}
	return nil
}

func (r *Repository) queryMonitors(ctx context.Context, op, query string) ([]Monitor, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, utils.WrapRepoError(op, err, false, r.log)
	}
	defer rows.Close()

	monitors := make([]Monitor, 0)
	for rows.Next() {
		mon, err := scanMonitor(rows)
		if err != nil {
			return nil, utils.WrapRepoError(op, err, false, r.log)
		}
		monitors = append(monitors, *mon)
	}
	if err := rows.Err(); err != nil {
		return nil, utils.WrapRepoError(op, err, false, r.log)
	}
	return monitors, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMonitor(row rowScanner) (*Monitor, error) {
	var (
		mon   Monitor
		id    pgtype.UUID
		pdKey pgtype.Text
	)
	err := row.Scan(&id, &mon.Name, &mon.URL, &mon.CheckIntervalMs,
		&mon.SSLCheckEnabled, &mon.Enabled, &pdKey, &mon.CreatedAt, &mon.UpdatedAt)
	if err != nil {
		return nil, err
	}
	mon.ID = utils.FromPgUUID(id)
	mon.PagerdutyIntegrationKey = utils.FromPgText(pdKey)
	return &mon, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
