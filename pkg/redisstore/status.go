package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Live-status cache. One hash per monitor per check kind, overwritten on every
// probe, read by the status API. Losing it is harmless, the events table is
// the source of truth.

type UptimeStatus struct {
	Status     string `redis:"status"`
	HTTPStatus int    `redis:"http_status"`
	LatencyMs  int64  `redis:"latency_ms"`
	CheckedAt  int64  `redis:"checked_at"`
}

type SSLStatus struct {
	Status     string `redis:"status"`
	ValidUntil int64  `redis:"valid_until"`
	CheckedAt  int64  `redis:"checked_at"`
}

func uptimeStatusKey(monitorID uuid.UUID) string {
	return fmt.Sprintf("monitor:status:%v", monitorID)
}

func sslStatusKey(monitorID uuid.UUID) string {
	return fmt.Sprintf("monitor:sslstatus:%v", monitorID)
}

func (c *Client) StoreUptimeStatus(ctx context.Context, monitorID uuid.UUID, status string, httpStatus int, latencyMs int64, checkedAt time.Time) error {
	key := uptimeStatusKey(monitorID)

	return retry(ctx, 2, func() error {
		return c.rdb.HSet(ctx, key, map[string]any{
			"status":      status,
			"http_status": httpStatus,
			"latency_ms":  latencyMs,
			"checked_at":  checkedAt.Unix(),
		}).Err()
	})
}

func (c *Client) StoreSSLStatus(ctx context.Context, monitorID uuid.UUID, status string, validUntil time.Time, checkedAt time.Time) error {
	key := sslStatusKey(monitorID)

	var validUnix int64
	if !validUntil.IsZero() {
		validUnix = validUntil.Unix()
	}

	return retry(ctx, 2, func() error {
		return c.rdb.HSet(ctx, key, map[string]any{
			"status":      status,
			"valid_until": validUnix,
			"checked_at":  checkedAt.Unix(),
		}).Err()
	})
}

func (c *Client) GetUptimeStatus(ctx context.Context, monitorID uuid.UUID) (*UptimeStatus, error) {
	res := c.rdb.HGetAll(ctx, uptimeStatusKey(monitorID))
	if err := res.Err(); err != nil {
		return nil, err
	}
	if len(res.Val()) == 0 {
		return nil, nil
	}

	var st UptimeStatus
	if err := res.Scan(&st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (c *Client) GetSSLStatus(ctx context.Context, monitorID uuid.UUID) (*SSLStatus, error) {
	res := c.rdb.HGetAll(ctx, sslStatusKey(monitorID))
	if err := res.Err(); err != nil {
		return nil, err
	}
	if len(res.Val()) == 0 {
		return nil, nil
	}

	var st SSLStatus
	if err := res.Scan(&st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (c *Client) DelStatus(ctx context.Context, monitorID uuid.UUID) error {
	return c.rdb.Del(ctx, uptimeStatusKey(monitorID), sslStatusKey(monitorID)).Err()
}
