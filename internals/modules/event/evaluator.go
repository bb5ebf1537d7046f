package event

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Evaluator turns raw check results into transitions. It emits an event only
// when the observed status differs from the open event (or no event exists
// yet), and persists the new history row before the event is handed out.
type Evaluator struct {
	uptime UptimeEventStore
	ssl    SSLEventStore
	log    *zerolog.Logger
}

func NewEvaluator(uptime UptimeEventStore, ssl SSLEventStore, log *zerolog.Logger) *Evaluator {
	return &Evaluator{uptime: uptime, ssl: ssl, log: log}
}

type UptimeObservation struct {
	Status     UptimeStatus
	HTTPStatus *int
	LatencyMs  int64
	Error      string
	At         time.Time
}

type SSLObservation struct {
	Status     SSLStatus
	ValidUntil *time.Time
	Error      string
	At         time.Time
}

// ObserveUptime records the observation and returns the transition event, or
// nil when the status is unchanged.
func (e *Evaluator) ObserveUptime(ctx context.Context, mon MonitorRef, obs UptimeObservation) (Transition, error) {
	prev, err := e.uptime.LatestByMonitor(ctx, mon.ID)
	if err != nil {
		return nil, err
	}

	if prev != nil && prev.Status == obs.Status {
		if err := e.uptime.Touch(ctx, prev.ID, obs.At); err != nil {
			e.log.Warn().Err(err).Str("monitor_id", mon.ID.String()).Msg("failed to touch open uptime event")
		}
		return nil, nil
	}

	row := &UptimeEvent{
		MonitorID: mon.ID,
		Status:    obs.Status,
		Error:     obs.Error,
		StartedAt: obs.At,
		UpdatedAt: obs.At,
	}
	if err := e.uptime.Append(ctx, row); err != nil {
		return nil, err
	}

	if obs.Status == UptimeUp {
		httpStatus := 0
		if obs.HTTPStatus != nil {
			httpStatus = *obs.HTTPStatus
		}
		return NewMonitorUpEvent(mon, obs.At, httpStatus, obs.LatencyMs, prev), nil
	}
	return NewMonitorDownEvent(mon, obs.At, obs.HTTPStatus, obs.Error, prev), nil
}

// ObserveSSL works like ObserveUptime for certificate state. A WILL_EXPIRE
// observation with a shifted expiry date is still the same status and does
// not re-emit.
func (e *Evaluator) ObserveSSL(ctx context.Context, mon MonitorRef, obs SSLObservation) (Transition, error) {
	prev, err := e.ssl.LatestByMonitor(ctx, mon.ID)
	if err != nil {
		return nil, err
	}

	if prev != nil && prev.Status == obs.Status {
		if err := e.ssl.Touch(ctx, prev.ID, obs.At); err != nil {
			e.log.Warn().Err(err).Str("monitor_id", mon.ID.String()).Msg("failed to touch open ssl event")
		}
		return nil, nil
	}

	row := &SSLEvent{
		MonitorID:  mon.ID,
		Status:     obs.Status,
		Error:      obs.Error,
		ValidUntil: obs.ValidUntil,
		StartedAt:  obs.At,
		UpdatedAt:  obs.At,
	}
	if err := e.ssl.Append(ctx, row); err != nil {
		return nil, err
	}

	var validUntil time.Time
	if obs.ValidUntil != nil {
		validUntil = *obs.ValidUntil
	}
	switch obs.Status {
	case SSLValid:
		return NewSSLValidEvent(mon, obs.At, validUntil, prev), nil
	case SSLWillExpire:
		return NewSSLWillExpireEvent(mon, obs.At, validUntil, prev), nil
	default:
		return NewSSLInvalidEvent(mon, obs.At, obs.Error, prev), nil
	}
}
