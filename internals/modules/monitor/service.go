package monitor

import (
	"context"
	"fmt"
	"net/url"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"watchpost/internals/modules/event"
	"watchpost/pkg/apperror"
	"watchpost/pkg/redisstore"
)

// Store is the persistence surface the service needs.
type Store interface {
	Create(ctx context.Context, mon *Monitor) error
	GetByID(ctx context.Context, id uuid.UUID) (*Monitor, error)
	List(ctx context.Context) ([]Monitor, error)
	ListEnabled(ctx context.Context) ([]Monitor, error)
	Update(ctx context.Context, mon *Monitor) error
	SetEnabled(ctx context.Context, id uuid.UUID, enabled bool) (*Monitor, error)
	SetPagerdutyKey(ctx context.Context, id uuid.UUID, key string) (*Monitor, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CheckScheduler keeps running timers in sync with monitor mutations.
type CheckScheduler interface {
	StartChecks(mon Monitor) error
	RemoveChecks(monitorID uuid.UUID)
	UpdateChecks(mon Monitor) error
}

// StatusCache is the live-status side of the redis client.
type StatusCache interface {
	GetUptimeStatus(ctx context.Context, monitorID uuid.UUID) (*redisstore.UptimeStatus, error)
	GetSSLStatus(ctx context.Context, monitorID uuid.UUID) (*redisstore.SSLStatus, error)
	DelStatus(ctx context.Context, monitorID uuid.UUID) error
}

type Service struct {
	store     Store
	scheduler CheckScheduler
	cache     StatusCache
	uptime    event.UptimeEventStore
	ssl       event.SSLEventStore
	latency   event.LatencyStore
	log       *zerolog.Logger
}

func NewService(
	store Store,
	scheduler CheckScheduler,
	cache StatusCache,
	uptime event.UptimeEventStore,
	ssl event.SSLEventStore,
	latency event.LatencyStore,
	log *zerolog.Logger,
) *Service {
	return &Service{
		store:     store,
		scheduler: scheduler,
		cache:     cache,
		uptime:    uptime,
		ssl:       ssl,
		latency:   latency,
		log:       log,
	}
}

func (s *Service) Create(ctx context.Context, cmd CreateMonitorCmd) (*Monitor, error) {
	const op = "monitorService.Create"

	if err := validateMonitorURL(cmd.URL); err != nil {
		return nil, err
	}

	mon := &Monitor{
		ID:              uuid.New(),
		Name:            cmd.Name,
		URL:             cmd.URL,
		CheckIntervalMs: cmd.CheckIntervalMs,
		SSLCheckEnabled: cmd.SSLCheckEnabled,
		Enabled:         cmd.Enabled,
	}
	if err := s.store.Create(ctx, mon); err != nil {
		return nil, err
	}

	if mon.Enabled {
		if err := s.scheduler.StartChecks(*mon); err != nil {
			// keep storage and scheduler consistent
			if delErr := s.store.Delete(ctx, mon.ID); delErr != nil {
				s.log.Error().Err(delErr).Str("monitor_id", mon.ID.String()).
					Msg("failed to roll back monitor after scheduling error")
			}
			return nil, apperror.New(apperror.Internal, op, err).
				WithMessage("failed to schedule checks for monitor")
		}
	}

	s.log.Info().Str("monitor_id", mon.ID.String()).Str("name", mon.Name).Msg("monitor created")
	return mon, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Monitor, error) {
	return s.store.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Monitor, error) {
	return s.store.List(ctx)
}

func (s *Service) ListEnabled(ctx context.Context) ([]Monitor, error) {
	return s.store.ListEnabled(ctx)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, cmd UpdateMonitorCmd) (*Monitor, error) {
	mon, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if cmd.Name != nil {
		mon.Name = *cmd.Name
	}
	if cmd.URL != nil {
		if err := validateMonitorURL(*cmd.URL); err != nil {
			return nil, err
		}
		mon.URL = *cmd.URL
	}
	if cmd.CheckIntervalMs != nil {
		mon.CheckIntervalMs = *cmd.CheckIntervalMs
	}
	if cmd.SSLCheckEnabled != nil {
		mon.SSLCheckEnabled = *cmd.SSLCheckEnabled
	}

	if err := s.store.Update(ctx, mon); err != nil {
		return nil, err
	}
	if err := s.scheduler.UpdateChecks(*mon); err != nil {
		return nil, err
	}

	s.log.Info().Str("monitor_id", mon.ID.String()).Msg("monitor updated")
	return mon, nil
}

func (s *Service) SetEnabled(ctx context.Context, id uuid.UUID, enabled bool) (*Monitor, error) {
	mon, err := s.store.SetEnabled(ctx, id, enabled)
	if err != nil {
		return nil, err
	}

	if enabled {
		if err := s.scheduler.StartChecks(*mon); err != nil {
			return nil, err
		}
	} else {
		s.scheduler.RemoveChecks(mon.ID)
		if err := s.cache.DelStatus(ctx, mon.ID); err != nil {
			s.log.Warn().Err(err).Str("monitor_id", mon.ID.String()).Msg("failed to clear cached status")
		}
	}

	s.log.Info().Str("monitor_id", mon.ID.String()).Bool("enabled", enabled).Msg("monitor state changed")
	return mon, nil
}

func (s *Service) SetPagerdutyKey(ctx context.Context, id uuid.UUID, key string) (*Monitor, error) {
	mon, err := s.store.SetPagerdutyKey(ctx, id, key)
	if err != nil {
		return nil, err
	}
	// routing key travels with emitted events, refresh the timers' snapshot
	if mon.Enabled {
		if err := s.scheduler.UpdateChecks(*mon); err != nil {
			return nil, err
		}
	}
	return mon, nil
}

func (s *Service) DeletePagerdutyKey(ctx context.Context, id uuid.UUID) (*Monitor, error) {
	return s.SetPagerdutyKey(ctx, id, "")
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	s.scheduler.RemoveChecks(id)
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.cache.DelStatus(ctx, id); err != nil {
		s.log.Warn().Err(err).Str("monitor_id", id.String()).Msg("failed to clear cached status")
	}
	s.log.Info().Str("monitor_id", id.String()).Msg("monitor deleted")
	return nil
}

type MonitorDetails struct {
	Monitor      Monitor
	Uptime       *redisstore.UptimeStatus
	SSL          *redisstore.SSLStatus
	UptimeEvents []event.UptimeEvent
	SSLEvents    []event.SSLEvent
	Latency      *event.LatencyStats
}

const detailEventLimit = 25

// Details assembles the monitor, its live status from the cache and its
// recent event history. Cache misses degrade to nil fields, not errors.
func (s *Service) Details(ctx context.Context, id uuid.UUID) (*MonitorDetails, error) {
	mon, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	details := &MonitorDetails{Monitor: *mon}

	if details.Uptime, err = s.cache.GetUptimeStatus(ctx, id); err != nil {
		s.log.Warn().Err(err).Str("monitor_id", id.String()).Msg("failed to read cached uptime status")
	}
	if details.SSL, err = s.cache.GetSSLStatus(ctx, id); err != nil {
		s.log.Warn().Err(err).Str("monitor_id", id.String()).Msg("failed to read cached ssl status")
	}

	if details.UptimeEvents, err = s.uptime.ListByMonitor(ctx, id, detailEventLimit); err != nil {
		return nil, err
	}
	if details.SSLEvents, err = s.ssl.ListByMonitor(ctx, id, detailEventLimit); err != nil {
		return nil, err
	}
	if details.Latency, err = s.latency.Stats(ctx, id); err != nil {
		return nil, err
	}
	return details, nil
}

func (s *Service) ListUptimeEvents(ctx context.Context, id uuid.UUID, limit int32) ([]event.UptimeEvent, error) {
	if _, err := s.store.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.uptime.ListByMonitor(ctx, id, limit)
}

func (s *Service) ListSSLEvents(ctx context.Context, id uuid.UUID, limit int32) ([]event.SSLEvent, error) {
	if _, err := s.store.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.ssl.ListByMonitor(ctx, id, limit)
}

func validateMonitorURL(raw string) error {
	const op = "monitorService.validateMonitorURL"

	u, err := url.Parse(raw)
	if err != nil {
		return apperror.New(apperror.InvalidInput, op, err).
			WithMessage("url is not parseable")
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return apperror.New(apperror.InvalidInput, op, fmt.Errorf("unsupported url %q", raw)).
			WithMessage("url must be absolute http or https")
	}
	return nil
}
