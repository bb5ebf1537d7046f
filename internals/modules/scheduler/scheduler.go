package scheduler

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"watchpost/internals/modules/event"
	"watchpost/internals/modules/monitor"
	"watchpost/pkg/apperror"
)

// Checker runs a single probe for one monitor.
type Checker interface {
	Check(ctx context.Context, mon event.MonitorRef) error
}

type checkKey struct {
	monitorID uuid.UUID
	kind      event.CheckKind
}

type runningCheck struct {
	cancel context.CancelFunc
}

// Scheduler owns one timer goroutine per (monitor, check kind). Timers fire
// immediately on registration and then at the monitor's interval.
type Scheduler struct {
	uptime Checker
	ssl    Checker
	log    *zerolog.Logger

	// checkCtx outlives individual timers so that disabling a monitor
	// cancels its future ticks but lets an in-flight check finish.
	checkCtx context.Context

	mu       sync.Mutex
	running  map[checkKey]*runningCheck
	inflight *inflightRegistry
	loopWG   sync.WaitGroup
	checkWG  sync.WaitGroup
}

func New(uptime, ssl Checker, log *zerolog.Logger) *Scheduler {
	return &Scheduler{
		uptime:   uptime,
		ssl:      ssl,
		log:      log,
		checkCtx: context.Background(),
		running:  make(map[checkKey]*runningCheck),
		inflight: newInflightRegistry(),
	}
}

// Start registers checks for every enabled monitor. A monitor that fails to
// register (malformed URL) is logged and skipped so the rest still run.
func (s *Scheduler) Start(ctx context.Context, monitors []monitor.Monitor) {
	s.checkCtx = context.WithoutCancel(ctx)

	registered := 0
	for _, mon := range monitors {
		if !mon.Enabled {
			continue
		}
		if err := s.StartChecks(mon); err != nil {
			s.log.Error().Err(err).
				Str("monitor_id", mon.ID.String()).
				Str("monitor_name", mon.Name).
				Msg("failed to schedule checks for monitor")
			continue
		}
		registered++
	}
	s.log.Info().Int("monitors", registered).Msg("check scheduler started")
}

// StartChecks registers the uptime timer for the monitor, plus the ssl timer
// when certificate checks are enabled and the URL is https. Malformed URLs
// are rejected here so a broken monitor never gets a silent dead timer.
func (s *Scheduler) StartChecks(mon monitor.Monitor) error {
	u, err := url.Parse(mon.URL)
	if err != nil {
		return apperror.New(apperror.InvalidInput, "scheduler.StartChecks", err).
			WithMessage("monitor URL is not parseable")
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return apperror.New(apperror.InvalidInput, "scheduler.StartChecks",
			fmt.Errorf("unsupported monitor URL %q", mon.URL)).
			WithMessage("monitor URL must be absolute http or https")
	}
	if mon.CheckIntervalMs <= 0 {
		return apperror.New(apperror.InvalidInput, "scheduler.StartChecks",
			fmt.Errorf("non-positive check interval %d", mon.CheckIntervalMs)).
			WithMessage("check interval must be positive")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.startLocked(mon, event.KindUptime, s.uptime)
	if mon.SSLCheckEnabled && u.Scheme == "https" && s.ssl != nil {
		s.startLocked(mon, event.KindSSL, s.ssl)
	}
	return nil
}

func (s *Scheduler) startLocked(mon monitor.Monitor, kind event.CheckKind, chk Checker) {
	key := checkKey{monitorID: mon.ID, kind: kind}
	if old, ok := s.running[key]; ok {
		old.cancel()
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.running[key] = &runningCheck{cancel: cancel}

	s.loopWG.Add(1)
	go s.loop(ctx, mon, kind, chk)

	s.log.Debug().
		Str("monitor_id", mon.ID.String()).
		Str("check", string(kind)).
		Dur("interval", mon.Interval()).
		Msg("check scheduled")
}

// RemoveChecks cancels the monitor's timers. An in-flight check is allowed
// to finish.
func (s *Scheduler) RemoveChecks(monitorID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, kind := range []event.CheckKind{event.KindUptime, event.KindSSL} {
		key := checkKey{monitorID: monitorID, kind: kind}
		if rc, ok := s.running[key]; ok {
			rc.cancel()
			delete(s.running, key)
		}
	}
}

// UpdateChecks re-registers the monitor's timers after an edit.
func (s *Scheduler) UpdateChecks(mon monitor.Monitor) error {
	s.RemoveChecks(mon.ID)
	if !mon.Enabled {
		return nil
	}
	return s.StartChecks(mon)
}

// Stop cancels all timers and waits for loops and in-flight checks to drain.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	for key, rc := range s.running {
		rc.cancel()
		delete(s.running, key)
	}
	s.mu.Unlock()

	s.loopWG.Wait()
	s.checkWG.Wait()
	s.log.Info().Msg("check scheduler stopped")
}

func (s *Scheduler) loop(ctx context.Context, mon monitor.Monitor, kind event.CheckKind, chk Checker) {
	defer s.loopWG.Done()

	s.run(mon, kind, chk)

	ticker := time.NewTicker(mon.Interval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.run(mon, kind, chk)
		}
	}
}

func (s *Scheduler) run(mon monitor.Monitor, kind event.CheckKind, chk Checker) {
	key := checkKey{monitorID: mon.ID, kind: kind}
	if !s.inflight.tryAcquire(key) {
		s.log.Debug().
			Str("monitor_id", mon.ID.String()).
			Str("check", string(kind)).
			Msg("previous check still in flight, skipping tick")
		return
	}

	s.checkWG.Add(1)
	go func() {
		defer s.checkWG.Done()
		defer s.inflight.release(key)
		if err := chk.Check(s.checkCtx, mon.Ref()); err != nil {
			s.log.Error().Err(err).
				Str("monitor_id", mon.ID.String()).
				Str("check", string(kind)).
				Msg("check run failed")
		}
	}()
}
