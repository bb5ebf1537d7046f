package cleaner

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"watchpost/config"
	"watchpost/internals/modules/event"
)

const sweepInterval = 24 * time.Hour

// Cleaner prunes old history rows on a daily sweep. Open events are never
// touched, only closed periods and latency samples past their retention.
type Cleaner struct {
	uptime    event.UptimeEventStore
	ssl       event.SSLEventStore
	latency   event.LatencyStore
	retention config.RetentionConfig
	log       *zerolog.Logger
}

func New(
	uptime event.UptimeEventStore,
	ssl event.SSLEventStore,
	latency event.LatencyStore,
	retention config.RetentionConfig,
	log *zerolog.Logger,
) *Cleaner {
	return &Cleaner{
		uptime:    uptime,
		ssl:       ssl,
		latency:   latency,
		retention: retention,
		log:       log,
	}
}

// Run sweeps once at startup and then daily until ctx is cancelled.
func (c *Cleaner) Run(ctx context.Context) {
	c.sweep(ctx)

	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.sweep(ctx)
		}
	}
}

func (c *Cleaner) sweep(ctx context.Context) {
	now := time.Now()
	eventCutoff := now.AddDate(0, 0, -c.retention.EventDays)
	latencyCutoff := now.AddDate(0, 0, -c.retention.LatencyDays)

	uptimeRows, err := c.uptime.DeleteEndedBefore(ctx, eventCutoff)
	if err != nil {
		c.log.Error().Err(err).Msg("failed to prune uptime events")
	}
	sslRows, err := c.ssl.DeleteEndedBefore(ctx, eventCutoff)
	if err != nil {
		c.log.Error().Err(err).Msg("failed to prune ssl events")
	}
	latencyRows, err := c.latency.DeleteBefore(ctx, latencyCutoff)
	if err != nil {
		c.log.Error().Err(err).Msg("failed to prune latency log")
	}

	c.log.Info().
		Int64("uptime_events", uptimeRows).
		Int64("ssl_events", sslRows).
		Int64("latency_rows", latencyRows).
		Msg("retention sweep finished")
}
