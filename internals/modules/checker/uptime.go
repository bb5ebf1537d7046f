package checker

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"watchpost/internals/modules/event"
	"watchpost/pkg/httpclient"
)

const userAgent = "watchpost/1.0"

// Dispatcher is where checkers hand off emitted events.
type Dispatcher interface {
	Dispatch(ev event.Emitted)
}

// StatusCache holds the last probe result per monitor for the status API.
// Writes are best effort.
type StatusCache interface {
	StoreUptimeStatus(ctx context.Context, monitorID uuid.UUID, status string, httpStatus int, latencyMs int64, checkedAt time.Time) error
	StoreSSLStatus(ctx context.Context, monitorID uuid.UUID, status string, validUntil time.Time, checkedAt time.Time) error
}

type UptimeChecker struct {
	client     *http.Client
	timeout    time.Duration
	evaluator  *event.Evaluator
	latency    event.LatencyStore
	cache      StatusCache
	dispatcher Dispatcher
	log        *zerolog.Logger
}

func NewUptimeChecker(
	client *http.Client,
	timeout time.Duration,
	evaluator *event.Evaluator,
	latency event.LatencyStore,
	cache StatusCache,
	dispatcher Dispatcher,
	log *zerolog.Logger,
) *UptimeChecker {
	return &UptimeChecker{
		client:     client,
		timeout:    timeout,
		evaluator:  evaluator,
		latency:    latency,
		cache:      cache,
		dispatcher: dispatcher,
		log:        log,
	}
}

// Check probes the monitor once: GET the URL, log the latency, update the
// live-status cache and emit a transition event if the status flipped.
// The timeout bounds only the HTTP attempt; a timed-out probe is a DOWN
// observation like any other, and everything after the probe runs on the
// caller's context.
func (c *UptimeChecker) Check(ctx context.Context, mon event.MonitorRef) error {
	probeCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	probeCtx, trace := httpclient.WithRedirectTrace(probeCtx)

	obs, attempted := c.probe(probeCtx, mon.URL)

	// Latency is recorded for every attempted probe, even failed ones
	// measure how long the attempt took.
	if attempted {
		if err := c.latency.Append(ctx, mon.ID, obs.LatencyMs); err != nil {
			c.log.Warn().Err(err).Str("monitor_id", mon.ID.String()).Msg("failed to record latency")
		}
	}

	for _, loc := range trace.Locations() {
		c.dispatcher.Dispatch(event.NewRedirectEvent(mon, loc, obs.At))
	}

	if c.cache != nil {
		httpStatus := 0
		if obs.HTTPStatus != nil {
			httpStatus = *obs.HTTPStatus
		}
		if err := c.cache.StoreUptimeStatus(ctx, mon.ID, string(obs.Status), httpStatus, obs.LatencyMs, obs.At); err != nil {
			c.log.Warn().Err(err).Str("monitor_id", mon.ID.String()).Msg("failed to cache uptime status")
		}
	}

	transition, err := c.evaluator.ObserveUptime(ctx, mon, obs)
	if err != nil {
		return err
	}
	if transition != nil {
		c.dispatcher.Dispatch(transition)
	}
	return nil
}

// probe runs one HTTP attempt. attempted is false when the request could not
// even be built; no latency sample exists in that case.
func (c *UptimeChecker) probe(ctx context.Context, rawURL string) (obs event.UptimeObservation, attempted bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return event.UptimeObservation{
			Status: event.UptimeDown,
			Error:  "invalid URL: " + err.Error(),
			At:     time.Now(),
		}, false
	}
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := c.client.Do(req)
	latency := time.Since(start).Milliseconds()

	obs = event.UptimeObservation{LatencyMs: latency, At: time.Now()}
	if err != nil {
		obs.Status = event.UptimeDown
		obs.Error = describeRequestError(err)
		return obs, true
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	code := resp.StatusCode
	obs.HTTPStatus = &code
	if code >= http.StatusBadRequest {
		obs.Status = event.UptimeDown
		obs.Error = "HTTP response status: " + resp.Status
	} else {
		obs.Status = event.UptimeUp
	}
	return obs, true
}

func describeRequestError(err error) string {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return "DNS lookup failed for " + dnsErr.Name
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "request timed out"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "request timed out"
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err.Error()
	}
	return err.Error()
}
