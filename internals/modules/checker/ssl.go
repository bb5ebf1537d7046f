package checker

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"watchpost/internals/modules/event"
)

type SSLChecker struct {
	uptime     event.UptimeEventStore
	evaluator  *event.Evaluator
	cache      StatusCache
	dispatcher Dispatcher
	threshold  time.Duration
	timeout    time.Duration
	log        *zerolog.Logger
}

func NewSSLChecker(
	uptime event.UptimeEventStore,
	evaluator *event.Evaluator,
	cache StatusCache,
	dispatcher Dispatcher,
	expiryThreshold time.Duration,
	timeout time.Duration,
	log *zerolog.Logger,
) *SSLChecker {
	return &SSLChecker{
		uptime:     uptime,
		evaluator:  evaluator,
		cache:      cache,
		dispatcher: dispatcher,
		threshold:  expiryThreshold,
		timeout:    timeout,
		log:        log,
	}
}

// Check inspects the site's leaf certificate. Monitors that are not currently
// UP are skipped: a host that does not answer HTTP has nothing useful to say
// about its certificate.
func (c *SSLChecker) Check(ctx context.Context, mon event.MonitorRef) error {
	latest, err := c.uptime.LatestByMonitor(ctx, mon.ID)
	if err != nil {
		return err
	}
	if latest == nil || latest.Status != event.UptimeUp {
		c.log.Debug().Str("monitor_id", mon.ID.String()).Msg("skipping ssl check, monitor is not up")
		return nil
	}

	// The timeout bounds only the handshake; a handshake that times out is
	// an INVALID observation, and persistence runs on the caller's context.
	handshakeCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	obs := event.SSLObservation{At: time.Now()}
	validUntil, err := c.leafExpiry(handshakeCtx, mon.URL)
	if err != nil {
		obs.Status = event.SSLInvalid
		obs.Error = err.Error()
	} else {
		obs.ValidUntil = &validUntil
		obs.Status = classifyExpiry(validUntil, obs.At, c.threshold)
	}

	if c.cache != nil {
		var vu time.Time
		if obs.ValidUntil != nil {
			vu = *obs.ValidUntil
		}
		if err := c.cache.StoreSSLStatus(ctx, mon.ID, string(obs.Status), vu, obs.At); err != nil {
			c.log.Warn().Err(err).Str("monitor_id", mon.ID.String()).Msg("failed to cache ssl status")
		}
	}

	transition, err := c.evaluator.ObserveSSL(ctx, mon, obs)
	if err != nil {
		return err
	}
	if transition != nil {
		c.dispatcher.Dispatch(transition)
	}
	return nil
}

func (c *SSLChecker) leafExpiry(ctx context.Context, rawURL string) (time.Time, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return time.Time{}, err
	}
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "443"
	}

	dialer := &tls.Dialer{Config: &tls.Config{ServerName: host}}
	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(host, port))
	if err != nil {
		return time.Time{}, err
	}
	defer conn.Close()

	state := conn.(*tls.Conn).ConnectionState()
	if len(state.PeerCertificates) == 0 {
		return time.Time{}, errors.New("server presented no certificate")
	}
	return state.PeerCertificates[0].NotAfter, nil
}

// classifyExpiry decides the certificate status from its expiry date. The
// handshake already rejects expired or untrusted chains, so a successful
// handshake only distinguishes "fine" from "expiring soon".
func classifyExpiry(notAfter, now time.Time, threshold time.Duration) event.SSLStatus {
	if !notAfter.After(now) {
		return event.SSLInvalid
	}
	if notAfter.Sub(now) <= threshold {
		return event.SSLWillExpire
	}
	return event.SSLValid
}
