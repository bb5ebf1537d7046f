package checker

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"watchpost/internals/modules/event"
)

func TestClassifyExpiry(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	threshold := 14 * 24 * time.Hour

	tests := []struct {
		name     string
		notAfter time.Time
		want     event.SSLStatus
	}{
		{"far future", now.Add(90 * 24 * time.Hour), event.SSLValid},
		{"inside threshold", now.Add(10 * 24 * time.Hour), event.SSLWillExpire},
		{"exactly at threshold", now.Add(threshold), event.SSLWillExpire},
		{"just past threshold", now.Add(threshold + time.Second), event.SSLValid},
		{"already expired", now.Add(-time.Hour), event.SSLInvalid},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := classifyExpiry(tc.notAfter, now, threshold); got != tc.want {
				t.Errorf("classifyExpiry(%v) = %s, want %s", tc.notAfter, got, tc.want)
			}
		})
	}
}

func newSSLFixture(t *testing.T, uptime *memUptimeStore) (*SSLChecker, *memSSLStore, *captureDispatcher) {
	t.Helper()
	ssl := &memSSLStore{}
	dispatcher := &captureDispatcher{}
	log := zerolog.Nop()
	eval := event.NewEvaluator(uptime, ssl, &log)
	chk := NewSSLChecker(uptime, eval, nil, dispatcher, 14*24*time.Hour, 2*time.Second, &log)
	return chk, ssl, dispatcher
}

func TestSSLCheckSkippedUntilMonitorIsUp(t *testing.T) {
	uptime := &memUptimeStore{} // no uptime history at all
	chk, ssl, dispatcher := newSSLFixture(t, uptime)

	// unroutable URL: the check must bail out before dialing anything
	mon := monitorRefFor("https://localhost:1")
	if err := chk.Check(context.Background(), mon); err != nil {
		t.Fatalf("Check: %v", err)
	}
	if got := len(dispatcher.all()); got != 0 {
		t.Errorf("expected no events while monitor is not up, got %d", got)
	}
	if ssl.latest != nil {
		t.Error("expected no persisted ssl event while monitor is not up")
	}

	uptime.latest = &event.UptimeEvent{Status: event.UptimeDown, StartedAt: time.Now()}
	if err := chk.Check(context.Background(), mon); err != nil {
		t.Fatalf("Check: %v", err)
	}
	if got := len(dispatcher.all()); got != 0 {
		t.Errorf("expected no events while monitor is down, got %d", got)
	}
}

func TestSSLCheckUntrustedCertificateIsInvalid(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	uptime := &memUptimeStore{
		latest: &event.UptimeEvent{Status: event.UptimeUp, StartedAt: time.Now()},
	}
	chk, ssl, dispatcher := newSSLFixture(t, uptime)

	// the handshake against the self-signed test certificate must fail
	// verification and surface as an INVALID transition
	if err := chk.Check(context.Background(), monitorRefFor(srv.URL)); err != nil {
		t.Fatalf("Check: %v", err)
	}

	events := dispatcher.all()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	invalid, ok := events[0].(event.SSLInvalidEvent)
	if !ok {
		t.Fatalf("expected SSLInvalidEvent, got %T", events[0])
	}
	if invalid.Reason == "" {
		t.Error("invalid certificate must carry a reason")
	}
	if ssl.latest == nil || ssl.latest.Status != event.SSLInvalid {
		t.Errorf("expected persisted INVALID row, got %+v", ssl.latest)
	}
}

func TestSSLCheckHandshakeTimeoutPersistsInvalidTransition(t *testing.T) {
	// a listener that accepts and then stays silent, so the handshake can
	// only end by deadline
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			defer conn.Close()
		}
	}()

	uptime := &ctxCheckedUptimeStore{}
	uptime.latest = &event.UptimeEvent{Status: event.UptimeUp, StartedAt: time.Now()}
	ssl := &ctxCheckedSSLStore{}
	dispatcher := &captureDispatcher{}
	log := zerolog.Nop()
	eval := event.NewEvaluator(uptime, ssl, &log)
	chk := NewSSLChecker(uptime, eval, nil, dispatcher, 14*24*time.Hour, 50*time.Millisecond, &log)

	mon := monitorRefFor(fmt.Sprintf("https://%s", ln.Addr()))
	if err := chk.Check(context.Background(), mon); err != nil {
		t.Fatalf("timed-out handshake must not surface as a check error, got: %v", err)
	}

	events := dispatcher.all()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	invalid, ok := events[0].(event.SSLInvalidEvent)
	if !ok {
		t.Fatalf("expected SSLInvalidEvent, got %T", events[0])
	}
	if invalid.Reason == "" {
		t.Error("timed-out handshake must carry a reason")
	}
	if ssl.latest == nil || ssl.latest.Status != event.SSLInvalid {
		t.Errorf("expected persisted INVALID row, got %+v", ssl.latest)
	}
}
