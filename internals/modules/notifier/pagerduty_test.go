package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"watchpost/internals/modules/event"
)

type pagerdutyCapture struct {
	mu       sync.Mutex
	requests []pagerdutyRequest
}

func (c *pagerdutyCapture) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req pagerdutyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode pagerduty request: %v", err)
		}
		c.mu.Lock()
		c.requests = append(c.requests, req)
		c.mu.Unlock()
		w.WriteHeader(http.StatusAccepted)
	}
}

func (c *pagerdutyCapture) all() []pagerdutyRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]pagerdutyRequest, len(c.requests))
	copy(out, c.requests)
	return out
}

func newPagerdutyFixture(t *testing.T, globalKey string) (*PagerdutyNotifier, *pagerdutyCapture) {
	t.Helper()
	capture := &pagerdutyCapture{}
	srv := httptest.NewServer(capture.handler(t))
	t.Cleanup(srv.Close)

	n := NewPagerdutyNotifier(globalKey, srv.Client())
	n.endpoint = srv.URL
	return n, capture
}

func TestPagerdutyTriggersOnDown(t *testing.T) {
	n, capture := newPagerdutyFixture(t, "global-key")

	mon := monRef()
	ev := event.NewMonitorDownEvent(mon, time.Now(), nil, "unreachable", nil)
	if err := n.Notify(context.Background(), ev); err != nil {
		t.Fatalf("Notify: %v", err)
	}

	reqs := capture.all()
	if len(reqs) != 1 {
		t.Fatalf("expected 1 request, got %d", len(reqs))
	}
	got := reqs[0]
	if got.EventAction != "trigger" {
		t.Errorf("event_action = %s, want trigger", got.EventAction)
	}
	if got.RoutingKey != "global-key" {
		t.Errorf("routing_key = %s, want global-key", got.RoutingKey)
	}
	if want := "watchpost_uptime_" + mon.ID.String(); got.DedupKey != want {
		t.Errorf("dedup_key = %s, want %s", got.DedupKey, want)
	}
	if got.Payload == nil || got.Payload.Severity != "critical" {
		t.Errorf("expected critical payload, got %+v", got.Payload)
	}
}

func TestPagerdutyWillExpireIsWarning(t *testing.T) {
	n, capture := newPagerdutyFixture(t, "global-key")

	mon := monRef()
	ev := event.NewSSLWillExpireEvent(mon, time.Now(), time.Now().Add(5*24*time.Hour), nil)
	if err := n.Notify(context.Background(), ev); err != nil {
		t.Fatalf("Notify: %v", err)
	}

	reqs := capture.all()
	if len(reqs) != 1 {
		t.Fatalf("expected 1 request, got %d", len(reqs))
	}
	if reqs[0].Payload == nil || reqs[0].Payload.Severity != "warning" {
		t.Errorf("expected warning payload, got %+v", reqs[0].Payload)
	}
	if want := "watchpost_ssl_" + mon.ID.String(); reqs[0].DedupKey != want {
		t.Errorf("dedup_key = %s, want %s", reqs[0].DedupKey, want)
	}
}

func TestPagerdutyResolvesRecoveryOnly(t *testing.T) {
	n, capture := newPagerdutyFixture(t, "global-key")
	mon := monRef()

	// first-ever UP: nothing to resolve, no request
	firstUp := event.NewMonitorUpEvent(mon, time.Now(), 200, 10, nil)
	if err := n.Notify(context.Background(), firstUp); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if got := len(capture.all()); got != 0 {
		t.Fatalf("first UP must not call pagerduty, got %d requests", got)
	}

	prev := &event.UptimeEvent{Status: event.UptimeDown, StartedAt: time.Now().Add(-time.Minute)}
	recovery := event.NewMonitorUpEvent(mon, time.Now(), 200, 10, prev)
	if err := n.Notify(context.Background(), recovery); err != nil {
		t.Fatalf("Notify: %v", err)
	}

	reqs := capture.all()
	if len(reqs) != 1 {
		t.Fatalf("expected 1 request, got %d", len(reqs))
	}
	if reqs[0].EventAction != "resolve" {
		t.Errorf("event_action = %s, want resolve", reqs[0].EventAction)
	}
	if reqs[0].Payload != nil {
		t.Errorf("resolve should not carry a payload, got %+v", reqs[0].Payload)
	}
}

func TestPagerdutyMonitorKeyOverridesGlobal(t *testing.T) {
	n, capture := newPagerdutyFixture(t, "global-key")

	mon := monRef()
	mon.PagerdutyKey = "per-monitor-key"
	ev := event.NewMonitorDownEvent(mon, time.Now(), nil, "unreachable", nil)
	if err := n.Notify(context.Background(), ev); err != nil {
		t.Fatalf("Notify: %v", err)
	}

	reqs := capture.all()
	if len(reqs) != 1 {
		t.Fatalf("expected 1 request, got %d", len(reqs))
	}
	if reqs[0].RoutingKey != "per-monitor-key" {
		t.Errorf("routing_key = %s, want per-monitor-key", reqs[0].RoutingKey)
	}
}

func TestPagerdutySkipsWithoutAnyKey(t *testing.T) {
	n, capture := newPagerdutyFixture(t, "")

	ev := event.NewMonitorDownEvent(monRef(), time.Now(), nil, "unreachable", nil)
	if err := n.Notify(context.Background(), ev); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if got := len(capture.all()); got != 0 {
		t.Errorf("no routing key anywhere, expected no requests, got %d", got)
	}
}
