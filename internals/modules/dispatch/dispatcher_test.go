package dispatch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"watchpost/internals/modules/event"
)

type recordingHandler struct {
	name string
	mu   sync.Mutex
	seen []event.Emitted
	err  error
}

func (h *recordingHandler) Name() string { return h.name }

func (h *recordingHandler) Notify(_ context.Context, ev event.Emitted) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seen = append(h.seen, ev)
	return h.err
}

func (h *recordingHandler) events() []event.Emitted {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]event.Emitted, len(h.seen))
	copy(out, h.seen)
	return out
}

func upEvent(at time.Time) event.Emitted {
	mon := event.MonitorRef{ID: uuid.New(), Name: "m", URL: "https://example.com"}
	return event.NewMonitorUpEvent(mon, at, 200, 10, nil)
}

func newDispatcher(handlers ...Handler) *Dispatcher {
	log := zerolog.Nop()
	return New(handlers, 16, &log)
}

func TestDispatchReachesAllHandlers(t *testing.T) {
	a := &recordingHandler{name: "a"}
	b := &recordingHandler{name: "b"}
	d := newDispatcher(a, b)
	d.Start(context.Background())

	d.Dispatch(upEvent(time.Now()))
	d.Stop()

	if len(a.events()) != 1 || len(b.events()) != 1 {
		t.Errorf("expected both handlers to see the event, got %d and %d", len(a.events()), len(b.events()))
	}
}

func TestFailingHandlerDoesNotBlockOthers(t *testing.T) {
	failing := &recordingHandler{name: "failing", err: errors.New("boom")}
	healthy := &recordingHandler{name: "healthy"}
	d := newDispatcher(failing, healthy)
	d.Start(context.Background())

	for range 5 {
		d.Dispatch(upEvent(time.Now()))
	}
	d.Stop()

	if got := len(healthy.events()); got != 5 {
		t.Errorf("healthy handler saw %d events, want 5", got)
	}
	if got := len(failing.events()); got != 5 {
		t.Errorf("failing handler should still be called each time, saw %d", got)
	}
}

func TestDeliveryOrderIsPreserved(t *testing.T) {
	h := &recordingHandler{name: "ordered"}
	d := newDispatcher(h)
	d.Start(context.Background())

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range 10 {
		d.Dispatch(upEvent(base.Add(time.Duration(i) * time.Second)))
	}
	d.Stop()

	seen := h.events()
	if len(seen) != 10 {
		t.Fatalf("expected 10 events, got %d", len(seen))
	}
	for i, ev := range seen {
		want := base.Add(time.Duration(i) * time.Second)
		if !ev.DispatchedAt().Equal(want) {
			t.Fatalf("event %d out of order: got %v, want %v", i, ev.DispatchedAt(), want)
		}
	}
}

func TestStopDrainsQueue(t *testing.T) {
	h := &recordingHandler{name: "drain"}
	d := newDispatcher(h)
	d.Start(context.Background())

	for range 12 {
		d.Dispatch(upEvent(time.Now()))
	}
	d.Stop()

	if got := len(h.events()); got != 12 {
		t.Errorf("Stop must drain queued events, delivered %d of 12", got)
	}
}
