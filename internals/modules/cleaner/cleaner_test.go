package cleaner

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"watchpost/config"
	"watchpost/internals/modules/event"
)

type pruneRecorder struct {
	cutoffs []time.Time
}

func (p *pruneRecorder) record(cutoff time.Time) (int64, error) {
	p.cutoffs = append(p.cutoffs, cutoff)
	return 3, nil
}

type fakeUptimeStore struct{ pruneRecorder }

func (f *fakeUptimeStore) LatestByMonitor(context.Context, uuid.UUID) (*event.UptimeEvent, error) {
	return nil, nil
}
func (f *fakeUptimeStore) Append(context.Context, *event.UptimeEvent) error { return nil }
func (f *fakeUptimeStore) Touch(context.Context, int64, time.Time) error    { return nil }
func (f *fakeUptimeStore) ListByMonitor(context.Context, uuid.UUID, int32) ([]event.UptimeEvent, error) {
	return nil, nil
}
func (f *fakeUptimeStore) DeleteEndedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	return f.record(cutoff)
}

type fakeSSLStore struct{ pruneRecorder }

func (f *fakeSSLStore) LatestByMonitor(context.Context, uuid.UUID) (*event.SSLEvent, error) {
	return nil, nil
}
func (f *fakeSSLStore) Append(context.Context, *event.SSLEvent) error { return nil }
func (f *fakeSSLStore) Touch(context.Context, int64, time.Time) error { return nil }
func (f *fakeSSLStore) ListByMonitor(context.Context, uuid.UUID, int32) ([]event.SSLEvent, error) {
	return nil, nil
}
func (f *fakeSSLStore) DeleteEndedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	return f.record(cutoff)
}

type fakeLatencyStore struct{ pruneRecorder }

func (f *fakeLatencyStore) Append(context.Context, uuid.UUID, int64) error { return nil }
func (f *fakeLatencyStore) Stats(context.Context, uuid.UUID) (*event.LatencyStats, error) {
	return &event.LatencyStats{}, nil
}
func (f *fakeLatencyStore) DeleteBefore(_ context.Context, cutoff time.Time) (int64, error) {
	return f.record(cutoff)
}

func TestSweepUsesRetentionCutoffs(t *testing.T) {
	uptime := &fakeUptimeStore{}
	ssl := &fakeSSLStore{}
	latency := &fakeLatencyStore{}
	log := zerolog.Nop()

	c := New(uptime, ssl, latency, config.RetentionConfig{EventDays: 30, LatencyDays: 7}, &log)

	before := time.Now()
	c.sweep(context.Background())

	if len(uptime.cutoffs) != 1 || len(ssl.cutoffs) != 1 || len(latency.cutoffs) != 1 {
		t.Fatalf("expected one prune per store, got %d/%d/%d",
			len(uptime.cutoffs), len(ssl.cutoffs), len(latency.cutoffs))
	}

	wantEvent := before.AddDate(0, 0, -30)
	if d := uptime.cutoffs[0].Sub(wantEvent); d < 0 || d > time.Minute {
		t.Errorf("uptime cutoff %v not ~30 days back", uptime.cutoffs[0])
	}
	if !ssl.cutoffs[0].Equal(uptime.cutoffs[0]) {
		t.Errorf("ssl cutoff %v should match uptime cutoff %v", ssl.cutoffs[0], uptime.cutoffs[0])
	}
	wantLatency := before.AddDate(0, 0, -7)
	if d := latency.cutoffs[0].Sub(wantLatency); d < 0 || d > time.Minute {
		t.Errorf("latency cutoff %v not ~7 days back", latency.cutoffs[0])
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	uptime := &fakeUptimeStore{}
	ssl := &fakeSSLStore{}
	latency := &fakeLatencyStore{}
	log := zerolog.Nop()

	c := New(uptime, ssl, latency, config.RetentionConfig{EventDays: 1, LatencyDays: 1}, &log)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after context cancellation")
	}

	if len(uptime.cutoffs) != 1 {
		t.Errorf("expected exactly the startup sweep, got %d", len(uptime.cutoffs))
	}
}
