package event

import (
	"testing"
	"time"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{5 * time.Second, "5 second(s)"},
		{90 * time.Second, "1 minute(s), 30 second(s)"},
		{3*time.Hour + 4*time.Minute + 5*time.Second, "3 hour(s), 4 minute(s), 5 second(s)"},
		{49*time.Hour + 61*time.Second, "2 day(s), 1 hour(s), 1 minute(s), 1 second(s)"},
		{0, "0 second(s)"},
	}
	for _, tc := range tests {
		if got := FormatDuration(tc.in); got != tc.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestMonitorUpMessage(t *testing.T) {
	mon := MonitorRef{Name: "my-site", URL: "https://example.com"}
	prevStart := time.Now().Add(-2 * time.Minute)
	prev := &UptimeEvent{Status: UptimeDown, StartedAt: prevStart}

	ev := NewMonitorUpEvent(mon, prevStart.Add(2*time.Minute), 200, 123, prev)
	msg := ev.Message()

	if want := `Your monitor "my-site" (https://example.com) is UP (200)`; msg.Summary != want {
		t.Errorf("summary = %q, want %q", msg.Summary, want)
	}
	if want := "Latency: 123ms"; msg.Detail != want {
		t.Errorf("detail = %q, want %q", msg.Detail, want)
	}
	if want := "Was down for 2 minute(s), 0 second(s)"; msg.Tail != want {
		t.Errorf("tail = %q, want %q", msg.Tail, want)
	}
}

func TestMonitorDownMessageWithoutResponse(t *testing.T) {
	mon := MonitorRef{Name: "my-site", URL: "https://example.com"}

	ev := NewMonitorDownEvent(mon, time.Now(), nil, "request timed out", nil)
	msg := ev.Message()

	if want := `Your monitor "my-site" (https://example.com) is DOWN`; msg.Summary != want {
		t.Errorf("summary = %q, want %q", msg.Summary, want)
	}
	if want := "Reason: request timed out"; msg.Detail != want {
		t.Errorf("detail = %q, want %q", msg.Detail, want)
	}
	if msg.Tail != "" {
		t.Errorf("first observation should have no tail, got %q", msg.Tail)
	}
}

func TestSSLWillExpireMessage(t *testing.T) {
	mon := MonitorRef{Name: "my-site", URL: "https://example.com"}
	expiry := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	ev := NewSSLWillExpireEvent(mon, time.Now(), expiry, nil)
	msg := ev.Message()

	if want := "Your SSL certificate for https://example.com will expire soon"; msg.Summary != want {
		t.Errorf("summary = %q, want %q", msg.Summary, want)
	}
	if want := "Expiry date: 2026-10-01T12:00:00Z"; msg.Detail != want {
		t.Errorf("detail = %q, want %q", msg.Detail, want)
	}
}
