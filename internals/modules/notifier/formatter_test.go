package notifier

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"watchpost/internals/modules/event"
)

func monRef() event.MonitorRef {
	return event.MonitorRef{ID: uuid.New(), Name: "my-site", URL: "https://example.com"}
}

func TestRenderTextSlackMarkup(t *testing.T) {
	ev := event.NewMonitorUpEvent(monRef(), time.Now(), 200, 42, nil)

	got := RenderText(slackFormatter{}, ev)
	want := "✅ *Your monitor \"my-site\" (https://example.com) is UP (200)*\n_Latency: 42ms_"
	if got != want {
		t.Errorf("slack text = %q, want %q", got, want)
	}
}

func TestRenderTextTelegramMarkup(t *testing.T) {
	ev := event.NewMonitorUpEvent(monRef(), time.Now(), 200, 42, nil)

	got := RenderText(telegramFormatter{}, ev)
	want := "✅ <b>Your monitor \"my-site\" (https://example.com) is UP (200)</b>\n<i>Latency: 42ms</i>"
	if got != want {
		t.Errorf("telegram text = %q, want %q", got, want)
	}
}

func TestRenderTextDownOmitsReason(t *testing.T) {
	prev := &event.UptimeEvent{Status: event.UptimeUp, StartedAt: time.Now().Add(-time.Minute)}
	ev := event.NewMonitorDownEvent(monRef(), time.Now(), nil, "connection refused", prev)

	got := RenderText(slackFormatter{}, ev)
	if want := "🚨 *Your monitor \"my-site\" (https://example.com) is DOWN*"; !strings.HasPrefix(got, want) {
		t.Errorf("down text = %q, want prefix %q", got, want)
	}
	for _, line := range []string{"Reason:", "connection refused"} {
		if strings.Contains(got, line) {
			t.Errorf("chat text must not include the failure reason, got %q", got)
		}
	}
	if !strings.Contains(got, "Was up for") {
		t.Errorf("down text should mention the previous uptime, got %q", got)
	}
}

func TestSubject(t *testing.T) {
	up := event.NewMonitorUpEvent(monRef(), time.Now(), 200, 42, nil)
	if got, want := Subject("watchpost", up), "[watchpost] - ✅ [my-site] https://example.com is UP"; got != want {
		t.Errorf("subject = %q, want %q", got, want)
	}

	exp := event.NewSSLWillExpireEvent(monRef(), time.Now(), time.Now().Add(24*time.Hour), nil)
	if got, want := Subject("watchpost", exp), "[watchpost] - ⚠️ [my-site] https://example.com has an expiring certificate"; got != want {
		t.Errorf("subject = %q, want %q", got, want)
	}
}

func TestSuppressFirstGood(t *testing.T) {
	firstUp := event.NewMonitorUpEvent(monRef(), time.Now(), 200, 1, nil)
	if !suppressFirstGood(firstUp) {
		t.Error("first UP should be suppressed")
	}

	prev := &event.UptimeEvent{Status: event.UptimeDown, StartedAt: time.Now().Add(-time.Minute)}
	recovery := event.NewMonitorUpEvent(monRef(), time.Now(), 200, 1, prev)
	if suppressFirstGood(recovery) {
		t.Error("recovery must not be suppressed")
	}

	firstDown := event.NewMonitorDownEvent(monRef(), time.Now(), nil, "unreachable", nil)
	if suppressFirstGood(firstDown) {
		t.Error("first DOWN must never be suppressed")
	}

	firstValid := event.NewSSLValidEvent(monRef(), time.Now(), time.Now().Add(time.Hour), nil)
	if !suppressFirstGood(firstValid) {
		t.Error("first VALID should be suppressed")
	}
}
