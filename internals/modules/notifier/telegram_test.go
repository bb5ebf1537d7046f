package notifier

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-telegram/bot"

	"watchpost/config"
	"watchpost/internals/modules/event"
)

func TestTelegramNotifierSendsMessage(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "sendMessage") {
			t.Errorf("unexpected bot API call: %s", r.URL.Path)
		}
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true,"result":{"message_id":1}}`))
	}))
	defer srv.Close()

	n, err := NewTelegramNotifier(
		config.TelegramConfig{Token: "12345:token", ChatID: "42"},
		bot.WithServerURL(srv.URL),
	)
	if err != nil {
		t.Fatalf("NewTelegramNotifier: %v", err)
	}

	ev := event.NewMonitorDownEvent(monRef(), time.Now(), nil, "unreachable", nil)
	if err := n.Notify(context.Background(), ev); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("expected 1 sendMessage call, got %d", calls.Load())
	}
}
