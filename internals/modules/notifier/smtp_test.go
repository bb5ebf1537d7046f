package notifier

import (
	"context"
	"strings"
	"testing"
	"time"

	"watchpost/config"
	"watchpost/internals/modules/event"
)

func TestSMTPNotifierSkipsFirstHealthyObservation(t *testing.T) {
	// host is unroutable on purpose: a suppressed event must return before
	// any connection attempt
	n := NewSMTPNotifier(config.SMTPConfig{Host: "smtp.invalid", Port: 25}, "watchpost")

	firstUp := event.NewMonitorUpEvent(monRef(), time.Now(), 200, 10, nil)
	if err := n.Notify(context.Background(), firstUp); err != nil {
		t.Errorf("first UP should be silently skipped, got %v", err)
	}

	redirect := event.NewRedirectEvent(monRef(), nil, time.Now())
	if err := n.Notify(context.Background(), redirect); err != nil {
		t.Errorf("redirects should be silently skipped, got %v", err)
	}
}

func TestBuildMail(t *testing.T) {
	msg := string(buildMail("from@example.com", "to@example.com", "subject line", "line one\nline two"))

	for _, want := range []string{
		"From: from@example.com\r\n",
		"To: to@example.com\r\n",
		"Subject: subject line\r\n",
		"Content-Type: text/plain; charset=\"UTF-8\"\r\n",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("mail missing %q:\n%s", want, msg)
		}
	}
	if !strings.HasSuffix(msg, "line one\nline two\r\n") {
		t.Errorf("mail body malformed:\n%s", msg)
	}
	if !strings.Contains(msg, "\r\n\r\n") {
		t.Error("mail must separate headers from body with a blank line")
	}
}
