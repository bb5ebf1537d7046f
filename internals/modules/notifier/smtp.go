package notifier

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"watchpost/config"
	"watchpost/internals/modules/event"
)

// SMTPNotifier emails transition events. Redirect notices and the first
// healthy observation of a monitor are skipped.
type SMTPNotifier struct {
	cfg     config.SMTPConfig
	appName string
}

func NewSMTPNotifier(cfg config.SMTPConfig, appName string) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg, appName: appName}
}

func (n *SMTPNotifier) Name() string { return "smtp" }

func (n *SMTPNotifier) Notify(_ context.Context, ev event.Emitted) error {
	transition, ok := ev.(event.Transition)
	if !ok {
		return nil
	}
	if suppressFirstGood(transition) {
		return nil
	}

	msg := buildMail(n.cfg.From, n.cfg.To, Subject(n.appName, transition), transition.Message().Plain())

	var auth smtp.Auth
	if n.cfg.Username != "" {
		auth = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	}
	addr := fmt.Sprintf("%s:%d", n.cfg.Host, n.cfg.Port)
	return smtp.SendMail(addr, auth, n.cfg.From, []string{n.cfg.To}, msg)
}

func buildMail(from, to, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	b.WriteString("\r\n")
	return []byte(b.String())
}
