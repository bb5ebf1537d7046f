package notifier

import (
	"fmt"
	"strings"

	"watchpost/internals/modules/event"
)

// RichFormatter is the markup capability a chat channel offers. Channels
// that support neither bold nor italic use plainFormatter.
type RichFormatter interface {
	Bold(s string) string
	Italic(s string) string
}

type plainFormatter struct{}

func (plainFormatter) Bold(s string) string   { return s }
func (plainFormatter) Italic(s string) string { return s }

type slackFormatter struct{}

func (slackFormatter) Bold(s string) string   { return "*" + s + "*" }
func (slackFormatter) Italic(s string) string { return "_" + s + "_" }

// telegramFormatter emits the HTML tags Telegram's HTML parse mode accepts.
type telegramFormatter struct{}

func (telegramFormatter) Bold(s string) string   { return "<b>" + s + "</b>" }
func (telegramFormatter) Italic(s string) string { return "<i>" + s + "</i>" }

// RenderText decorates an event's message for a channel: emoji plus bold
// summary, italic detail, plain tail. Down events keep the failure reason
// out of chat texts, the summary already says the monitor is down.
func RenderText(f RichFormatter, ev event.Transition) string {
	msg := ev.Message()

	lines := make([]string, 0, 3)
	lines = append(lines, ev.Emoji()+" "+f.Bold(msg.Summary))
	if _, down := ev.(event.MonitorDownEvent); !down && msg.Detail != "" {
		lines = append(lines, f.Italic(msg.Detail))
	}
	if msg.Tail != "" {
		lines = append(lines, msg.Tail)
	}
	return strings.Join(lines, "\n")
}

// RenderRedirect is the chat text for redirect notices.
func RenderRedirect(f RichFormatter, ev event.RedirectEvent) string {
	return ev.Emoji() + " " + f.Bold(ev.Message().Summary)
}

// Subject builds the email subject line.
func Subject(appName string, ev event.Transition) string {
	mon := ev.Monitor()
	var tail string
	switch ev.Kind() {
	case event.KindSSL:
		switch event.SSLStatus(ev.Status()) {
		case event.SSLValid:
			tail = "has a VALID certificate"
		case event.SSLWillExpire:
			tail = "has an expiring certificate"
		default:
			tail = "has an INVALID certificate"
		}
	default:
		tail = "is " + ev.Status()
	}
	return fmt.Sprintf("[%s] - %s [%s] %s %s", appName, ev.Emoji(), mon.Name, mon.URL, tail)
}

// suppressFirstGood reports whether the event is the very first observation
// of a healthy status. Nobody needs a notification that a freshly added
// monitor is fine.
func suppressFirstGood(ev event.Transition) bool {
	if ev.HadPrevious() {
		return false
	}
	s := ev.Status()
	return s == string(event.UptimeUp) || s == string(event.SSLValid)
}
