package event

import (
	"fmt"
	"strings"
	"time"
)

// Message is the renderable form of an event. Handlers decorate the parts
// differently (bold summary on Slack, plain everywhere in email), so the
// lines stay separate until a handler assembles them.
type Message struct {
	Summary string
	Detail  string
	Tail    string
}

func (m Message) Lines() []string {
	lines := make([]string, 0, 3)
	for _, l := range []string{m.Summary, m.Detail, m.Tail} {
		if l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

func (m Message) Plain() string {
	return strings.Join(m.Lines(), "\n")
}

func (e MonitorUpEvent) Message() Message {
	m := Message{
		Summary: fmt.Sprintf("Your monitor \"%s\" (%s) is UP (%d)", e.Mon.Name, e.Mon.URL, e.HTTPStatus),
		Detail:  fmt.Sprintf("Latency: %dms", e.LatencyMs),
	}
	if d := e.EndedDuration(); d != nil {
		m.Tail = "Was down for " + FormatDuration(*d)
	}
	return m
}

func (e MonitorDownEvent) Message() Message {
	summary := fmt.Sprintf("Your monitor \"%s\" (%s) is DOWN", e.Mon.Name, e.Mon.URL)
	if e.HTTPStatus != nil {
		summary = fmt.Sprintf("%s (%d)", summary, *e.HTTPStatus)
	}
	m := Message{Summary: summary}
	if e.Reason != "" {
		m.Detail = "Reason: " + e.Reason
	}
	if d := e.EndedDuration(); d != nil {
		m.Tail = "Was up for " + FormatDuration(*d)
	}
	return m
}

func (e RedirectEvent) Message() Message {
	return Message{
		Summary: fmt.Sprintf("Request to \"%s\" (%s) has been redirected to %s", e.Mon.Name, e.Mon.URL, e.Location),
	}
}

func (e SSLValidEvent) Message() Message {
	m := Message{
		Summary: fmt.Sprintf("Your site \"%s\" (%s) has a VALID certificate", e.Mon.Name, e.Mon.URL),
	}
	if d := e.EndedDuration(); d != nil {
		m.Tail = fmt.Sprintf("Was %s for %s", e.Previous.Status, FormatDuration(*d))
	}
	return m
}

func (e SSLWillExpireEvent) Message() Message {
	return Message{
		Summary: fmt.Sprintf("Your SSL certificate for %s will expire soon", e.Mon.URL),
		Detail:  "Expiry date: " + e.ValidUntil.UTC().Format(time.RFC3339),
	}
}

func (e SSLInvalidEvent) Message() Message {
	m := Message{
		Summary: fmt.Sprintf("Your site \"%s\" (%s) has an INVALID certificate", e.Mon.Name, e.Mon.URL),
	}
	if e.Reason != "" {
		m.Detail = "Reason: " + e.Reason
	}
	if d := e.EndedDuration(); d != nil {
		m.Tail = fmt.Sprintf("Was %s for %s", e.Previous.Status, FormatDuration(*d))
	}
	return m
}

// FormatDuration renders a duration the way people read downtime:
// "2 day(s), 3 hour(s), 4 minute(s), 5 second(s)", dropping leading
// zero parts.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	days := int64(d / (24 * time.Hour))
	hours := int64(d/time.Hour) % 24
	minutes := int64(d/time.Minute) % 60
	seconds := int64(d/time.Second) % 60

	parts := make([]string, 0, 4)
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%d day(s)", days))
	}
	if hours > 0 || len(parts) > 0 {
		parts = append(parts, fmt.Sprintf("%d hour(s)", hours))
	}
	if minutes > 0 || len(parts) > 0 {
		parts = append(parts, fmt.Sprintf("%d minute(s)", minutes))
	}
	parts = append(parts, fmt.Sprintf("%d second(s)", seconds))
	return strings.Join(parts, ", ")
}
