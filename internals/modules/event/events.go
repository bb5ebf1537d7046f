package event

import (
	"net/url"
	"time"
)

// Emitted is anything the dispatcher fans out to notification handlers.
type Emitted interface {
	Monitor() MonitorRef
	DispatchedAt() time.Time
}

// Transition is an Emitted event that marks a status change and maps to a
// persisted history row. RedirectEvent is the only non-transition event.
type Transition interface {
	Emitted
	Kind() CheckKind
	Status() string
	// HadPrevious reports whether an earlier event existed for this
	// monitor and kind. First-ever observations return false.
	HadPrevious() bool
	// EndedDuration is how long the previous status lasted, nil for
	// first-ever observations.
	EndedDuration() *time.Duration
	Message() Message
	Emoji() string
}

type base struct {
	Mon MonitorRef
	At  time.Time
}

func (b base) Monitor() MonitorRef     { return b.Mon }
func (b base) DispatchedAt() time.Time { return b.At }

type MonitorUpEvent struct {
	base
	HTTPStatus int
	LatencyMs  int64
	Previous   *UptimeEvent
}

type MonitorDownEvent struct {
	base
	// HTTPStatus is nil when the request never got a response.
	HTTPStatus *int
	Reason     string
	Previous   *UptimeEvent
}

// RedirectEvent is informational only: the probe followed a redirect on its
// way to the final response. It never touches the event history.
type RedirectEvent struct {
	base
	Location *url.URL
}

func NewRedirectEvent(mon MonitorRef, location *url.URL, at time.Time) RedirectEvent {
	return RedirectEvent{base: base{Mon: mon, At: at}, Location: location}
}

func NewMonitorUpEvent(mon MonitorRef, at time.Time, httpStatus int, latencyMs int64, prev *UptimeEvent) MonitorUpEvent {
	return MonitorUpEvent{base: base{Mon: mon, At: at}, HTTPStatus: httpStatus, LatencyMs: latencyMs, Previous: prev}
}

func NewMonitorDownEvent(mon MonitorRef, at time.Time, httpStatus *int, reason string, prev *UptimeEvent) MonitorDownEvent {
	return MonitorDownEvent{base: base{Mon: mon, At: at}, HTTPStatus: httpStatus, Reason: reason, Previous: prev}
}

func NewSSLValidEvent(mon MonitorRef, at time.Time, validUntil time.Time, prev *SSLEvent) SSLValidEvent {
	return SSLValidEvent{base: base{Mon: mon, At: at}, ValidUntil: validUntil, Previous: prev}
}

func NewSSLWillExpireEvent(mon MonitorRef, at time.Time, validUntil time.Time, prev *SSLEvent) SSLWillExpireEvent {
	return SSLWillExpireEvent{base: base{Mon: mon, At: at}, ValidUntil: validUntil, Previous: prev}
}

func NewSSLInvalidEvent(mon MonitorRef, at time.Time, reason string, prev *SSLEvent) SSLInvalidEvent {
	return SSLInvalidEvent{base: base{Mon: mon, At: at}, Reason: reason, Previous: prev}
}

type SSLValidEvent struct {
	base
	ValidUntil time.Time
	Previous   *SSLEvent
}

type SSLWillExpireEvent struct {
	base
	ValidUntil time.Time
	Previous   *SSLEvent
}

type SSLInvalidEvent struct {
	base
	Reason   string
	Previous *SSLEvent
}

func (e MonitorUpEvent) Kind() CheckKind     { return KindUptime }
func (e MonitorDownEvent) Kind() CheckKind   { return KindUptime }
func (e SSLValidEvent) Kind() CheckKind      { return KindSSL }
func (e SSLWillExpireEvent) Kind() CheckKind { return KindSSL }
func (e SSLInvalidEvent) Kind() CheckKind    { return KindSSL }

func (e MonitorUpEvent) Status() string     { return string(UptimeUp) }
func (e MonitorDownEvent) Status() string   { return string(UptimeDown) }
func (e SSLValidEvent) Status() string      { return string(SSLValid) }
func (e SSLWillExpireEvent) Status() string { return string(SSLWillExpire) }
func (e SSLInvalidEvent) Status() string    { return string(SSLInvalid) }

func (e MonitorUpEvent) HadPrevious() bool     { return e.Previous != nil }
func (e MonitorDownEvent) HadPrevious() bool   { return e.Previous != nil }
func (e SSLValidEvent) HadPrevious() bool      { return e.Previous != nil }
func (e SSLWillExpireEvent) HadPrevious() bool { return e.Previous != nil }
func (e SSLInvalidEvent) HadPrevious() bool    { return e.Previous != nil }

func (e MonitorUpEvent) EndedDuration() *time.Duration {
	return endedDuration(e.Previous, e.At)
}

func (e MonitorDownEvent) EndedDuration() *time.Duration {
	return endedDuration(e.Previous, e.At)
}

func (e SSLValidEvent) EndedDuration() *time.Duration {
	return sslEndedDuration(e.Previous, e.At)
}

func (e SSLWillExpireEvent) EndedDuration() *time.Duration {
	return sslEndedDuration(e.Previous, e.At)
}

func (e SSLInvalidEvent) EndedDuration() *time.Duration {
	return sslEndedDuration(e.Previous, e.At)
}

func (e MonitorUpEvent) Emoji() string     { return "✅" }
func (e MonitorDownEvent) Emoji() string   { return "🚨" }
func (e RedirectEvent) Emoji() string      { return "ℹ️" }
func (e SSLValidEvent) Emoji() string      { return "🔒️" }
func (e SSLWillExpireEvent) Emoji() string { return "⚠️" }
func (e SSLInvalidEvent) Emoji() string    { return "🚨" }

func endedDuration(prev *UptimeEvent, at time.Time) *time.Duration {
	if prev == nil {
		return nil
	}
	d := at.Sub(prev.StartedAt)
	return &d
}

func sslEndedDuration(prev *SSLEvent, at time.Time) *time.Duration {
	if prev == nil {
		return nil
	}
	d := at.Sub(prev.StartedAt)
	return &d
}
