package event

import (
	"time"

	"github.com/google/uuid"
)

type CheckKind string

const (
	KindUptime CheckKind = "uptime"
	KindSSL    CheckKind = "ssl"
)

type UptimeStatus string

const (
	UptimeUp   UptimeStatus = "UP"
	UptimeDown UptimeStatus = "DOWN"
)

type SSLStatus string

const (
	SSLValid      SSLStatus = "VALID"
	SSLInvalid    SSLStatus = "INVALID"
	SSLWillExpire SSLStatus = "WILL_EXPIRE"
)

// UptimeEvent is one persisted status period of a monitor. The row with
// EndedAt == nil is the open event and represents the current status.
type UptimeEvent struct {
	ID        int64
	MonitorID uuid.UUID
	Status    UptimeStatus
	Error     string
	StartedAt time.Time
	EndedAt   *time.Time
	UpdatedAt time.Time
}

// SSLEvent tracks certificate state, independently from uptime state.
// Same open/closed lifecycle as UptimeEvent.
type SSLEvent struct {
	ID         int64
	MonitorID  uuid.UUID
	Status     SSLStatus
	Error      string
	ValidUntil *time.Time
	StartedAt  time.Time
	EndedAt    *time.Time
	UpdatedAt  time.Time
}

// LatencyLog rows are appended on every uptime probe, transition or not.
type LatencyLog struct {
	ID        int64
	MonitorID uuid.UUID
	LatencyMs int64
	CreatedAt time.Time
}

// MonitorRef is the snapshot of a monitor an emitted event carries around.
// Events outlive administrative edits, so they keep their own copy.
type MonitorRef struct {
	ID           uuid.UUID
	Name         string
	URL          string
	PagerdutyKey string
}
