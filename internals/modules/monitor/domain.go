package monitor

import (
	"time"

	"github.com/google/uuid"

	"watchpost/internals/modules/event"
)

type Monitor struct {
	ID              uuid.UUID
	Name            string
	URL             string
	CheckIntervalMs int64
	SSLCheckEnabled bool
	Enabled         bool
	// PagerdutyIntegrationKey overrides the globally configured routing key
	// for this monitor. Empty means use the global one.
	PagerdutyIntegrationKey string
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

func (m Monitor) Interval() time.Duration {
	return time.Duration(m.CheckIntervalMs) * time.Millisecond
}

// Ref is the snapshot checks and events carry around.
func (m Monitor) Ref() event.MonitorRef {
	return event.MonitorRef{
		ID:           m.ID,
		Name:         m.Name,
		URL:          m.URL,
		PagerdutyKey: m.PagerdutyIntegrationKey,
	}
}

type CreateMonitorCmd struct {
	Name            string
	URL             string
	CheckIntervalMs int64
	SSLCheckEnabled bool
	Enabled         bool
}

type UpdateMonitorCmd struct {
	Name            *string
	URL             *string
	CheckIntervalMs *int64
	SSLCheckEnabled *bool
}
