package monitor

import (
	"time"

	"watchpost/internals/modules/event"
	"watchpost/pkg/redisstore"
)

type CreateMonitorRequest struct {
	Name            string `json:"name" validate:"required,min=1,max=255"`
	URL             string `json:"url" validate:"required,url"`
	CheckIntervalMs int64  `json:"check_interval_ms" validate:"required,min=1000"`
	SSLCheckEnabled bool   `json:"ssl_check_enabled"`
	// Enabled defaults to true when omitted.
	Enabled *bool `json:"enabled"`
}

type UpdateMonitorRequest struct {
	Name            *string `json:"name" validate:"omitempty,min=1,max=255"`
	URL             *string `json:"url" validate:"omitempty,url"`
	CheckIntervalMs *int64  `json:"check_interval_ms" validate:"omitempty,min=1000"`
	SSLCheckEnabled *bool   `json:"ssl_check_enabled"`
}

type SetStateRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

type SetPagerdutyKeyRequest struct {
	IntegrationKey string `json:"integration_key" validate:"required,min=1"`
}

type MonitorResponse struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	URL                string    `json:"url"`
	CheckIntervalMs    int64     `json:"check_interval_ms"`
	SSLCheckEnabled    bool      `json:"ssl_check_enabled"`
	Enabled            bool      `json:"enabled"`
	HasPagerdutyKeySet bool      `json:"has_pagerduty_key_set"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func toMonitorResponse(m Monitor) MonitorResponse {
	return MonitorResponse{
		ID:                 m.ID.String(),
		Name:               m.Name,
		URL:                m.URL,
		CheckIntervalMs:    m.CheckIntervalMs,
		SSLCheckEnabled:    m.SSLCheckEnabled,
		Enabled:            m.Enabled,
		HasPagerdutyKeySet: m.PagerdutyIntegrationKey != "",
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

func toMonitorResponses(monitors []Monitor) []MonitorResponse {
	out := make([]MonitorResponse, 0, len(monitors))
	for _, m := range monitors {
		out = append(out, toMonitorResponse(m))
	}
	return out
}

type UptimeEventResponse struct {
	ID        int64      `json:"id"`
	Status    string     `json:"status"`
	Error     string     `json:"error,omitempty"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func toUptimeEventResponses(events []event.UptimeEvent) []UptimeEventResponse {
	out := make([]UptimeEventResponse, 0, len(events))
	for _, ev := range events {
		out = append(out, UptimeEventResponse{
			ID:        ev.ID,
			Status:    string(ev.Status),
			Error:     ev.Error,
			StartedAt: ev.StartedAt,
			EndedAt:   ev.EndedAt,
			UpdatedAt: ev.UpdatedAt,
		})
	}
	return out
}

type SSLEventResponse struct {
	ID         int64      `json:"id"`
	Status     string     `json:"status"`
	Error      string     `json:"error,omitempty"`
	ValidUntil *time.Time `json:"valid_until,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	EndedAt    *time.Time `json:"ended_at,omitempty"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func toSSLEventResponses(events []event.SSLEvent) []SSLEventResponse {
	out := make([]SSLEventResponse, 0, len(events))
	for _, ev := range events {
		out = append(out, SSLEventResponse{
			ID:         ev.ID,
			Status:     string(ev.Status),
			Error:      ev.Error,
			ValidUntil: ev.ValidUntil,
			StartedAt:  ev.StartedAt,
			EndedAt:    ev.EndedAt,
			UpdatedAt:  ev.UpdatedAt,
		})
	}
	return out
}

type LiveUptimeStatusResponse struct {
	Status     string    `json:"status"`
	HTTPStatus int       `json:"http_status"`
	LatencyMs  int64     `json:"latency_ms"`
	CheckedAt  time.Time `json:"checked_at"`
}

type LiveSSLStatusResponse struct {
	Status     string     `json:"status"`
	ValidUntil *time.Time `json:"valid_until,omitempty"`
	CheckedAt  time.Time  `json:"checked_at"`
}

type LatencyStatsResponse struct {
	MinMs float64 `json:"min_ms"`
	MaxMs float64 `json:"max_ms"`
	AvgMs float64 `json:"avg_ms"`
	Count int64   `json:"count"`
}

type MonitorDetailsResponse struct {
	Monitor      MonitorResponse           `json:"monitor"`
	Uptime       *LiveUptimeStatusResponse `json:"uptime,omitempty"`
	SSL          *LiveSSLStatusResponse    `json:"ssl,omitempty"`
	UptimeEvents []UptimeEventResponse     `json:"uptime_events"`
	SSLEvents    []SSLEventResponse        `json:"ssl_events"`
	Latency      *LatencyStatsResponse     `json:"latency,omitempty"`
}

func toDetailsResponse(d *MonitorDetails) MonitorDetailsResponse {
	resp := MonitorDetailsResponse{
		Monitor:      toMonitorResponse(d.Monitor),
		UptimeEvents: toUptimeEventResponses(d.UptimeEvents),
		SSLEvents:    toSSLEventResponses(d.SSLEvents),
	}
	if d.Uptime != nil {
		resp.Uptime = toLiveUptimeStatus(d.Uptime)
	}
	if d.SSL != nil {
		resp.SSL = toLiveSSLStatus(d.SSL)
	}
	if d.Latency != nil {
		resp.Latency = &LatencyStatsResponse{
			MinMs: d.Latency.MinMs,
			MaxMs: d.Latency.MaxMs,
			AvgMs: d.Latency.AvgMs,
			Count: d.Latency.Count,
		}
	}
	return resp
}

func toLiveUptimeStatus(st *redisstore.UptimeStatus) *LiveUptimeStatusResponse {
	return &LiveUptimeStatusResponse{
		Status:     st.Status,
		HTTPStatus: st.HTTPStatus,
		LatencyMs:  st.LatencyMs,
		CheckedAt:  time.Unix(st.CheckedAt, 0).UTC(),
	}
}

func toLiveSSLStatus(st *redisstore.SSLStatus) *LiveSSLStatusResponse {
	resp := &LiveSSLStatusResponse{
		Status:    st.Status,
		CheckedAt: time.Unix(st.CheckedAt, 0).UTC(),
	}
	if st.ValidUntil > 0 {
		vu := time.Unix(st.ValidUntil, 0).UTC()
		resp.ValidUntil = &vu
	}
	return resp
}
