package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"watchpost/internals/modules/event"
)

const pagerdutyEventsURL = "https://events.pagerduty.com/v2/enqueue"

type pagerdutyPayload struct {
	Summary  string `json:"summary"`
	Source   string `json:"source"`
	Severity string `json:"severity"`
}

type pagerdutyRequest struct {
	RoutingKey  string            `json:"routing_key"`
	EventAction string            `json:"event_action"`
	DedupKey    string            `json:"dedup_key"`
	Payload     *pagerdutyPayload `json:"payload,omitempty"`
}

// PagerdutyNotifier opens an alert on DOWN / INVALID / WILL_EXPIRE and
// resolves it again when the monitor recovers. The dedup key ties the two
// sides of one incident together per monitor and check kind.
type PagerdutyNotifier struct {
	// routingKey is the global fallback; a monitor-level integration key
	// wins when set.
	routingKey string
	endpoint   string
	client     *http.Client
}

func NewPagerdutyNotifier(routingKey string, client *http.Client) *PagerdutyNotifier {
	return &PagerdutyNotifier{
		routingKey: routingKey,
		endpoint:   pagerdutyEventsURL,
		client:     client,
	}
}

func (n *PagerdutyNotifier) Name() string { return "pagerduty" }

func (n *PagerdutyNotifier) Notify(ctx context.Context, ev event.Emitted) error {
	transition, ok := ev.(event.Transition)
	if !ok {
		return nil
	}

	routingKey := transition.Monitor().PagerdutyKey
	if routingKey == "" {
		routingKey = n.routingKey
	}
	if routingKey == "" {
		return nil
	}

	var action, severity string
	switch transition.Status() {
	case string(event.UptimeDown), string(event.SSLInvalid):
		action, severity = "trigger", "critical"
	case string(event.SSLWillExpire):
		action, severity = "trigger", "warning"
	case string(event.UptimeUp), string(event.SSLValid):
		// nothing to resolve when this is the first observation
		if !transition.HadPrevious() {
			return nil
		}
		action = "resolve"
	default:
		return nil
	}

	pdReq := pagerdutyRequest{
		RoutingKey:  routingKey,
		EventAction: action,
		DedupKey:    DedupKey(transition),
	}
	if action == "trigger" {
		pdReq.Payload = &pagerdutyPayload{
			Summary:  transition.Message().Summary,
			Source:   transition.Monitor().URL,
			Severity: severity,
		}
	}

	body, err := json.Marshal(pdReq)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("pagerduty events API returned %s", resp.Status)
	}
	return nil
}

// DedupKey is stable across the trigger and resolve of one incident.
func DedupKey(ev event.Transition) string {
	return fmt.Sprintf("watchpost_%s_%s", ev.Kind(), ev.Monitor().ID)
}
