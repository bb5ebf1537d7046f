package notifier

import (
	"context"
	"encoding/json"
	"time"

	"watchpost/internals/modules/event"
)

// Publisher is the broker side of the AMQP notifier.
type Publisher interface {
	Publish(ctx context.Context, body []byte) error
}

type amqpEnvelope struct {
	MonitorID    string    `json:"monitor_id"`
	MonitorName  string    `json:"monitor_name"`
	URL          string    `json:"url"`
	Kind         string    `json:"kind"`
	Status       string    `json:"status"`
	Summary      string    `json:"summary"`
	Previous     bool      `json:"had_previous"`
	DispatchedAt time.Time `json:"dispatched_at"`
}

// AMQPNotifier publishes transition events to the broker so other systems
// can consume them. Redirect notices stay local.
type AMQPNotifier struct {
	pub Publisher
}

func NewAMQPNotifier(pub Publisher) *AMQPNotifier {
	return &AMQPNotifier{pub: pub}
}

func (n *AMQPNotifier) Name() string { return "amqp" }

func (n *AMQPNotifier) Notify(ctx context.Context, ev event.Emitted) error {
	transition, ok := ev.(event.Transition)
	if !ok {
		return nil
	}

	mon := transition.Monitor()
	body, err := json.Marshal(amqpEnvelope{
		MonitorID:    mon.ID.String(),
		MonitorName:  mon.Name,
		URL:          mon.URL,
		Kind:         string(transition.Kind()),
		Status:       transition.Status(),
		Summary:      transition.Message().Summary,
		Previous:     transition.HadPrevious(),
		DispatchedAt: transition.DispatchedAt(),
	})
	if err != nil {
		return err
	}
	return n.pub.Publish(ctx, body)
}
