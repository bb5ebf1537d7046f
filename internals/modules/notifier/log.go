package notifier

import (
	"context"

	"github.com/rs/zerolog"

	"watchpost/internals/modules/event"
)

// LogNotifier writes every event to the application log. It is always
// registered, regardless of which other handlers are configured.
type LogNotifier struct {
	log *zerolog.Logger
}

func NewLogNotifier(log *zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Name() string { return "log" }

func (n *LogNotifier) Notify(_ context.Context, ev event.Emitted) error {
	switch e := ev.(type) {
	case event.RedirectEvent:
		n.log.Info().
			Str("monitor_id", e.Monitor().ID.String()).
			Msg(e.Message().Summary)
	case event.Transition:
		evt := n.log.Info()
		switch e.Status() {
		case string(event.UptimeDown), string(event.SSLInvalid):
			evt = n.log.Error()
		case string(event.SSLWillExpire):
			evt = n.log.Warn()
		}
		evt.Str("monitor_id", e.Monitor().ID.String()).
			Str("check", string(e.Kind())).
			Str("status", e.Status()).
			Msg(e.Message().Plain())
	}
	return nil
}
