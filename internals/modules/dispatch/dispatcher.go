package dispatch

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"watchpost/internals/modules/event"
)

// Handler receives every emitted event. A failing handler is logged and
// never blocks the others.
type Handler interface {
	Name() string
	Notify(ctx context.Context, ev event.Emitted) error
}

const handlerTimeout = 10 * time.Second

// Dispatcher fans events out to the configured handlers. A single consumer
// goroutine drains the queue, so events keep their emission order; within
// one event the handlers run in parallel and the dispatcher waits for all
// of them before moving on.
type Dispatcher struct {
	handlers []Handler
	queue    chan event.Emitted
	log      *zerolog.Logger

	wg       sync.WaitGroup
	stopOnce sync.Once
}

func New(handlers []Handler, buffer int, log *zerolog.Logger) *Dispatcher {
	if buffer <= 0 {
		buffer = 256
	}
	return &Dispatcher{
		handlers: handlers,
		queue:    make(chan event.Emitted, buffer),
		log:      log,
	}
}

// Start launches the consumer. It returns immediately. Deliveries survive
// cancellation of ctx so the queue can still drain during shutdown; each
// handler call is bounded by its own timeout.
func (d *Dispatcher) Start(ctx context.Context) {
	base := context.WithoutCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for ev := range d.queue {
			d.deliver(base, ev)
		}
	}()

	names := make([]string, 0, len(d.handlers))
	for _, h := range d.handlers {
		names = append(names, h.Name())
	}
	d.log.Info().Strs("handlers", names).Msg("event dispatcher started")
}

// Dispatch enqueues the event. It blocks when the buffer is full rather than
// dropping notifications.
func (d *Dispatcher) Dispatch(ev event.Emitted) {
	d.queue <- ev
}

// Stop drains the queue and waits for in-flight deliveries. Callers must
// stop all producers first.
func (d *Dispatcher) Stop() {
	d.stopOnce.Do(func() {
		close(d.queue)
	})
	d.wg.Wait()
	d.log.Info().Msg("event dispatcher stopped")
}

func (d *Dispatcher) deliver(ctx context.Context, ev event.Emitted) {
	var wg sync.WaitGroup
	for _, h := range d.handlers {
		wg.Add(1)
		go func(h Handler) {
			defer wg.Done()
			hctx, cancel := context.WithTimeout(ctx, handlerTimeout)
			defer cancel()
			if err := h.Notify(hctx, ev); err != nil {
				d.log.Error().Err(err).
					Str("handler", h.Name()).
					Str("monitor_id", ev.Monitor().ID.String()).
					Msg("notification handler failed")
			}
		}(h)
	}
	wg.Wait()
}
