package services

import (
	"context"
	"fmt"

	"github.com/rayhandestian/quickbites/logger"
	"github.com/rayhandestian/quickbites/models"
	"go.uber.org/zap"
)

// Dispatcher routes change events from any source to the consumer registered
// for their kind. It is safe for concurrent use; consumers hold no state.
type Dispatcher struct {
	consumers map[models.ChangeKind]ChangeEventConsumer
	observer  Observer
	logger    *zap.Logger
}

func NewDispatcher(logger *zap.Logger, observer Observer, consumers ...ChangeEventConsumer) *Dispatcher {
	if observer == nil {
		observer = nopObserver{}
	}
	d := &Dispatcher{
		consumers: make(map[models.ChangeKind]ChangeEventConsumer, len(consumers)),
		observer:  observer,
		logger:    logger,
	}
	for _, c := range consumers {
		d.consumers[c.Kind()] = c
	}
	return d
}

// Dispatch runs the consumer for event to completion and returns its outcome.
// A panicking consumer is recovered and reported as OutcomeInternalError.
func (d *Dispatcher) Dispatch(ctx context.Context, event models.ChangeEvent) (outcome Outcome) {
	if event == nil {
		d.logger.Info("no data associated with the event")
		return OutcomeNoPayload
	}

	meta := event.Meta()
	ctx = logger.WithEventID(ctx, meta.EventID)
	d.observer.ObserveEvent(string(event.Kind()))

	consumer, ok := d.consumers[event.Kind()]
	if !ok {
		d.logger.Warn("no consumer registered for event",
			zap.String("event_id", meta.EventID),
			zap.String("event_type", string(event.Kind())),
		)
		d.observer.ObserveOutcome("none", string(OutcomeUnsupportedEvent))
		return OutcomeUnsupportedEvent
	}

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("consumer panicked",
				zap.String("event_id", meta.EventID),
				zap.String("order_id", meta.OrderID),
				zap.String("panic", fmt.Sprint(r)),
			)
			outcome = OutcomeInternalError
		}
		d.observer.ObserveOutcome(string(consumer.NotificationKind()), string(outcome))
	}()

	return consumer.Handle(ctx, event)
}
