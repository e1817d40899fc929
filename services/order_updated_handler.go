package services

import (
	"context"
	"errors"

	"github.com/rayhandestian/quickbites/models"
	"github.com/rayhandestian/quickbites/sender"
	"go.uber.org/zap"
)

// OrderUpdatedHandler tells the buyer when their order moves to a status on
// the notification allow-list.
type OrderUpdatedHandler struct {
	notifier
}

func NewOrderUpdatedHandler(resolver *RecipientResolver, push sender.PushSender, observer Observer, logger *zap.Logger) *OrderUpdatedHandler {
	return &OrderUpdatedHandler{notifier: newNotifier(resolver, push, observer, logger)}
}

func (h *OrderUpdatedHandler) Kind() models.ChangeKind { return models.ChangeOrderUpdated }

func (h *OrderUpdatedHandler) NotificationKind() models.NotificationKind {
	return models.KindStatusChanged
}

func (h *OrderUpdatedHandler) Handle(ctx context.Context, event models.ChangeEvent) Outcome {
	ev, ok := event.(*models.OrderUpdatedEvent)
	if !ok || ev == nil {
		h.logger.Warn("order updated handler got a foreign event")
		return OutcomeUnsupportedEvent
	}
	log := eventLogger(h.logger, ev)

	if ev.Change == nil {
		log.Info("no data associated with the event")
		return OutcomeNoPayload
	}

	before, after := ev.Change.Before, ev.Change.After
	if before == nil || after == nil {
		log.Info("missing data before or after the update",
			zap.Bool("before_exists", before != nil),
			zap.Bool("after_exists", after != nil),
		)
		return OutcomeMissingSnapshot
	}

	log = log.With(
		zap.String("status_before", string(before.Status)),
		zap.String("status_after", string(after.Status)),
	)
	if before.Status == after.Status {
		log.Info("order status has not changed")
		return OutcomeStatusUnchanged
	}

	buyerID := after.BuyerID
	if buyerID == "" {
		log.Info("no buyerId found in the order document")
		return OutcomeMissingRecipientID
	}

	token, ok := h.resolve(ctx, log, "buyer", buyerID)
	if !ok {
		return OutcomeRecipientUnresolvable
	}

	msg, err := BuildMessage(models.NotificationEvent{
		Kind:           models.KindStatusChanged,
		RecipientID:    buyerID,
		OrderID:        ev.OrderID,
		Order:          *after,
		PreviousStatus: before.Status,
	}, token)
	if errors.Is(err, ErrUnmappedStatus) {
		log.Debug("status is not on the notification allow-list")
		return OutcomeUnmappedStatus
	}
	if err != nil {
		log.Error("failed to build notification", zap.Error(err))
		return OutcomeInternalError
	}

	return h.deliver(ctx, log, msg)
}
