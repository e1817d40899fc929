package services

import (
	"context"

	"github.com/rayhandestian/quickbites/models"
	"github.com/rayhandestian/quickbites/sender"
	"go.uber.org/zap"
)

// OrderCreatedHandler tells the seller that a new order arrived.
type OrderCreatedHandler struct {
	notifier
}

func NewOrderCreatedHandler(resolver *RecipientResolver, push sender.PushSender, observer Observer, logger *zap.Logger) *OrderCreatedHandler {
	return &OrderCreatedHandler{notifier: newNotifier(resolver, push, observer, logger)}
}

func (h *OrderCreatedHandler) Kind() models.ChangeKind { return models.ChangeOrderCreated }

func (h *OrderCreatedHandler) NotificationKind() models.NotificationKind {
	return models.KindOrderCreated
}

func (h *OrderCreatedHandler) Handle(ctx context.Context, event models.ChangeEvent) Outcome {
	ev, ok := event.(*models.OrderCreatedEvent)
	if !ok || ev == nil {
		h.logger.Warn("order created handler got a foreign event")
		return OutcomeUnsupportedEvent
	}
	log := eventLogger(h.logger, ev)

	if ev.Snapshot == nil {
		log.Info("no data associated with the event")
		return OutcomeNoPayload
	}

	sellerID := ev.Snapshot.SellerID
	if sellerID == "" {
		log.Info("no sellerId found in the order document")
		return OutcomeMissingRecipientID
	}

	token, ok := h.resolve(ctx, log, "seller", sellerID)
	if !ok {
		return OutcomeRecipientUnresolvable
	}

	msg, err := BuildMessage(models.NotificationEvent{
		Kind:        models.KindOrderCreated,
		RecipientID: sellerID,
		OrderID:     ev.OrderID,
		Order:       *ev.Snapshot,
	}, token)
	if err != nil {
		log.Error("failed to build notification", zap.Error(err))
		return OutcomeInternalError
	}

	return h.deliver(ctx, log, msg)
}
