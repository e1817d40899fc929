package services

import (
	"context"
	"errors"
	"time"

	"github.com/rayhandestian/quickbites/models"
	"github.com/rayhandestian/quickbites/sender"
	"go.uber.org/zap"
)

// ChangeEventConsumer handles one kind of order change event. Handle never
// fails: every problem is logged and reported through the returned Outcome.
type ChangeEventConsumer interface {
	Kind() models.ChangeKind
	NotificationKind() models.NotificationKind
	Handle(ctx context.Context, event models.ChangeEvent) Outcome
}

// Observer receives dispatch metrics. *metrics.Metrics implements it.
type Observer interface {
	ObserveEvent(eventType string)
	ObserveOutcome(kind, outcome string)
	ObserveDelivery(provider string, d time.Duration)
}

type nopObserver struct{}

func (nopObserver) ObserveEvent(string)                   {}
func (nopObserver) ObserveOutcome(string, string)         {}
func (nopObserver) ObserveDelivery(string, time.Duration) {}

// notifier is the resolve → send pipeline shared by both handlers.
type notifier struct {
	resolver *RecipientResolver
	sender   sender.PushSender
	observer Observer
	logger   *zap.Logger
}

func newNotifier(resolver *RecipientResolver, push sender.PushSender, observer Observer, logger *zap.Logger) notifier {
	if observer == nil {
		observer = nopObserver{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return notifier{resolver: resolver, sender: push, observer: observer, logger: logger}
}

func eventLogger(base *zap.Logger, event models.ChangeEvent) *zap.Logger {
	meta := event.Meta()
	return base.With(
		zap.String("event_id", meta.EventID),
		zap.String("event_type", string(event.Kind())),
		zap.String("order_id", meta.OrderID),
		zap.String("source", meta.Source),
	)
}

// resolve looks up the token for userID; role names the participant in logs.
func (n *notifier) resolve(ctx context.Context, log *zap.Logger, role, userID string) (string, bool) {
	token, err := n.resolver.Resolve(ctx, userID)
	if err == nil {
		return token, true
	}

	fields := []zap.Field{zap.String("role", role), zap.String("user_id", userID)}
	switch {
	case errors.Is(err, ErrUserNotFound):
		log.Info("recipient not found", fields...)
	case errors.Is(err, ErrTokenUnavailable):
		log.Info("fcm token not found for recipient", fields...)
	case errors.Is(err, ErrMissingIdentifier):
		log.Info("recipient id missing", fields...)
	default:
		log.Warn("recipient lookup failed", append(fields, zap.Error(err))...)
	}
	return "", false
}

// deliver makes the single send attempt for msg. Transport errors are logged
// and swallowed.
func (n *notifier) deliver(ctx context.Context, log *zap.Logger, msg *models.PushMessage) Outcome {
	log = log.With(zap.String("token", maskToken(msg.Token)), zap.String("provider", n.sender.Provider()))
	log.Info("sending notification")

	start := time.Now()
	res, err := n.sender.Send(ctx, msg)
	n.observer.ObserveDelivery(n.sender.Provider(), time.Since(start))
	if err != nil {
		log.Error("error sending message", zap.Error(err))
		return OutcomeDeliveryFailed
	}

	log.Info("successfully sent message", zap.String("message_id", res.MessageID))
	return OutcomeSent
}

// maskToken keeps the last six characters of a device token for correlation.
func maskToken(token string) string {
	const keep = 6
	if len(token) <= keep {
		return "***"
	}
	return "***" + token[len(token)-keep:]
}
