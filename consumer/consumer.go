package consumer

import (
	"context"
	"time"

	"github.com/rayhandestian/quickbites/models"
	"github.com/rayhandestian/quickbites/services"
	"go.uber.org/zap"
)

const (
	// receiveErrorBackoff is the pause after a transport receive error.
	receiveErrorBackoff = 5 * time.Second
	// ackTimeout bounds the delete or ack that follows a dispatch.
	ackTimeout = 10 * time.Second
)

// Dispatcher runs one change event to completion. *services.Dispatcher
// implements it.
type Dispatcher interface {
	Dispatch(ctx context.Context, event models.ChangeEvent) services.Outcome
}

// process decodes body and dispatches it. ok is false when the body could not
// be decoded; callers acknowledge the message either way. Cancelling ctx stops
// nothing here: once a message is taken it is dispatched to completion.
func process(ctx context.Context, d Dispatcher, logger *zap.Logger, body []byte, source string) (outcome services.Outcome, ok bool) {
	event, err := models.DecodeChangeEvent(body, source)
	if err != nil {
		logger.Error("failed to decode change event", zap.String("source", source), zap.Error(err))
		return "", false
	}
	return d.Dispatch(context.WithoutCancel(ctx), event), true
}

// ackContext keeps the values of ctx but not its cancellation, so a message
// that was dispatched during shutdown is still acknowledged.
func ackContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), ackTimeout)
}

// sleep waits for d or until ctx is done, whichever comes first.
func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
