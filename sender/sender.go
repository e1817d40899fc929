package sender

import (
	"context"
	"time"

	"github.com/rayhandestian/quickbites/models"
)

type SendResult struct {
	MessageID string
	SentAt    time.Time
}

// PushSender delivers one push message to one device token. A returned error
// is a transport failure; callers never retry.
type PushSender interface {
	Send(ctx context.Context, msg *models.PushMessage) (SendResult, error)
	Provider() string
}
