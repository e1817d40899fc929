package services

import (
	"errors"
	"fmt"

	"github.com/rayhandestian/quickbites/models"
)

const (
	titleOrderCreated      = "Pesanan Baru Diterima!"
	bodyOrderCreatedFormat = "Anda telah menerima pesanan baru dengan total Rp%s."
	titleStatusChanged     = "Update Status Pesanan"
)

// statusBodies is the allow-list of statuses that notify the buyer. Pending is
// the initial state and never notifies.
var statusBodies = models.StatusText{
	Pending:        "",
	Processing:     "Pesanan Anda sedang dibuat oleh penjual.",
	ReadyForPickup: "Pesanan Anda sudah siap untuk diambil!",
	Completed:      "Pesanan Anda telah selesai. Terima kasih!",
	Cancelled:      "Mohon maaf, pesanan Anda telah dibatalkan.",
}

var (
	ErrUnmappedStatus          = errors.New("status has no buyer notification")
	ErrUnknownNotificationKind = errors.New("unknown notification kind")
)

// StatusBody returns the buyer-facing text for status.
func StatusBody(status models.OrderStatus) (string, bool) {
	return statusBodies.For(status)
}

// BuildMessage renders the push payload for ev addressed to token.
func BuildMessage(ev models.NotificationEvent, token string) (*models.PushMessage, error) {
	msg := &models.PushMessage{
		Data: models.PushData{
			OrderID:     ev.OrderID,
			ClickAction: models.ClickActionFlutter,
		},
		Token: token,
	}

	switch ev.Kind {
	case models.KindOrderCreated:
		msg.Notification = models.PushNotification{
			Title: titleOrderCreated,
			Body:  fmt.Sprintf(bodyOrderCreatedFormat, ev.Order.FormattedTotal()),
		}
		msg.Data.Screen = models.ScreenOrderDetails
	case models.KindStatusChanged:
		body, ok := StatusBody(ev.Order.Status)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnmappedStatus, ev.Order.Status)
		}
		msg.Notification = models.PushNotification{
			Title: titleStatusChanged,
			Body:  body,
		}
		msg.Data.Screen = models.ScreenOrderTracker
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownNotificationKind, ev.Kind)
	}
	return msg, nil
}
