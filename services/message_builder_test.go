package services_test

import (
	"testing"

	"github.com/rayhandestian/quickbites/models"
	"github.com/rayhandestian/quickbites/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMessage_OrderCreated(t *testing.T) {
	msg, err := services.BuildMessage(models.NotificationEvent{
		Kind:        models.KindOrderCreated,
		RecipientID: "S1",
		OrderID:     "o1",
		Order:       models.Order{SellerID: "S1", TotalPrice: 50000},
	}, "T1")
	require.NoError(t, err)

	assert.Equal(t, "Pesanan Baru Diterima!", msg.Notification.Title)
	assert.Equal(t, "Anda telah menerima pesanan baru dengan total Rp50000.", msg.Notification.Body)
	assert.Equal(t, models.PushData{
		OrderID:     "o1",
		Screen:      models.ScreenOrderDetails,
		ClickAction: models.ClickActionFlutter,
	}, msg.Data)
	assert.Equal(t, "T1", msg.Token)
}

func TestBuildMessage_StatusChanged(t *testing.T) {
	want := map[models.OrderStatus]string{
		models.StatusProcessing:     "Pesanan Anda sedang dibuat oleh penjual.",
		models.StatusReadyForPickup: "Pesanan Anda sudah siap untuk diambil!",
		models.StatusCompleted:      "Pesanan Anda telah selesai. Terima kasih!",
		models.StatusCancelled:      "Mohon maaf, pesanan Anda telah dibatalkan.",
	}
	for status, body := range want {
		t.Run(string(status), func(t *testing.T) {
			msg, err := services.BuildMessage(models.NotificationEvent{
				Kind:           models.KindStatusChanged,
				OrderID:        "o2",
				Order:          models.Order{Status: status},
				PreviousStatus: models.StatusPending,
			}, "T2")
			require.NoError(t, err)
			assert.Equal(t, "Update Status Pesanan", msg.Notification.Title)
			assert.Equal(t, body, msg.Notification.Body)
			assert.Equal(t, models.ScreenOrderTracker, msg.Data.Screen)
			assert.Equal(t, models.ClickActionFlutter, msg.Data.ClickAction)
			assert.Equal(t, "o2", msg.Data.OrderID)
		})
	}
}

func TestBuildMessage_Deterministic(t *testing.T) {
	ev := models.NotificationEvent{Kind: models.KindOrderCreated, OrderID: "o1", Order: models.Order{TotalPrice: 12500.5}}
	a, err := services.BuildMessage(ev, "T")
	require.NoError(t, err)
	b, err := services.BuildMessage(ev, "T")
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Contains(t, a.Notification.Body, "Rp12500.5.")
}

func TestBuildMessage_UnmappedStatus(t *testing.T) {
	for _, status := range []models.OrderStatus{models.StatusPending, "shipped", ""} {
		_, err := services.BuildMessage(models.NotificationEvent{
			Kind:  models.KindStatusChanged,
			Order: models.Order{Status: status},
		}, "T")
		assert.ErrorIs(t, err, services.ErrUnmappedStatus, "status %q", status)
	}
}

func TestBuildMessage_UnknownKind(t *testing.T) {
	_, err := services.BuildMessage(models.NotificationEvent{Kind: "order_refunded"}, "T")
	assert.ErrorIs(t, err, services.ErrUnknownNotificationKind)
}

func TestStatusBody_OnePerStatus(t *testing.T) {
	seen := map[string]models.OrderStatus{}
	for _, s := range models.KnownStatuses() {
		body, ok := services.StatusBody(s)
		if s == models.StatusPending {
			assert.False(t, ok)
			continue
		}
		require.True(t, ok, "status %q", s)
		prev, dup := seen[body]
		assert.False(t, dup, "%q and %q share a body", s, prev)
		seen[body] = s
	}
	assert.Len(t, seen, 4)
}
