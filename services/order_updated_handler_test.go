package services_test

import (
	"context"
	"testing"

	"github.com/rayhandestian/quickbites/models"
	"github.com/rayhandestian/quickbites/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func order(buyerID string, status models.OrderStatus) *models.Order {
	return &models.Order{SellerID: "S1", BuyerID: buyerID, TotalPrice: 25000, Status: status}
}

func TestOrderUpdatedHandler_NotifiesBuyer(t *testing.T) {
	f := newFixture(&models.User{ID: "B1", FCMToken: "T2"})

	outcome := f.updated.Handle(context.Background(),
		updatedEvent("o2", order("B1", models.StatusPending), order("B1", models.StatusProcessing)))

	assert.Equal(t, services.OutcomeSent, outcome)
	require.Equal(t, 1, f.sender.calls())
	msg := f.sender.sent[0]
	assert.Equal(t, "T2", msg.Token)
	assert.Equal(t, "Update Status Pesanan", msg.Notification.Title)
	assert.Equal(t, "Pesanan Anda sedang dibuat oleh penjual.", msg.Notification.Body)
	assert.Equal(t, models.ScreenOrderTracker, msg.Data.Screen)
	assert.Equal(t, "o2", msg.Data.OrderID)
}

func TestOrderUpdatedHandler_EveryAllowedTransitionSendsOnce(t *testing.T) {
	for _, to := range []models.OrderStatus{
		models.StatusProcessing,
		models.StatusReadyForPickup,
		models.StatusCompleted,
		models.StatusCancelled,
	} {
		t.Run(string(to), func(t *testing.T) {
			f := newFixture(&models.User{ID: "B1", FCMToken: "T2"})

			outcome := f.updated.Handle(context.Background(),
				updatedEvent("o2", order("B1", models.StatusPending), order("B1", to)))

			assert.Equal(t, services.OutcomeSent, outcome)
			require.Equal(t, 1, f.sender.calls())
			want, _ := services.StatusBody(to)
			assert.Equal(t, want, f.sender.sent[0].Notification.Body)
		})
	}
}

func TestOrderUpdatedHandler_StatusUnchanged(t *testing.T) {
	f := newFixture(&models.User{ID: "B1", FCMToken: "T2"})
	before := order("B1", models.StatusProcessing)
	after := order("B1", models.StatusProcessing)
	after.TotalPrice = 30000

	outcome := f.updated.Handle(context.Background(), updatedEvent("o2", before, after))

	assert.Equal(t, services.OutcomeStatusUnchanged, outcome)
	assert.Zero(t, f.sender.calls())
	assert.Equal(t, 1, f.logs.FilterMessage("order status has not changed").Len())
}

func TestOrderUpdatedHandler_UnmappedStatus(t *testing.T) {
	for _, to := range []models.OrderStatus{"shipped", models.StatusPending, ""} {
		t.Run(string(to), func(t *testing.T) {
			f := newFixture(&models.User{ID: "B1", FCMToken: "T2"})

			outcome := f.updated.Handle(context.Background(),
				updatedEvent("o2", order("B1", models.StatusProcessing), order("B1", to)))

			assert.Equal(t, services.OutcomeUnmappedStatus, outcome)
			assert.Zero(t, f.sender.calls())
		})
	}
}

func TestOrderUpdatedHandler_MissingSnapshots(t *testing.T) {
	tests := []struct {
		name   string
		before *models.Order
		after  *models.Order
	}{
		{name: "before missing", after: order("B1", models.StatusCompleted)},
		{name: "after missing", before: order("B1", models.StatusPending)},
		{name: "both missing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(&models.User{ID: "B1", FCMToken: "T2"})

			outcome := f.updated.Handle(context.Background(), updatedEvent("o2", tt.before, tt.after))

			assert.Equal(t, services.OutcomeMissingSnapshot, outcome)
			assert.Zero(t, f.sender.calls())
			entries := f.logs.FilterMessage("missing data before or after the update").All()
			require.Len(t, entries, 1)
			assert.Equal(t, tt.before != nil, entries[0].ContextMap()["before_exists"])
			assert.Equal(t, tt.after != nil, entries[0].ContextMap()["after_exists"])
		})
	}
}

func TestOrderUpdatedHandler_NoChangePayload(t *testing.T) {
	f := newFixture()
	ev := updatedEvent("o2", nil, nil)
	ev.Change = nil

	assert.Equal(t, services.OutcomeNoPayload, f.updated.Handle(context.Background(), ev))
	assert.Zero(t, f.sender.calls())
}

func TestOrderUpdatedHandler_MissingBuyer(t *testing.T) {
	f := newFixture()

	outcome := f.updated.Handle(context.Background(),
		updatedEvent("o2", order("", models.StatusPending), order("", models.StatusCompleted)))

	assert.Equal(t, services.OutcomeMissingRecipientID, outcome)
	assert.Zero(t, f.sender.calls())
}

func TestOrderUpdatedHandler_UsesBuyerFromAfterImage(t *testing.T) {
	f := newFixture(
		&models.User{ID: "B1", FCMToken: "T-old"},
		&models.User{ID: "B2", FCMToken: "T-new"},
	)

	outcome := f.updated.Handle(context.Background(),
		updatedEvent("o2", order("B1", models.StatusPending), order("B2", models.StatusReadyForPickup)))

	assert.Equal(t, services.OutcomeSent, outcome)
	require.Equal(t, 1, f.sender.calls())
	assert.Equal(t, "T-new", f.sender.sent[0].Token)
}

func TestOrderUpdatedHandler_BuyerWithoutToken(t *testing.T) {
	f := newFixture(&models.User{ID: "B1"})

	outcome := f.updated.Handle(context.Background(),
		updatedEvent("o2", order("B1", models.StatusPending), order("B1", models.StatusCancelled)))

	assert.Equal(t, services.OutcomeRecipientUnresolvable, outcome)
	assert.Zero(t, f.sender.calls())
}

func TestOrderUpdatedHandler_DeliveryFailureIsSwallowed(t *testing.T) {
	f := newFixture(&models.User{ID: "B1", FCMToken: "T2"})
	f.sender.err = errTransport

	var outcome services.Outcome
	assert.NotPanics(t, func() {
		outcome = f.updated.Handle(context.Background(),
			updatedEvent("o2", order("B1", models.StatusPending), order("B1", models.StatusCompleted)))
	})

	assert.Equal(t, services.OutcomeDeliveryFailed, outcome)
	assert.False(t, outcome.Delivered())
	assert.Equal(t, 1, f.sender.calls())
}
