package models

const (
	KindOrderCreated  NotificationKind = "order_created"
	KindStatusChanged NotificationKind = "status_changed"

	ScreenOrderDetails = "order_details"
	ScreenOrderTracker = "order_tracker"

	// ClickActionFlutter makes the Flutter client route the tap through its
	// notification handler.
	ClickActionFlutter = "FLUTTER_NOTIFICATION_CLICK"
)

type NotificationKind string

// NotificationEvent describes one notification decision. It lives only for the
// duration of a handler invocation.
type NotificationEvent struct {
	Kind           NotificationKind
	RecipientID    string
	OrderID        string
	Order          Order
	PreviousStatus OrderStatus
}

type PushNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type PushData struct {
	OrderID     string `json:"orderId"`
	Screen      string `json:"screen"`
	ClickAction string `json:"clickAction"`
}

// Map returns the data block as the flat string map push transports expect.
func (d PushData) Map() map[string]string {
	return map[string]string{
		"orderId":     d.OrderID,
		"screen":      d.Screen,
		"clickAction": d.ClickAction,
	}
}

// PushMessage is the outbound payload handed to a push transport.
type PushMessage struct {
	Notification PushNotification `json:"notification"`
	Data         PushData         `json:"data"`
	Token        string           `json:"token"`
}
