package models

import "time"

// ChangeKind identifies which lifecycle trigger produced a change event.
type ChangeKind string

const (
	ChangeOrderCreated ChangeKind = "order.created"
	ChangeOrderUpdated ChangeKind = "order.updated"
)

// ChangeEvent is one document change on the orders collection, as delivered
// by any event source.
type ChangeEvent interface {
	Kind() ChangeKind
	Meta() EventMeta
}

// EventMeta carries the trigger metadata shared by every change event.
type EventMeta struct {
	EventID    string
	OrderID    string
	Source     string
	Region     string
	ReceivedAt time.Time
}

// OrderCreatedEvent fires once per newly created order. Snapshot is nil when
// the trigger delivered no document data.
type OrderCreatedEvent struct {
	EventMeta
	Snapshot *Order
}

func (e *OrderCreatedEvent) Kind() ChangeKind { return ChangeOrderCreated }

func (e *OrderCreatedEvent) Meta() EventMeta {
	if e == nil {
		return EventMeta{}
	}
	return e.EventMeta
}

// OrderChange holds the two sides of an update. A nil side means the trigger
// could not provide that snapshot.
type OrderChange struct {
	Before *Order
	After  *Order
}

// OrderUpdatedEvent fires once per modification of an existing order. Change
// is nil when the trigger delivered no change data at all.
type OrderUpdatedEvent struct {
	EventMeta
	Change *OrderChange
}

func (e *OrderUpdatedEvent) Kind() ChangeKind { return ChangeOrderUpdated }

func (e *OrderUpdatedEvent) Meta() EventMeta {
	if e == nil {
		return EventMeta{}
	}
	return e.EventMeta
}
