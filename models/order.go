package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// OrderStatus is the lifecycle state of an order. The set is closed: values
// outside the constants below are carried as-is but never notified on.
type OrderStatus string

const (
	StatusPending        OrderStatus = "pending"
	StatusProcessing     OrderStatus = "processing"
	StatusReadyForPickup OrderStatus = "ready_for_pickup"
	StatusCompleted      OrderStatus = "completed"
	StatusCancelled      OrderStatus = "cancelled"
)

// KnownStatuses lists every status in lifecycle order.
func KnownStatuses() []OrderStatus {
	return []OrderStatus{
		StatusPending,
		StatusProcessing,
		StatusReadyForPickup,
		StatusCompleted,
		StatusCancelled,
	}
}

// Known reports whether s is one of the declared lifecycle statuses.
func (s OrderStatus) Known() bool {
	for _, k := range KnownStatuses() {
		if s == k {
			return true
		}
	}
	return false
}

// StatusText holds one string per known status. Always build it with an
// unkeyed literal so that adding a status field breaks compilation of every
// table until the new entry is written.
type StatusText struct {
	Pending        string
	Processing     string
	ReadyForPickup string
	Completed      string
	Cancelled      string
}

// For returns the entry for s. ok is false for unknown statuses and for
// statuses whose entry is empty.
func (t StatusText) For(s OrderStatus) (text string, ok bool) {
	switch s {
	case StatusPending:
		text = t.Pending
	case StatusProcessing:
		text = t.Processing
	case StatusReadyForPickup:
		text = t.ReadyForPickup
	case StatusCompleted:
		text = t.Completed
	case StatusCancelled:
		text = t.Cancelled
	default:
		return "", false
	}
	return text, text != ""
}

// Order is a snapshot of an order document as seen by a change event.
type Order struct {
	ID         string      `json:"id,omitempty" bson:"-"`
	SellerID   string      `json:"sellerId" bson:"sellerId" dynamodbav:"sellerId"`
	BuyerID    string      `json:"buyerId" bson:"buyerId" dynamodbav:"buyerId"`
	TotalPrice Price       `json:"totalPrice" bson:"totalPrice" dynamodbav:"totalPrice"`
	Status     OrderStatus `json:"status" bson:"status" dynamodbav:"status"`
}

// UnmarshalJSON reads each field on its own. A field of the wrong type is
// left empty instead of failing the whole document: numeric ids become their
// decimal text and prices may be numbers or numeric strings.
func (o *Order) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*o = Order{
		ID:       looseString(fields["id"]),
		SellerID: looseString(fields["sellerId"]),
		BuyerID:  looseString(fields["buyerId"]),
		Status:   OrderStatus(looseString(fields["status"])),
	}
	if raw, ok := fields["totalPrice"]; ok {
		return o.TotalPrice.UnmarshalJSON(raw)
	}
	return nil
}

// looseString returns a JSON string's value or a JSON number's literal text.
// Anything else yields "".
func looseString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	switch c := raw[0]; {
	case c == '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return s
	case c == '-' || (c >= '0' && c <= '9'):
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return ""
		}
		return n.String()
	}
	return ""
}

// Price is an order total in rupiah. It decodes from a number or a numeric
// string; anything else is zero.
type Price float64

func (p *Price) UnmarshalJSON(data []byte) error {
	*p = parsePrice(looseString(data))
	return nil
}

// UnmarshalBSONValue accepts every BSON numeric type and numeric strings.
func (p *Price) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	v := bson.RawValue{Type: t, Value: data}
	switch t {
	case bsontype.Double:
		*p = Price(v.Double())
	case bsontype.Int32:
		*p = Price(v.Int32())
	case bsontype.Int64:
		*p = Price(v.Int64())
	case bsontype.Decimal128:
		*p = parsePrice(v.Decimal128().String())
	case bsontype.String:
		*p = parsePrice(v.StringValue())
	default:
		*p = 0
	}
	return nil
}

func parsePrice(s string) Price {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return Price(v)
}

// String renders the price in its shortest exact decimal form,
// e.g. 50000 -> "50000", 12500.5 -> "12500.5".
func (p Price) String() string {
	return strconv.FormatFloat(float64(p), 'f', -1, 64)
}

// FormattedTotal renders TotalPrice the way it appears in notification text.
func (o *Order) FormattedTotal() string {
	return o.TotalPrice.String()
}
