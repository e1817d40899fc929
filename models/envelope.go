package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrMalformedEnvelope = errors.New("malformed change envelope")
	ErrUnsupportedEvent  = errors.New("unsupported event type")
)

// ChangeEnvelope is the wire form of a change event on queues and HTTP.
// Snapshots stay raw so that one unreadable side does not reject the whole
// message.
type ChangeEnvelope struct {
	EventID   string          `json:"event_id,omitempty"`
	EventType ChangeKind      `json:"event_type"`
	OrderID   string          `json:"order_id"`
	Before    json.RawMessage `json:"before,omitempty"`
	After     json.RawMessage `json:"after,omitempty"`
	Region    string          `json:"region,omitempty"`
}

// snsEnvelope unwraps the SNS → SQS message wrapper
type snsEnvelope struct {
	Type    string `json:"Type"`
	Message string `json:"Message"`
}

// DecodeChangeEvent parses a change envelope, unwrapping an SNS notification
// first when present.
func DecodeChangeEvent(body []byte, source string) (ChangeEvent, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrMalformedEnvelope)
	}

	var sns snsEnvelope
	if err := json.Unmarshal(body, &sns); err == nil && sns.Type == "Notification" && sns.Message != "" {
		body = []byte(sns.Message)
	}

	var env ChangeEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	return env.ToEvent(source)
}

// ToEvent converts the envelope into a typed change event.
func (env *ChangeEnvelope) ToEvent(source string) (ChangeEvent, error) {
	meta := EventMeta{
		EventID:    env.EventID,
		OrderID:    env.OrderID,
		Source:     source,
		Region:     env.Region,
		ReceivedAt: time.Now().UTC(),
	}
	if meta.EventID == "" {
		meta.EventID = uuid.NewString()
	}

	switch env.EventType {
	case ChangeOrderCreated:
		return &OrderCreatedEvent{
			EventMeta: meta,
			Snapshot:  parseSnapshot(env.After, env.OrderID),
		}, nil
	case ChangeOrderUpdated:
		ev := &OrderUpdatedEvent{EventMeta: meta}
		if isAbsent(env.Before) && isAbsent(env.After) {
			return ev, nil
		}
		ev.Change = &OrderChange{
			Before: parseSnapshot(env.Before, env.OrderID),
			After:  parseSnapshot(env.After, env.OrderID),
		}
		return ev, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedEvent, env.EventType)
	}
}

func isAbsent(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

// parseSnapshot returns nil for absent or unreadable documents.
func parseSnapshot(raw json.RawMessage, orderID string) *Order {
	raw = bytes.TrimSpace(raw)
	if isAbsent(raw) || raw[0] != '{' {
		return nil
	}
	var o Order
	if err := json.Unmarshal(raw, &o); err != nil {
		return nil
	}
	o.ID = orderID
	return &o
}
