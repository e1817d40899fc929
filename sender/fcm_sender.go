package sender

import (
	"context"
	"fmt"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/rayhandestian/quickbites/models"
)

// FCMClient is the part of the Firebase messaging client the sender uses.
type FCMClient interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

type FCMSender struct {
	client FCMClient
}

// NewFCMSender sends through the messaging client of app.
func NewFCMSender(ctx context.Context, app *firebase.App) (*FCMSender, error) {
	if app == nil {
		return nil, fmt.Errorf("firebase app not initialised")
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to init firebase messaging: %w", err)
	}
	return NewFCMSenderWithClient(client), nil
}

func NewFCMSenderWithClient(client FCMClient) *FCMSender {
	return &FCMSender{client: client}
}

func (s *FCMSender) Provider() string { return "fcm" }

func (s *FCMSender) Send(ctx context.Context, msg *models.PushMessage) (SendResult, error) {
	id, err := s.client.Send(ctx, toFCMMessage(msg))
	if err != nil {
		return SendResult{}, fmt.Errorf("fcm send failed: %w", err)
	}
	return SendResult{MessageID: id, SentAt: time.Now()}, nil
}

func toFCMMessage(msg *models.PushMessage) *messaging.Message {
	return &messaging.Message{
		Token: msg.Token,
		Notification: &messaging.Notification{
			Title: msg.Notification.Title,
			Body:  msg.Notification.Body,
		},
		Data: msg.Data.Map(),
	}
}
