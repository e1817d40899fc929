package sender

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/rayhandestian/quickbites/models"
)

// SNSAPI is the subset of the SNS client used for mobile push.
type SNSAPI interface {
	CreatePlatformEndpoint(ctx context.Context, params *sns.CreatePlatformEndpointInput, optFns ...func(*sns.Options)) (*sns.CreatePlatformEndpointOutput, error)
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSSender delivers through an SNS platform application backed by FCM.
// Endpoints are created on demand; SNS returns the existing endpoint when the
// token is already registered.
type SNSSender struct {
	client         SNSAPI
	platformAppARN string
}

func NewSNSSender(cfg aws.Config, platformAppARN string) (*SNSSender, error) {
	return NewSNSSenderWithAPI(sns.NewFromConfig(cfg), platformAppARN)
}

func NewSNSSenderWithAPI(api SNSAPI, platformAppARN string) (*SNSSender, error) {
	if platformAppARN == "" {
		return nil, fmt.Errorf("SNS_PLATFORM_APPLICATION_ARN not set")
	}
	return &SNSSender{client: api, platformAppARN: platformAppARN}, nil
}

func (s *SNSSender) Provider() string { return "sns" }

func (s *SNSSender) Send(ctx context.Context, msg *models.PushMessage) (SendResult, error) {
	endpoint, err := s.client.CreatePlatformEndpoint(ctx, &sns.CreatePlatformEndpointInput{
		PlatformApplicationArn: aws.String(s.platformAppARN),
		Token:                  aws.String(msg.Token),
	})
	if err != nil {
		return SendResult{}, fmt.Errorf("sns create endpoint failed: %w", err)
	}

	body, err := snsMessage(msg)
	if err != nil {
		return SendResult{}, err
	}

	out, err := s.client.Publish(ctx, &sns.PublishInput{
		TargetArn:        endpoint.EndpointArn,
		Message:          aws.String(body),
		MessageStructure: aws.String("json"),
	})
	if err != nil {
		return SendResult{}, fmt.Errorf("sns publish failed: %w", err)
	}
	return SendResult{MessageID: aws.ToString(out.MessageId), SentAt: time.Now()}, nil
}

type fcmV1Payload struct {
	FCMV1Message struct {
		Message struct {
			Notification models.PushNotification `json:"notification"`
			Data         map[string]string       `json:"data"`
		} `json:"message"`
	} `json:"fcmV1Message"`
}

// snsMessage renders the per-protocol JSON document SNS expects when
// MessageStructure is "json".
func snsMessage(msg *models.PushMessage) (string, error) {
	var gcm fcmV1Payload
	gcm.FCMV1Message.Message.Notification = msg.Notification
	gcm.FCMV1Message.Message.Data = msg.Data.Map()

	gcmJSON, err := json.Marshal(gcm)
	if err != nil {
		return "", fmt.Errorf("marshal gcm payload: %w", err)
	}
	doc, err := json.Marshal(map[string]string{
		"default": msg.Notification.Body,
		"GCM":     string(gcmJSON),
	})
	if err != nil {
		return "", fmt.Errorf("marshal sns message: %w", err)
	}
	return string(doc), nil
}
