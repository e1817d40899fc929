package consumer

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"go.uber.org/zap"
)

const sourceSQS = "sqs"

type SQSAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// SQSConsumer long-polls a queue that receives order change envelopes, usually
// through an SNS subscription.
type SQSConsumer struct {
	client     SQSAPI
	queueURL   string
	dispatcher Dispatcher
	logger     *zap.Logger
	backoff    time.Duration
}

func NewSQSConsumer(cfg aws.Config, queueURL string, d Dispatcher, logger *zap.Logger) (*SQSConsumer, error) {
	if queueURL == "" {
		return nil, errors.New("SQS_QUEUE_URL not set")
	}
	return NewSQSConsumerWithAPI(sqs.NewFromConfig(cfg), queueURL, d, logger), nil
}

func NewSQSConsumerWithAPI(client SQSAPI, queueURL string, d Dispatcher, logger *zap.Logger) *SQSConsumer {
	return &SQSConsumer{
		client:     client,
		queueURL:   queueURL,
		dispatcher: d,
		logger:     logger.With(zap.String("source", sourceSQS)),
		backoff:    receiveErrorBackoff,
	}
}

func (c *SQSConsumer) Start(ctx context.Context) {
	c.logger.Info("SQS consumer started", zap.String("queue", c.queueURL))
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("SQS consumer shutting down")
			return
		default:
			c.poll(ctx)
		}
	}
}

func (c *SQSConsumer) poll(ctx context.Context) {
	output, err := c.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(c.queueURL),
		MaxNumberOfMessages: 10,
		WaitTimeSeconds:     5,
	})
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		c.logger.Error("SQS receive error", zap.Error(err))
		sleep(ctx, c.backoff)
		return
	}

	for _, msg := range output.Messages {
		// Messages not yet taken go back to the queue after the visibility timeout.
		if ctx.Err() != nil {
			return
		}
		c.processMessage(ctx, msg)
	}
}

// processMessage handles one message and deletes it whatever the outcome.
func (c *SQSConsumer) processMessage(ctx context.Context, msg types.Message) {
	body := aws.ToString(msg.Body)
	if body == "" {
		c.logger.Error("received empty SQS message body")
	} else {
		process(ctx, c.dispatcher, c.logger, []byte(body), sourceSQS)
	}

	if aws.ToString(msg.ReceiptHandle) == "" {
		c.logger.Error("received empty SQS receipt handle")
		return
	}
	c.deleteMessage(ctx, msg.ReceiptHandle)
}

func (c *SQSConsumer) deleteMessage(ctx context.Context, receiptHandle *string) {
	ctx, cancel := ackContext(ctx)
	defer cancel()

	_, err := c.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(c.queueURL),
		ReceiptHandle: receiptHandle,
	})
	if err != nil {
		c.logger.Error("failed to delete SQS message", zap.Error(err))
	}
}
