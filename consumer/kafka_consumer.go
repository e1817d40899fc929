package consumer

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const sourceKafka = "kafka"

// KafkaReader is the part of *kafka.Reader the consumer needs.
type KafkaReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// KafkaConsumer reads change envelopes from a topic as part of a consumer
// group. Offsets are committed on read.
type KafkaConsumer struct {
	reader     KafkaReader
	dispatcher Dispatcher
	logger     *zap.Logger
	backoff    time.Duration
}

func NewKafkaConsumer(brokers []string, topic, groupID string, d Dispatcher, logger *zap.Logger) *KafkaConsumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1e3, // 1KB
		MaxBytes: 1e6, // 1MB
	})
	return NewKafkaConsumerWithReader(r, d, logger.With(zap.String("topic", topic)))
}

func NewKafkaConsumerWithReader(reader KafkaReader, d Dispatcher, logger *zap.Logger) *KafkaConsumer {
	return &KafkaConsumer{
		reader:     reader,
		dispatcher: d,
		logger:     logger.With(zap.String("source", sourceKafka)),
		backoff:    receiveErrorBackoff,
	}
}

func (c *KafkaConsumer) Start(ctx context.Context) {
	c.logger.Info("Kafka consumer started")
	defer func() {
		if err := c.reader.Close(); err != nil {
			c.logger.Warn("failed to close Kafka reader", zap.Error(err))
		}
	}()

	for {
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("Kafka consumer shutting down")
				return
			}
			c.logger.Error("failed to read Kafka message", zap.Error(err))
			sleep(ctx, c.backoff)
			continue
		}

		process(ctx, c.dispatcher, c.logger.With(
			zap.Int("partition", m.Partition),
			zap.Int64("offset", m.Offset),
		), m.Value, sourceKafka)
	}
}
