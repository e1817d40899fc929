package consumer

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rayhandestian/quickbites/models"
	"go.uber.org/zap"
)

const sourceRabbitMQ = "rabbitmq"

// RabbitMQConfig names the topic exchange and the durable queue bound to it.
type RabbitMQConfig struct {
	URL      string
	Exchange string
	Queue    string
}

// RabbitMQConsumer receives change envelopes from a queue bound to the order
// routing keys. Deliveries are acked manually after dispatch.
type RabbitMQConsumer struct {
	conn       *amqp.Connection
	channel    *amqp.Channel
	config     RabbitMQConfig
	dispatcher Dispatcher
	logger     *zap.Logger
}

// NewRabbitMQConsumer connects with retry and declares the exchange, the queue
// and its bindings.
func NewRabbitMQConsumer(config RabbitMQConfig, d Dispatcher, logger *zap.Logger) (*RabbitMQConsumer, error) {
	if config.Exchange == "" {
		return nil, fmt.Errorf("exchange name cannot be empty")
	}
	if config.Queue == "" {
		return nil, fmt.Errorf("queue name cannot be empty")
	}
	logger = logger.With(zap.String("source", sourceRabbitMQ))

	var conn *amqp.Connection
	var err error
	for i := 0; i < 5; i++ {
		conn, err = amqp.Dial(config.URL)
		if err == nil {
			break
		}
		retryTime := time.Duration(i*i)*time.Second + time.Second
		logger.Warn("failed to connect to RabbitMQ, retrying",
			zap.Duration("retry_in", retryTime),
			zap.Error(err),
		)
		time.Sleep(retryTime)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ after retries: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := declareTopology(channel, config); err != nil {
		channel.Close()
		conn.Close()
		return nil, err
	}

	return &RabbitMQConsumer{
		conn:       conn,
		channel:    channel,
		config:     config,
		dispatcher: d,
		logger:     logger,
	}, nil
}

func declareTopology(ch *amqp.Channel, config RabbitMQConfig) error {
	err := ch.ExchangeDeclare(
		config.Exchange, // name
		"topic",         // type
		true,            // durable
		false,           // auto-deleted
		false,           // internal
		false,           // no-wait
		nil,             // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", config.Exchange, err)
	}

	q, err := ch.QueueDeclare(
		config.Queue, // name
		true,         // durable
		false,        // delete when unused
		false,        // exclusive
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", config.Queue, err)
	}

	for _, key := range []models.ChangeKind{models.ChangeOrderCreated, models.ChangeOrderUpdated} {
		if err := ch.QueueBind(q.Name, string(key), config.Exchange, false, nil); err != nil {
			return fmt.Errorf("failed to bind queue %s to exchange %s with key %s: %w",
				q.Name, config.Exchange, key, err)
		}
	}

	return ch.Qos(
		1,     // prefetch count
		0,     // prefetch size
		false, // global
	)
}

// Start consumes until ctx is done or the broker closes the delivery channel.
func (c *RabbitMQConsumer) Start(ctx context.Context) error {
	msgs, err := c.channel.Consume(
		c.config.Queue, // queue
		"",             // consumer
		false,          // auto-ack
		false,          // exclusive
		false,          // no-local
		false,          // no-wait
		nil,            // args
	)
	if err != nil {
		return fmt.Errorf("failed to start consuming from queue %s: %w", c.config.Queue, err)
	}

	c.logger.Info("RabbitMQ consumer started",
		zap.String("exchange", c.config.Exchange),
		zap.String("queue", c.config.Queue),
	)
	c.consume(ctx, msgs)
	return nil
}

func (c *RabbitMQConsumer) consume(ctx context.Context, msgs <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("RabbitMQ consumer shutting down")
			return
		case msg, ok := <-msgs:
			if !ok {
				c.logger.Warn("RabbitMQ delivery channel closed")
				return
			}
			c.handleDelivery(ctx, msg)
		}
	}
}

// handleDelivery dispatches msg and acks it whatever the outcome.
func (c *RabbitMQConsumer) handleDelivery(ctx context.Context, msg amqp.Delivery) {
	process(ctx, c.dispatcher, c.logger.With(zap.String("routing_key", msg.RoutingKey)), msg.Body, sourceRabbitMQ)
	if err := msg.Ack(false); err != nil {
		c.logger.Error("failed to ack RabbitMQ delivery", zap.Error(err))
	}
}

func (c *RabbitMQConsumer) Close() error {
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			return err
		}
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
