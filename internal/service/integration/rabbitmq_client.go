package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/RubachokBoss/mx-portal/internal/models"
)

type EventPublisher interface {
	PublishPackAssigned(ctx context.Context, event *models.PackAssignedEvent) error
	PublishResultRecorded(ctx context.Context, event *models.ResultRecordedEvent) error
	Close() error
}

type rabbitMQClient struct {
	conn        *amqp091.Connection
	channel     *amqp091.Channel
	exchange    string
	assignedKey string
	resultKey   string
	queueName   string
	logger      zerolog.Logger
}

func NewRabbitMQClient(url, exchange, assignedKey, resultKey, queueName string, logger zerolog.Logger) (EventPublisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	queue, err := channel.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	for _, key := range []string{assignedKey, resultKey} {
		if err := channel.QueueBind(queue.Name, key, exchange, false, nil); err != nil {
			channel.Close()
			conn.Close()
			return nil, fmt.Errorf("failed to bind queue: %w", err)
		}
	}

	logger.Info().
		Str("exchange", exchange).
		Str("queue", queue.Name).
		Msg("Connected to RabbitMQ")

	return &rabbitMQClient{
		conn:        conn,
		channel:     channel,
		exchange:    exchange,
		assignedKey: assignedKey,
		resultKey:   resultKey,
		queueName:   queue.Name,
		logger:      logger,
	}, nil
}

func (c *rabbitMQClient) PublishPackAssigned(ctx context.Context, event *models.PackAssignedEvent) error {
	if err := c.publish(ctx, c.assignedKey, event); err != nil {
		return err
	}

	c.logger.Info().
		Str("student", event.Student).
		Int("pack_id", event.PackID).
		Int("rows_added", event.RowsAdded).
		Msg("Pack assigned event published")

	return nil
}

func (c *rabbitMQClient) PublishResultRecorded(ctx context.Context, event *models.ResultRecordedEvent) error {
	if err := c.publish(ctx, c.resultKey, event); err != nil {
		return err
	}

	c.logger.Info().
		Str("username", event.Username).
		Int("work_id", event.WorkID).
		Int("rows_done", event.RowsDone).
		Msg("Result recorded event published")

	return nil
}

func (c *rabbitMQClient) publish(ctx context.Context, routingKey string, event interface{}) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	publishCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = c.channel.PublishWithContext(
		publishCtx,
		c.exchange, // exchange
		routingKey, // routing key
		false,      // mandatory
		false,      // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
		},
	)

	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	return nil
}

func (c *rabbitMQClient) Close() error {
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			c.logger.Error().Err(err).Msg("Failed to close RabbitMQ channel")
		}
	}

	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			c.logger.Error().Err(err).Msg("Failed to close RabbitMQ connection")
		}
	}

	return nil
}
