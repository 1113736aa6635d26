package rabbit

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/edustack/coursegate/internal/events"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Handler processes one delivery body. Returning an error nacks the message
// back onto the queue for redelivery.
type Handler func(ctx context.Context, body []byte) error

// Consumer drains the mail queues with manual acks: a message is only gone
// from the broker once its handler succeeded.
type Consumer struct {
	conn   *amqp.Connection
	logger *slog.Logger
}

// NewConsumer dials the broker and declares the mail topology so the worker
// can start before the user service ever published anything.
func NewConsumer(url string, logger *slog.Logger) (*Consumer, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}
	if err := declareTopology(ch); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	_ = ch.Close()

	return &Consumer{conn: conn, logger: logger}, nil
}

func (c *Consumer) Close() error { return c.conn.Close() }

// Consume blocks draining one queue until ctx is cancelled or the delivery
// channel closes (broker went away).
func (c *Consumer) Consume(ctx context.Context, queue string, handler Handler) error {
	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("amqp channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	// One unacked message at a time keeps redelivery ordering simple.
	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("amqp qos: %w", err)
	}

	deliveries, err := ch.Consume(
		queue, // queue
		"",    // consumer tag (auto-generated)
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return fmt.Errorf("amqp consume %s: %w", queue, err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("amqp consume %s: delivery channel closed", queue)
			}
			if err := handler(ctx, d.Body); err != nil {
				c.logger.Error("event handler failed, requeueing",
					"queue", queue,
					"err", err,
				)
				_ = d.Nack(false, true)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// Queues lists the queues a mail worker should drain.
func Queues() []string {
	return []string{events.VerificationQueue, events.ResetQueue}
}
