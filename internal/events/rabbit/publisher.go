// Package rabbit is the RabbitMQ driver for the mail-event channel, built on
// amqp091-go. Exchange and queues are durable so pending mail survives broker
// and worker restarts.
package rabbit

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/edustack/coursegate/internal/events"
	amqp "github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 10 * time.Second

// Publisher publishes mail events to the topic exchange. A single channel is
// shared under a mutex; amqp channels are not safe for concurrent publish.
type Publisher struct {
	conn *amqp.Connection

	mu sync.Mutex
	ch *amqp.Channel
}

var _ events.Publisher = (*Publisher)(nil)

// NewPublisher dials the broker and declares the mail topology.
func NewPublisher(url string) (*Publisher, error) {
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

	return &Publisher{conn: conn, ch: ch}, nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	_ = p.ch.Close()
	return p.conn.Close()
}

func (p *Publisher) PublishVerification(ctx context.Context, msg events.VerificationMessage) error {
	return p.publish(ctx, events.VerificationRoutingKey, msg)
}

func (p *Publisher) PublishReset(ctx context.Context, msg events.ResetMessage) error {
	return p.publish(ctx, events.ResetRoutingKey, msg)
}

func (p *Publisher) publish(ctx context.Context, routingKey string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", routingKey, err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.ch.PublishWithContext(ctx,
		events.Exchange, // exchange
		routingKey,      // routing key
		false,           // mandatory
		false,           // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}
	return nil
}

// declareTopology sets up the durable exchange, queues, and bindings shared
// with the consumer side.
func declareTopology(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(
		events.Exchange, // name
		"topic",         // type
		true,            // durable
		false,           // auto-delete
		false,           // internal
		false,           // no-wait
		nil,             // args
	); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	bindings := []struct {
		queue      string
		routingKey string
	}{
		{events.VerificationQueue, events.VerificationRoutingKey},
		{events.ResetQueue, events.ResetRoutingKey},
	}

	for _, b := range bindings {
		if _, err := ch.QueueDeclare(b.queue, true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare queue %s: %w", b.queue, err)
		}
		if err := ch.QueueBind(b.queue, b.routingKey, events.Exchange, false, nil); err != nil {
			return fmt.Errorf("bind queue %s: %w", b.queue, err)
		}
	}

	return nil
}
