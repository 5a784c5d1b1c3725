package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher sends booking events to the broker.
type Publisher interface {
	Publish(ctx context.Context, ev BookingEvent) error
}

// NoopPublisher drops every event.  It is used when no broker URL is
// configured.
type NoopPublisher struct{}

// Publish does nothing.
func (NoopPublisher) Publish(context.Context, BookingEvent) error { return nil }

// DefaultDialTimeout bounds how long a publish waits for the broker
// connection, so an unreachable broker cannot stall the HTTP response.
const DefaultDialTimeout = 3 * time.Second

// AMQPPublisher publishes each event to the durable queue named after its
// type through the default exchange.  A connection is dialled per
// publish; booking traffic is low and this keeps the publisher free of
// reconnect state.
type AMQPPublisher struct {
	url         string
	dialTimeout time.Duration
}

// NewAMQPPublisher returns a publisher for the broker at url using
// DefaultDialTimeout.
func NewAMQPPublisher(url string) *AMQPPublisher {
	return NewAMQPPublisherWithTimeout(url, DefaultDialTimeout)
}

// NewAMQPPublisherWithTimeout is NewAMQPPublisher with an explicit dial
// timeout.  Non-positive values fall back to DefaultDialTimeout.
func NewAMQPPublisherWithTimeout(url string, timeout time.Duration) *AMQPPublisher {
	if timeout <= 0 {
		timeout = DefaultDialTimeout
	}
	return &AMQPPublisher{url: url, dialTimeout: timeout}
}

// NewPublisher returns an AMQPPublisher when url is set, otherwise a
// NoopPublisher.
func NewPublisher(url string) Publisher {
	if url == "" {
		return NoopPublisher{}
	}
	return NewAMQPPublisher(url)
}

// Publish marshals the event and publishes it as a persistent message.
func (p *AMQPPublisher) Publish(ctx context.Context, ev BookingEvent) error {
	timeout := p.dialTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}
	if timeout <= 0 {
		return fmt.Errorf("rabbitmq dial: %w", context.DeadlineExceeded)
	}
	conn, err := amqp.DialConfig(p.url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(timeout),
	})
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(
		ev.Type, // name
		true,    // durable
		false,   // autoDelete
		false,   // exclusive
		false,   // noWait
		nil,     // args
	); err != nil {
		return fmt.Errorf("rabbitmq queue declare %s: %w", ev.Type, err)
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.EventID,
		Type:         ev.Type,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", ev.Type, false, false, pub); err != nil {
		return fmt.Errorf("rabbitmq publish %s: %w", ev.Type, err)
	}
	return nil
}
