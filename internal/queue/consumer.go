package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

const (
	consumerPrefetch = 50
	maxBackoff       = 30 * time.Second
)

// Consumer drains the booking.confirmed and booking.cancelled queues and
// hands every event to a Sink.  Malformed messages and sink failures are
// logged and nacked without requeue so a poison message cannot stall the
// queue.
type Consumer struct {
	url  string
	sink Sink
	log  logrus.FieldLogger
}

// NewConsumer returns a consumer for the broker at url.
func NewConsumer(url string, sink Sink, log logrus.FieldLogger) *Consumer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Consumer{url: url, sink: sink, log: log.WithField("component", "booking-consumer")}
}

// Run dials the broker and consumes until ctx is cancelled.  Connection
// failures are retried with exponential backoff capped at 30s.  It only
// returns once ctx is done.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.log.WithError(err).Warnf("failed to dial broker; retrying in %s", backoff)
			if !sleepCtx(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < maxBackoff {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consumeLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.WithError(err).Warn("consume loop ended; reconnecting")
		if !sleepCtx(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(consumerPrefetch, 0, false); err != nil {
		c.log.WithError(err).Warn("set QoS failed")
	}

	confirmed, err := c.subscribe(ch, BookingConfirmedQueue)
	if err != nil {
		return err
	}
	cancelled, err := c.subscribe(ch, BookingCancelledQueue)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-confirmed:
			if !ok {
				return errors.New("booking.confirmed deliveries closed")
			}
			c.deliver(ctx, d)
		case d, ok := <-cancelled:
			if !ok {
				return errors.New("booking.cancelled deliveries closed")
			}
			c.deliver(ctx, d)
		}
	}
}

func (c *Consumer) subscribe(ch *amqp.Channel, queue string) (<-chan amqp.Delivery, error) {
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("queue declare %s: %w", queue, err)
	}
	msgs, err := ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("queue consume %s: %w", queue, err)
	}
	return msgs, nil
}

func (c *Consumer) deliver(ctx context.Context, d amqp.Delivery) {
	if err := c.handleMessage(ctx, d.Body); err != nil {
		c.log.WithError(err).WithField("message_id", d.MessageId).Error("handle message failed")
		_ = d.Nack(false, false)
		return
	}
	_ = d.Ack(false)
}

func (c *Consumer) handleMessage(ctx context.Context, body []byte) error {
	var ev BookingEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.TicketNumber == "" || ev.Type == "" {
		return errors.New("event is missing ticket number or type")
	}
	return c.sink.Write(ctx, ev)
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
