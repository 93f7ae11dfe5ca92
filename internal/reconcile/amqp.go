package reconcile

import (
	"context"
	"fmt"

	"github.com/streadway/amqp"

	"resume-builder/internal/queue"
	"resume-builder/internal/shared/telemetry"
)

// Delivery is the subset of amqp.Delivery the consumer acknowledges through.
type Delivery interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

// AMQPConsumer drains the alert queue on a RabbitMQ broker.
type AMQPConsumer struct {
	URL       string
	Queue     string
	Processor *Processor
	Prefetch  int
}

// Run consumes until ctx is cancelled or the broker closes the channel.
func (c *AMQPConsumer) Run(ctx context.Context) error {
	conn, err := amqp.Dial(c.URL)
	if err != nil {
		return fmt.Errorf("amqp dial: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("amqp channel: %w", err)
	}
	defer ch.Close()

	if err := queue.DeclareQueue(ch, c.Queue); err != nil {
		return err
	}
	if err := ch.Qos(max(1, c.Prefetch), 0, false); err != nil {
		return fmt.Errorf("amqp qos: %w", err)
	}
	deliveries, err := ch.Consume(c.Queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("amqp consume: %w", err)
	}
	telemetry.Info("reconcile.amqp.started", map[string]any{"queue": c.Queue})

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("amqp deliveries closed")
			}
			c.HandleDelivery(ctx, d.Body, d)
		}
	}
}

// HandleDelivery processes one payload: processed and invalid messages are acked,
// transient failures are requeued.
func (c *AMQPConsumer) HandleDelivery(ctx context.Context, body []byte, d Delivery) {
	err := c.Processor.HandleBody(ctx, string(body))
	switch {
	case err == nil:
		_ = d.Ack(false)
	case Permanent(err):
		telemetry.Error("reconcile.amqp.invalid_message", map[string]any{
			"body_len": len(body),
			"error":    err.Error(),
		})
		_ = d.Ack(false)
	default:
		telemetry.Error("reconcile.amqp.failed", map[string]any{"error": err.Error()})
		_ = d.Nack(false, true)
	}
}
