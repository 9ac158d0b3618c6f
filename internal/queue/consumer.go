package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"tour-booking/pkg/mailer"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Consumer drains the booking.confirmed queue and sends confirmation
// emails. It runs a reconnect loop with exponential backoff until the
// context is cancelled.
type Consumer struct {
	url    string
	mailer mailer.Mailer
	log    *zap.Logger
}

func NewConsumer(url string, m mailer.Mailer, logger *zap.Logger) *Consumer {
	return &Consumer{
		url:    url,
		mailer: m,
		log:    logger.With(zap.String("component", "queue_consumer")),
	}
}

// Start blocks until ctx is cancelled. Run it in its own goroutine.
func (c *Consumer) Start(ctx context.Context) {
	backoff := time.Second

	for {
		if ctx.Err() != nil {
			return
		}

		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.log.Warn("Failed to dial broker, retrying",
				zap.Duration("backoff", backoff), zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		if err := c.consumeLoop(ctx, conn); err != nil {
			c.log.Warn("Consume loop ended, reconnecting", zap.Error(err))
		}
		conn.Close()

		select {
		case <-ctx.Done():
			return
		case <-time.After(2 * time.Second):
		}
	}
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer ch.Close()

	if err := ch.Qos(20, 0, false); err != nil {
		c.log.Warn("Set QoS failed", zap.Error(err))
	}

	if _, err := ch.QueueDeclare(BookingConfirmedQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(BookingConfirmedQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := c.handleMessage(d.Body); err != nil {
				c.log.Error("Failed to handle event", zap.Error(err))
				// Reject without requeue to avoid a poison-message loop
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (c *Consumer) handleMessage(body []byte) error {
	var event BookingConfirmedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("unmarshal event: %w", err)
	}

	if err := c.mailer.SendBookingConfirmation(
		event.CustomerEmail,
		event.CustomerName,
		event.OrderID,
		event.TourName,
		event.DepartureDate,
		event.TotalPrice,
	); err != nil {
		return fmt.Errorf("send confirmation email: %w", err)
	}

	c.log.Info("Booking confirmation email sent",
		zap.String("order_id", event.OrderID))

	return nil
}
