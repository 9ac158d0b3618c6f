package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Publisher pushes events onto the booking.confirmed queue. Publish
// failures are logged and returned; callers treat them as non-fatal so
// a broker outage never fails a payment.
type Publisher interface {
	PublishBookingConfirmed(ctx context.Context, event BookingConfirmedEvent) error
}

type amqpPublisher struct {
	url string
	log *zap.Logger
}

func NewPublisher(url string, logger *zap.Logger) Publisher {
	return &amqpPublisher{
		url: url,
		log: logger.With(zap.String("component", "queue_publisher")),
	}
}

func (p *amqpPublisher) PublishBookingConfirmed(ctx context.Context, event BookingConfirmedEvent) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.log.Error("Failed to dial broker", zap.Error(err))
		return fmt.Errorf("amqp dial: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		p.log.Error("Failed to open channel", zap.Error(err))
		return fmt.Errorf("amqp channel: %w", err)
	}
	defer ch.Close()

	// Durable so events survive broker restarts
	if _, err := ch.QueueDeclare(BookingConfirmedQueue, true, false, false, false, nil); err != nil {
		p.log.Error("Failed to declare queue", zap.Error(err))
		return fmt.Errorf("queue declare: %w", err)
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx, "", BookingConfirmedQueue, false, false, pub); err != nil {
		p.log.Error("Failed to publish event",
			zap.String("order_id", event.OrderID), zap.Error(err))
		return fmt.Errorf("publish: %w", err)
	}

	p.log.Info("Booking confirmed event published",
		zap.String("order_id", event.OrderID))

	return nil
}
