package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"ink2deck/internal/model"
)

// ConversionPublisher sends conversion events to a durable queue, one short
// lived channel per publish.
type ConversionPublisher struct {
	conn      *amqp.Connection
	queueName string
}

func NewConversionPublisher(conn *amqp.Connection, queueName string) *ConversionPublisher {
	return &ConversionPublisher{
		conn:      conn,
		queueName: queueName,
	}
}

func (p *ConversionPublisher) Publish(ctx context.Context, event model.ConversionEvent) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	if err := DeclareQueue(ch, p.queueName); err != nil {
		return err
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal conversion event failed: %w", err)
	}

	if err := ch.PublishWithContext(
		ctx,
		"",
		p.queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Type:         "conversion.completed",
			Timestamp:    event.CreatedAt,
			Body:         payload,
			DeliveryMode: amqp.Persistent,
		},
	); err != nil {
		return fmt.Errorf("publish conversion event failed: %w", err)
	}
	return nil
}
