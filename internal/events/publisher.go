// Package events publishes completed exchanges to RabbitMQ.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"advisorbot/internal/model"
	"advisorbot/internal/platform/rabbitmq"
)

type Publisher struct {
	conn      *amqp.Connection
	queueName string
}

func NewPublisher(conn *amqp.Connection, queueName string) *Publisher {
	return &Publisher{
		conn:      conn,
		queueName: queueName,
	}
}

func (p *Publisher) PublishExchange(ctx context.Context, event model.ExchangeEvent) error {
	payload, err := Encode(event)
	if err != nil {
		return err
	}

	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	if _, err := rabbitmq.DeclareQueue(ch, p.queueName); err != nil {
		return err
	}

	if err := ch.PublishWithContext(
		ctx,
		"",
		p.queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         payload,
			DeliveryMode: amqp.Persistent,
			Timestamp:    event.OccurredAt,
			Type:         "exchange.completed",
		},
	); err != nil {
		return fmt.Errorf("publish exchange event failed: %w", err)
	}
	return nil
}

// Encode is the wire form shared with the transcript worker.
func Encode(event model.ExchangeEvent) ([]byte, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal exchange event failed: %w", err)
	}
	return payload, nil
}

func Decode(body []byte) (model.ExchangeEvent, error) {
	var event model.ExchangeEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return model.ExchangeEvent{}, fmt.Errorf("decode exchange event failed: %w", err)
	}
	if event.SessionID == "" {
		return model.ExchangeEvent{}, fmt.Errorf("decode exchange event failed: missing session_id")
	}
	return event, nil
}
