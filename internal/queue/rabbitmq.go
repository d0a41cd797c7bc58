package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

const exchangeName = "kisanvaani_events"

// Event routing keys published over the call lifecycle.
const (
	EventCallAnswered  = "call.answered"
	EventCallCompleted = "call.completed"
)

// Publisher emits call lifecycle events for CDR and analytics consumers.
// A nil Publisher is valid and drops every event, so call paths never
// branch on whether the bus is configured.
type Publisher struct {
	ch  *amqp091.Channel
	log zerolog.Logger
}

func NewPublisher(ch *amqp091.Channel, log zerolog.Logger) *Publisher {
	return &Publisher{ch: ch, log: log}
}

func (p *Publisher) PublishJSON(ctx context.Context, routingKey string, body interface{}) error {
	if p == nil {
		return nil
	}
	jsonBody, err := json.Marshal(body)
	if err != nil {
		p.log.Error().Err(err).Msg("Failed to marshal event payload")
		return err
	}

	p.log.Debug().Str("routing_key", routingKey).Bytes("payload", jsonBody).Msg("Publishing event")

	err = p.ch.PublishWithContext(
		ctx,
		exchangeName,
		routingKey,
		false,
		false,
		amqp091.Publishing{
			ContentType:  "application/json",
			Body:         jsonBody,
			DeliveryMode: amqp091.Persistent,
		},
	)
	if err != nil {
		p.log.Error().Err(err).Str("routing_key", routingKey).Msg("Failed to publish event")
		return err
	}
	return nil
}

// Connect dials RabbitMQ with retries and declares the topic exchange.
func Connect(ctx context.Context, url string, log zerolog.Logger) (*amqp091.Channel, <-chan *amqp091.Error, error) {
	var conn *amqp091.Connection
	var err error

	config := amqp091.Config{
		Heartbeat: 60 * time.Second,
		Locale:    "en_US",
	}

	const maxAttempts = 10
	for i := 0; i < maxAttempts; i++ {
		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		default:
		}

		conn, err = amqp091.DialConfig(url, config)
		if err == nil {
			log.Info().Msg("Connected to RabbitMQ")
			ch, chErr := conn.Channel()
			if chErr != nil {
				return nil, nil, fmt.Errorf("failed to open rabbitmq channel: %w", chErr)
			}
			if declErr := ch.ExchangeDeclare(exchangeName, "topic", true, false, false, false, nil); declErr != nil {
				return nil, nil, fmt.Errorf("failed to declare exchange: %w", declErr)
			}
			closeChan := make(chan *amqp091.Error)
			conn.NotifyClose(closeChan)
			return ch, closeChan, nil
		}
		log.Warn().Err(err).Int("attempt", i+1).Int("max_attempts", maxAttempts).Msg("RabbitMQ connection failed, retrying in 5s...")

		select {
		case <-time.After(5 * time.Second):
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		}
	}
	return nil, nil, fmt.Errorf("could not connect to rabbitmq after %d attempts: %w", maxAttempts, err)
}
