package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/wolfman30/ares-whatsapp-router/pkg/logging"
)

type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitPublisher publishes envelopes to a durable topic exchange, using
// the event type as routing key.
type RabbitPublisher struct {
	conn        *amqp.Connection
	openChannel func() (amqpChannel, error)
	exchange    string
	logger      *logging.Logger
}

// NewRabbitPublisher dials url and declares the topic exchange.
func NewRabbitPublisher(url, exchange string, logger *logging.Logger) (*RabbitPublisher, error) {
	if logger == nil {
		logger = logging.Default()
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("events: dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("events: open channel: %w", err)
	}
	defer ch.Close()
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("events: declare exchange %s: %w", exchange, err)
	}

	return &RabbitPublisher{
		conn: conn,
		openChannel: func() (amqpChannel, error) {
			return conn.Channel()
		},
		exchange: exchange,
		logger:   logger,
	}, nil
}

func (p *RabbitPublisher) Publish(ctx context.Context, env Envelope) error {
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("events: marshal envelope: %w", err)
	}
	ch, err := p.openChannel()
	if err != nil {
		return fmt.Errorf("events: open channel: %w", err)
	}
	defer ch.Close()

	msgID := env.Meta.ID
	if msgID == "" {
		msgID = uuid.NewString()
	}
	err = ch.PublishWithContext(ctx, p.exchange, env.Meta.Type, false, false, amqp.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp.Persistent,
		MessageId:     msgID,
		CorrelationId: env.Meta.CorrelationID,
		Timestamp:     time.Now(),
		Body:          body,
	})
	if err != nil {
		return fmt.Errorf("events: publish %s: %w", env.Meta.Type, err)
	}
	p.logger.Debug("event published", "exchange", p.exchange, "key", env.Meta.Type, "event_id", msgID)
	return nil
}

func (p *RabbitPublisher) Close() error {
	if p.conn == nil {
		return nil
	}
	return p.conn.Close()
}
