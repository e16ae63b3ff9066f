// Package broker publishes notification envelopes to a RabbitMQ exchange.
package broker

import (
	"context"
	"errors"
	"fmt"

	"github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/ed-sim/ed-sim/sink"
)

const mimeApplicationJSON = "application/json"

// Config configures the AMQP connection. The sink is disabled when URL is empty.
type Config struct {
	URL        string `yaml:"url" validate:"omitempty,url"`
	Exchange   string `yaml:"exchange" validate:"required_with=URL"`
	RoutingKey string `yaml:"routing_key"`
}

// Enabled reports whether a broker URL is configured.
func (c Config) Enabled() bool {
	return c.URL != ""
}

// Channel is the subset of *amqp091.Channel the publisher uses.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
}

// Publisher sends each envelope as a persistent JSON message. The routing key is the
// configured prefix followed by the notification kind, e.g. "edsim.visit-created".
type Publisher struct {
	ch       Channel
	exchange string
	prefix   string
}

// NewPublisher wraps an open channel.
func NewPublisher(ch Channel, exchange, routingKey string) *Publisher {
	return &Publisher{ch: ch, exchange: exchange, prefix: routingKey}
}

func (p *Publisher) Name() string { return "amqp" }

func (p *Publisher) Deliver(ctx context.Context, env sink.Envelope) error {
	body, err := env.Marshal()
	if err != nil {
		return fmt.Errorf("marshalling envelope %s: %w", env.ID, err)
	}

	msg := amqp091.Publishing{
		ContentType:  mimeApplicationJSON,
		Body:         body,
		DeliveryMode: amqp091.Persistent,
		MessageId:    env.ID,
		Timestamp:    env.At,
		Type:         string(env.Kind),
		Headers: amqp091.Table{
			"department_id": env.DepartmentID,
		},
	}
	if err := p.ch.PublishWithContext(ctx, p.exchange, p.routingKey(env), false, false, msg); err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}

func (p *Publisher) routingKey(env sink.Envelope) string {
	if p.prefix == "" {
		return string(env.Kind)
	}
	return p.prefix + "." + string(env.Kind)
}

// Dial connects, opens a channel and declares a durable topic exchange. The returned
// close function releases the channel and the connection.
func Dial(cfg Config) (*Publisher, func() error, error) {
	conn, err := amqp091.Dial(cfg.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to rabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("failed to open rabbitMQ channel: %w", err)
	}
	err = ch.ExchangeDeclare(
		cfg.Exchange, // name
		"topic",      // kind
		true,         // durable
		false,        // autoDelete
		false,        // internal
		false,        // noWait
		nil,          // args
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, nil, fmt.Errorf("failed to declare exchange %s: %w", cfg.Exchange, err)
	}
	logrus.Infof("Successfully connected to rabbitMQ, publishing to exchange %s.", cfg.Exchange)

	closeFn := func() error {
		return errors.Join(ch.Close(), conn.Close())
	}
	return NewPublisher(ch, cfg.Exchange, cfg.RoutingKey), closeFn, nil
}
