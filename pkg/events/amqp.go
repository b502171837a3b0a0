package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// AMQPPublisher publishes persistent JSON messages with publisher confirms.
type AMQPPublisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	acks     <-chan amqp.Confirmation
	exchange string
	source   string
	logger   *zap.Logger

	mu sync.Mutex
}

func NewAMQPPublisher(url, exchange, source string, logger *zap.Logger) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}
	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to enable confirms: %w", err)
	}

	return &AMQPPublisher{
		conn:     conn,
		ch:       ch,
		acks:     ch.NotifyPublish(make(chan amqp.Confirmation, 1)),
		exchange: exchange,
		source:   source,
		logger:   logger.Named("events"),
	}, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, e Event) error {
	msg, err := publishing(e, p.source)
	if err != nil {
		return err
	}

	// confirms are matched to publishes in order
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ch.PublishWithContext(ctx, p.exchange, e.RoutingKey, false, false, msg); err != nil {
		return fmt.Errorf("publish %s: %w", e.RoutingKey, err)
	}

	select {
	case conf := <-p.acks:
		if !conf.Ack {
			return errors.New("publish NACK from broker")
		}
	case <-ctx.Done():
		return ctx.Err()
	}

	p.logger.Debug("Event published",
		zap.String("routing_key", e.RoutingKey),
		zap.String("order_id", e.OrderID))
	return nil
}

func (p *AMQPPublisher) Ping() error {
	if p.conn == nil || p.conn.IsClosed() {
		return errors.New("rabbitmq connection is closed")
	}
	return nil
}

func (p *AMQPPublisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

func publishing(e Event, source string) (amqp.Publishing, error) {
	body, err := e.Body()
	if err != nil {
		return amqp.Publishing{}, err
	}
	ts := e.OccurredAt
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	return amqp.Publishing{
		DeliveryMode:  amqp.Persistent,
		ContentType:   "application/json",
		MessageId:     e.ID,
		CorrelationId: e.OrderID,
		Timestamp:     ts,
		Headers:       amqp.Table{"x-source": source},
		Body:          body,
	}, nil
}
