// Package amqp publishes order status changes to a RabbitMQ topic exchange
// for the notification service.
package amqp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/potgreen/nursery-backend/internal/domains/orders/ports"
)

const (
	DefaultExchange = "order_exchange"
	// StatusRoutingKey is the routing key consumers bind to for status events.
	StatusRoutingKey = "order.status"
	// StatusQueue is declared and bound so events survive a consumer outage.
	StatusQueue = "order_status_queue"
)

var _ ports.Notifier = (*Publisher)(nil)

// Config holds the broker location and exchange name.
type Config struct {
	URL      string
	Exchange string
	// DialTimeout bounds the initial connection retry loop.
	DialTimeout time.Duration
}

// channel is the subset of *amqp.Channel the publisher needs.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher is a ports.Notifier backed by RabbitMQ. A closed channel is
// reopened once per publish attempt.
type Publisher struct {
	exchange string
	logger   *slog.Logger
	open     func() (channel, error)
	closeFn  func() error

	mu sync.Mutex
	ch channel
}

// Dial connects to the broker, declares the topology, and returns a
// publisher. The dial is retried with exponential backoff.
func Dial(ctx context.Context, cfg Config, logger *slog.Logger) (*Publisher, error) {
	if cfg.URL == "" {
		return nil, errors.New("amqp url is empty")
	}
	if cfg.Exchange == "" {
		cfg.Exchange = DefaultExchange
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	dialCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()

	var conn *amqp.Connection
	err := backoff.RetryNotify(func() error {
		c, err := amqp.Dial(cfg.URL)
		if err != nil {
			return err
		}
		conn = c
		return nil
	}, backoff.WithContext(backoff.NewExponentialBackOff(), dialCtx), func(err error, wait time.Duration) {
		logger.Warn("rabbitmq not ready, retrying", slog.String("error", err.Error()), slog.Duration("retry_in", wait))
	})
	if err != nil {
		return nil, fmt.Errorf("connect rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := declareTopology(ch, cfg.Exchange); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}
	logger.Info("rabbitmq publisher ready", slog.String("exchange", cfg.Exchange))

	p := newPublisher(cfg.Exchange, logger, func() (channel, error) { return conn.Channel() })
	p.ch = ch
	p.closeFn = conn.Close
	return p, nil
}

func newPublisher(exchange string, logger *slog.Logger, open func() (channel, error)) *Publisher {
	return &Publisher{exchange: exchange, logger: logger, open: open}
}

func declareTopology(ch *amqp.Channel, exchange string) error {
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	q, err := ch.QueueDeclare(StatusQueue, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("declare queue %s: %w", StatusQueue, err)
	}
	if err := ch.QueueBind(q.Name, StatusRoutingKey, exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue %s: %w", StatusQueue, err)
	}
	return nil
}

// NotifyStatusChanged publishes the event as persistent JSON.
func (p *Publisher) NotifyStatusChanged(ctx context.Context, event ports.StatusChangedEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal status event: %w", err)
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    fmt.Sprintf("%s:%s", event.OrderID, event.Status),
		Timestamp:    event.ChangedAt,
		Type:         "order.status_changed",
		Body:         body,
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	err = p.publishLocked(ctx, msg)
	if err == nil || !errors.Is(err, amqp.ErrClosed) {
		return err
	}
	p.logger.Warn("rabbitmq channel closed, reopening")
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	return p.publishLocked(ctx, msg)
}

func (p *Publisher) publishLocked(ctx context.Context, msg amqp.Publishing) error {
	if p.ch == nil {
		ch, err := p.open()
		if err != nil {
			return fmt.Errorf("reopen channel: %w", err)
		}
		p.ch = ch
	}
	if err := p.ch.PublishWithContext(ctx, p.exchange, StatusRoutingKey, false, false, msg); err != nil {
		return fmt.Errorf("publish to %s/%s: %w", p.exchange, StatusRoutingKey, err)
	}
	return nil
}

// Close releases the channel and connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var err error
	if p.ch != nil {
		err = p.ch.Close()
		p.ch = nil
	}
	if p.closeFn != nil {
		err = errors.Join(err, p.closeFn())
	}
	return err
}
