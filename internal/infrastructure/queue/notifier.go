package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/mybankuml/banking-portal/internal/api/metrics"
	"github.com/mybankuml/banking-portal/internal/core/ports"
)

// ETransferQueue is the durable queue e-transfer notices are published to.
const ETransferQueue = "etransfer.notifications"

// channel is the subset of *amqp.Channel the publisher needs.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher publishes e-transfer notices to RabbitMQ. Messages are persistent
// and routed through the default exchange to ETransferQueue.
type Publisher struct {
	conn *amqp.Connection
	log  zerolog.Logger

	mu sync.Mutex
	ch channel
}

var _ ports.Notifier = (*Publisher)(nil)

// DialPublisher connects to the broker at url and declares ETransferQueue.
func DialPublisher(url string, log zerolog.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}
	if _, err := ch.QueueDeclare(
		ETransferQueue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq queue declare: %w", err)
	}
	return &Publisher{conn: conn, ch: ch, log: log}, nil
}

// NotifyETransfer publishes one notice. The reference number doubles as the
// message id so consumers can drop redeliveries.
func (p *Publisher) NotifyETransfer(ctx context.Context, notice ports.ETransferNotice) error {
	body, err := json.Marshal(notice)
	if err != nil {
		return fmt.Errorf("encode notice: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    notice.ReferenceNumber,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	p.mu.Lock()
	err = p.ch.PublishWithContext(ctx, "", ETransferQueue, false, false, msg)
	p.mu.Unlock()
	if err != nil {
		metrics.NotificationsTotal.WithLabelValues("failed").Inc()
		p.log.Error().Err(err).Str("reference", notice.ReferenceNumber).Msg("etransfer notice not published")
		return fmt.Errorf("publish etransfer notice: %w", err)
	}

	metrics.NotificationsTotal.WithLabelValues("published").Inc()
	return nil
}

// Close releases the channel and the connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ch.Close(); err != nil {
		p.log.Warn().Err(err).Msg("rabbitmq channel close")
	}
	if p.conn == nil {
		return nil
	}
	return p.conn.Close()
}

// NopNotifier is used when no broker is configured.
type NopNotifier struct{}

func (NopNotifier) NotifyETransfer(context.Context, ports.ETransferNotice) error {
	metrics.NotificationsTotal.WithLabelValues("disabled").Inc()
	return nil
}
