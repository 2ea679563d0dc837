package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/xraph/skydesk/account"
	"github.com/xraph/skydesk/plugin"
	"github.com/xraph/skydesk/reservation"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin               = (*Publisher)(nil)
	_ plugin.OnShutdown           = (*Publisher)(nil)
	_ plugin.OnReservationCreated = (*Publisher)(nil)
	_ plugin.OnPointsCredited     = (*Publisher)(nil)
	_ plugin.OnPointsDebited      = (*Publisher)(nil)
	_ plugin.OnPointsReset        = (*Publisher)(nil)
)

// AppID is set on every published message.
const AppID = "skydesk"

// Channel is the subset of *amqp.Channel the publisher uses.
type Channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher is a plugin that publishes committed bookings and points
// changes as persistent JSON messages on the default exchange.
type Publisher struct {
	// amqp channels are not safe for concurrent publishing.
	mu     sync.Mutex
	ch     Channel
	conn   *amqp.Connection
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithLogger sets the logger for the publisher.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) { p.logger = logger }
}

// WithClock overrides the message timestamp source.
func WithClock(now func() time.Time) Option {
	return func(p *Publisher) { p.now = now }
}

// New wraps an open channel and declares the durable queues.
func New(ch Channel, opts ...Option) (*Publisher, error) {
	p := &Publisher{
		ch:     ch,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}

	for _, q := range []string{QueueBookingConfirmed, QueuePointsChanged} {
		if _, err := ch.QueueDeclare(q, true, false, false, false, nil); err != nil {
			return nil, fmt.Errorf("events: declare %s: %w", q, err)
		}
	}
	return p, nil
}

// Dial connects to the broker at url and returns a publisher that owns the
// connection.
func Dial(url string, opts ...Option) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("events: dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("events: open channel: %w", err)
	}

	p, err := New(ch, opts...)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	p.conn = conn
	return p, nil
}

// Name implements plugin.Plugin.
func (p *Publisher) Name() string { return "amqp-events" }

// OnReservationCreated implements plugin.OnReservationCreated.
func (p *Publisher) OnReservationCreated(ctx context.Context, r *reservation.Reservation) error {
	return p.Publish(ctx, QueueBookingConfirmed, NewBookingConfirmed(r))
}

// OnPointsCredited implements plugin.OnPointsCredited.
func (p *Publisher) OnPointsCredited(ctx context.Context, acct *account.Account, amount int64) error {
	return p.Publish(ctx, QueuePointsChanged, NewPointsChanged(acct, KindCredit, amount, amount))
}

// OnPointsDebited implements plugin.OnPointsDebited.
func (p *Publisher) OnPointsDebited(ctx context.Context, acct *account.Account, requested, applied int64) error {
	return p.Publish(ctx, QueuePointsChanged, NewPointsChanged(acct, KindDebit, requested, applied))
}

// OnPointsReset implements plugin.OnPointsReset.
func (p *Publisher) OnPointsReset(ctx context.Context, acct *account.Account) error {
	return p.Publish(ctx, QueuePointsChanged, NewPointsChanged(acct, KindReset, 0, 0))
}

// OnShutdown implements plugin.OnShutdown.
func (p *Publisher) OnShutdown(_ context.Context) error {
	return p.Close()
}

// Publish sends event as a persistent JSON message routed to queue.
func (p *Publisher) Publish(ctx context.Context, queue string, event any) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("events: marshal %s: %w", queue, err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    p.now().UTC(),
		Type:         queue,
		AppId:        AppID,
		Body:         body,
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch == nil {
		return errors.New("events: publisher closed")
	}
	if err := p.ch.PublishWithContext(ctx, "", queue, false, false, msg); err != nil {
		p.logger.Warn("events: publish failed",
			"queue", queue,
			"message_id", msg.MessageId,
			"error", err,
		)
		return fmt.Errorf("events: publish %s: %w", queue, err)
	}
	return nil
}

// Close closes the channel and, when the publisher dialed it, the
// connection. Close is idempotent.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch == nil {
		return nil
	}
	err := p.ch.Close()
	p.ch = nil
	if p.conn != nil {
		err = errors.Join(err, p.conn.Close())
		p.conn = nil
	}
	return err
}
