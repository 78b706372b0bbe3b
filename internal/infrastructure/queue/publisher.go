// Package queue publishes notification events to RabbitMQ so an external
// worker can fan them out as push messages.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const NotificationsQueue = "notifications.created"

// NotificationEvent is the message body published for every stored
// notification.
type NotificationEvent struct {
	NotificationID string    `json:"notification_id"`
	RecipientID    string    `json:"recipient_id"`
	Type           string    `json:"type"`
	Title          string    `json:"title"`
	Message        string    `json:"message"`
	ReservationID  string    `json:"reservation_id,omitempty"`
	RestaurantID   string    `json:"restaurant_id,omitempty"`
	ReviewID       string    `json:"review_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

const (
	// maxDialTimeout bounds a single connection attempt; it stays below the
	// outbox delivery timeout.
	maxDialTimeout = 5 * time.Second
	// redialCooldown is how long publishes fail fast after a failed dial.
	redialCooldown = 5 * time.Second
)

var errBrokerCoolingDown = errors.New("rabbitmq unavailable, waiting before redial")

type dialFunc func(url string, timeout time.Duration) (*amqp.Connection, error)

func dialWithTimeout(url string, timeout time.Duration) (*amqp.Connection, error) {
	return amqp.DialConfig(url, amqp.Config{
		Dial:      amqp.DefaultDial(timeout),
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
	})
}

// Publisher keeps one connection and channel open and redials lazily after
// a failure.
type Publisher struct {
	url  string
	dial dialFunc
	now  func() time.Time

	mu      sync.Mutex
	conn    *amqp.Connection
	ch      *amqp.Channel
	retryAt time.Time
}

func NewPublisher(url string) *Publisher {
	return &Publisher{url: url, dial: dialWithTimeout, now: time.Now}
}

// dialTimeout is the smaller of maxDialTimeout and what is left of ctx.
func dialTimeout(ctx context.Context, now time.Time) time.Duration {
	timeout := maxDialTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := deadline.Sub(now); left < timeout {
			timeout = left
		}
	}
	return timeout
}

func (p *Publisher) channel(ctx context.Context) (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	p.closeLocked()

	now := p.now()
	if now.Before(p.retryAt) {
		return nil, errBrokerCoolingDown
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	timeout := dialTimeout(ctx, now)
	if timeout <= 0 {
		return nil, context.DeadlineExceeded
	}

	conn, err := p.dial(p.url, timeout)
	if err != nil {
		p.retryAt = p.now().Add(redialCooldown)
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}
	if _, err := ch.QueueDeclare(NotificationsQueue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq queue declare: %w", err)
	}

	p.conn, p.ch = conn, ch
	p.retryAt = time.Time{}
	return ch, nil
}

func (p *Publisher) PublishNotification(ctx context.Context, event NotificationEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal notification event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel(ctx)
	if err != nil {
		return err
	}

	err = ch.PublishWithContext(ctx, "", NotificationsQueue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.NotificationID,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		p.closeLocked()
		return fmt.Errorf("rabbitmq publish: %w", err)
	}
	return nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeLocked()
	return nil
}

func (p *Publisher) closeLocked() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}
