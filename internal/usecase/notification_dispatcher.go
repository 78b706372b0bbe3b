package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"dinereserve/internal/domain/entity"
	"dinereserve/internal/domain/repository"
	"dinereserve/internal/infrastructure/metrics"
	"dinereserve/internal/infrastructure/queue"
	"dinereserve/pkg/errors"
	"dinereserve/pkg/logger"
	"dinereserve/pkg/utils"
)

// Notifier is what business flows use to emit notices. Notify never fails
// from the caller's point of view.
type Notifier interface {
	Notify(ctx context.Context, recipientID string, notificationType entity.NotificationType, payload entity.NotificationPayload)
}

type NotificationPublisher interface {
	PublishNotification(ctx context.Context, event queue.NotificationEvent) error
}

const deliveryTimeout = 10 * time.Second

// NotificationDispatcher is a best-effort outbox: notices are queued in
// memory and written by a small worker group. With zero workers delivery
// happens inline.
type NotificationDispatcher struct {
	repo      repository.NotificationRepository
	publisher NotificationPublisher

	jobs   chan *entity.Notification
	group  errgroup.Group
	mu     sync.RWMutex
	closed bool
}

func NewNotificationDispatcher(repo repository.NotificationRepository, publisher NotificationPublisher, workers, queueSize int) *NotificationDispatcher {
	d := &NotificationDispatcher{
		repo:      repo,
		publisher: publisher,
	}
	if workers <= 0 {
		return d
	}

	if queueSize <= 0 {
		queueSize = 1
	}
	d.jobs = make(chan *entity.Notification, queueSize)
	for i := 0; i < workers; i++ {
		d.group.Go(func() error {
			for n := range d.jobs {
				d.deliver(n)
			}
			return nil
		})
	}
	return d
}

func (d *NotificationDispatcher) Notify(ctx context.Context, recipientID string, notificationType entity.NotificationType, payload entity.NotificationPayload) {
	if recipientID == "" {
		logger.Warn("notification %s dropped: no recipient", notificationType)
		metrics.ObserveNotification(string(notificationType), "dropped")
		return
	}

	n := &entity.Notification{
		ID:            uuid.New().String(),
		RecipientID:   recipientID,
		Type:          notificationType,
		Title:         payload.Title,
		Message:       payload.Message,
		IsRead:        false,
		ReservationID: payload.ReservationID,
		RestaurantID:  payload.RestaurantID,
		ReviewID:      payload.ReviewID,
		CreatedAt:     time.Now().UTC(),
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.jobs == nil || d.closed {
		d.deliver(n)
		return
	}

	select {
	case d.jobs <- n:
	default:
		logger.SideEffectFailed("notification", recipientID, errors.Internal("notification queue full", nil))
		metrics.ObserveNotification(string(notificationType), "dropped")
	}
}

// deliver runs detached from the triggering request so a finished response
// does not cancel the write.
func (d *NotificationDispatcher) deliver(n *entity.Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
	defer cancel()

	if err := d.repo.Create(ctx, n); err != nil {
		logger.SideEffectFailed("notification", n.RecipientID, err)
		metrics.ObserveNotification(string(n.Type), "failed")
		return
	}
	metrics.ObserveNotification(string(n.Type), "sent")

	if d.publisher == nil {
		return
	}
	err := d.publisher.PublishNotification(ctx, queue.NotificationEvent{
		NotificationID: n.ID,
		RecipientID:    n.RecipientID,
		Type:           string(n.Type),
		Title:          n.Title,
		Message:        n.Message,
		ReservationID:  n.ReservationID,
		RestaurantID:   n.RestaurantID,
		ReviewID:       n.ReviewID,
		CreatedAt:      n.CreatedAt,
	})
	if err != nil {
		logger.SideEffectFailed("notification_publish", n.ID, err)
		metrics.ObserveNotification(string(n.Type), "publish_failed")
		return
	}
	metrics.ObserveNotification(string(n.Type), "published")
}

// Close stops accepting queued work and waits for the workers to drain.
// Later Notify calls are delivered inline.
func (d *NotificationDispatcher) Close() error {
	d.mu.Lock()
	if d.closed || d.jobs == nil {
		d.closed = true
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.jobs)
	d.mu.Unlock()

	return d.group.Wait()
}

func (d *NotificationDispatcher) List(ctx context.Context, recipientID string, unreadOnly bool, page, limit int) ([]*entity.Notification, int64, error) {
	params := utils.NewPaginationParams(page, limit)
	return d.repo.ListByRecipient(ctx, recipientID, unreadOnly, params.PageSize, params.Offset)
}

func (d *NotificationDispatcher) UnreadCount(ctx context.Context, recipientID string) (int64, error) {
	return d.repo.CountUnread(ctx, recipientID)
}

// MarkRead is idempotent; only the recipient may flip their notification.
func (d *NotificationDispatcher) MarkRead(ctx context.Context, id, recipientID string) error {
	n, err := d.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if n.RecipientID != recipientID {
		return errors.Forbidden("You can only update your own notifications", nil)
	}
	if n.IsRead {
		return nil
	}
	return d.repo.MarkRead(ctx, id)
}

func (d *NotificationDispatcher) MarkAllRead(ctx context.Context, recipientID string) (int, error) {
	return d.repo.MarkAllRead(ctx, recipientID)
}
