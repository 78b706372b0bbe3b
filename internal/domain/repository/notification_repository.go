package repository

import (
	"context"

	"dinereserve/internal/domain/entity"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *entity.Notification) error
	GetByID(ctx context.Context, id string) (*entity.Notification, error)
	ListByRecipient(ctx context.Context, recipientID string, unreadOnly bool, limit, offset int) ([]*entity.Notification, int64, error)
	CountUnread(ctx context.Context, recipientID string) (int64, error)
	MarkRead(ctx context.Context, id string) error

	// MarkAllRead flips every unread notification of the recipient and
	// returns how many changed.
	MarkAllRead(ctx context.Context, recipientID string) (int, error)
}
