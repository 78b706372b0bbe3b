package repository

import (
	"context"

	"dinereserve/internal/domain/entity"
)

type ReviewRepository interface {
	Create(ctx context.Context, review *entity.Review) error
	GetByID(ctx context.Context, id string) (*entity.Review, error)

	// ListByRestaurant returns every review of the restaurant, newest first.
	ListByRestaurant(ctx context.Context, restaurantID string) ([]*entity.Review, error)

	SetOwnerReply(ctx context.Context, id, reply, ownerName string) (*entity.Review, error)
}
