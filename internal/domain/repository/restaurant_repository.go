package repository

import (
	"context"

	"dinereserve/internal/domain/entity"
)

type RestaurantRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Restaurant, error)

	// UpdateRatingSummary writes only the rating cache fields.
	UpdateRatingSummary(ctx context.Context, id string, summary entity.RatingSummary) error
}
