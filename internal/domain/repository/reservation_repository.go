package repository

import (
	"context"

	"dinereserve/internal/domain/entity"
)

// ReservationMutation edits a freshly read reservation inside an atomic
// update. Returning an error aborts the update without writing anything.
type ReservationMutation func(r *entity.Reservation) error

type ReservationRepository interface {
	Create(ctx context.Context, reservation *entity.Reservation) error
	GetByID(ctx context.Context, id string) (*entity.Reservation, error)

	// Mutate re-reads the reservation, checks that its status still equals
	// observed (skipped when observed is empty), applies fn and writes the
	// whole record in one atomic step. A changed status yields a CONFLICT
	// error.
	Mutate(ctx context.Context, id string, observed entity.ReservationStatus, fn ReservationMutation) (*entity.Reservation, error)

	ListByUser(ctx context.Context, userID string, status entity.ReservationStatus, limit, offset int) ([]*entity.Reservation, int64, error)
	ListByRestaurant(ctx context.Context, restaurantID string, status entity.ReservationStatus, limit, offset int) ([]*entity.Reservation, int64, error)
}
