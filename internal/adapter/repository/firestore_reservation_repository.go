package repository

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"dinereserve/internal/domain/entity"
	"dinereserve/internal/domain/repository"
	"dinereserve/pkg/errors"
	"dinereserve/pkg/logger"
)

const reservationsCollection = "reservations"

type firestoreReservationRepository struct {
	client *firestore.Client
}

func NewFirestoreReservationRepository(client *firestore.Client) repository.ReservationRepository {
	return &firestoreReservationRepository{
		client: client,
	}
}

func (r *firestoreReservationRepository) Create(ctx context.Context, reservation *entity.Reservation) error {
	if reservation.ID == "" {
		reservation.ID = uuid.New().String()
	}

	_, err := r.client.Collection(reservationsCollection).Doc(reservation.ID).Create(ctx, reservation)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return errors.Conflict("Reservation already exists")
		}
		return errors.Internal("Failed to create reservation", err)
	}

	return nil
}

func (r *firestoreReservationRepository) GetByID(ctx context.Context, id string) (*entity.Reservation, error) {
	doc, err := r.client.Collection(reservationsCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Reservation", err)
		}
		return nil, errors.Internal("Failed to get reservation", err)
	}

	var reservation entity.Reservation
	if err := doc.DataTo(&reservation); err != nil {
		return nil, errors.Internal("Failed to parse reservation data", err)
	}

	return &reservation, nil
}

func (r *firestoreReservationRepository) Mutate(ctx context.Context, id string, observed entity.ReservationStatus, fn repository.ReservationMutation) (*entity.Reservation, error) {
	docRef := r.client.Collection(reservationsCollection).Doc(id)

	var updated *entity.Reservation
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return errors.NotFound("Reservation", err)
			}
			return err
		}

		var reservation entity.Reservation
		if err := doc.DataTo(&reservation); err != nil {
			return errors.Internal("Failed to parse reservation data", err)
		}

		if observed != "" && reservation.Status != observed {
			return errors.Conflict("Reservation is already being processed")
		}

		if err := fn(&reservation); err != nil {
			return err
		}

		updated = &reservation
		return tx.Set(docRef, &reservation)
	})
	if err != nil {
		var appErr *errors.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		if status.Code(err) == codes.Aborted {
			return nil, errors.Conflict("Reservation is already being processed")
		}
		return nil, errors.Internal("Failed to update reservation", err)
	}

	return updated, nil
}

func (r *firestoreReservationRepository) ListByUser(ctx context.Context, userID string, statusFilter entity.ReservationStatus, limit, offset int) ([]*entity.Reservation, int64, error) {
	query := r.client.Collection(reservationsCollection).Where("userId", "==", userID)
	if statusFilter != "" {
		query = query.Where("status", "==", statusFilter)
	}
	return r.list(ctx, query, limit, offset)
}

func (r *firestoreReservationRepository) ListByRestaurant(ctx context.Context, restaurantID string, statusFilter entity.ReservationStatus, limit, offset int) ([]*entity.Reservation, int64, error) {
	query := r.client.Collection(reservationsCollection).Where("restaurantId", "==", restaurantID)
	if statusFilter != "" {
		query = query.Where("status", "==", statusFilter)
	}
	return r.list(ctx, query, limit, offset)
}

// list runs the ordered query and falls back to sorting in memory when the
// composite index for the ordering is missing.
func (r *firestoreReservationRepository) list(ctx context.Context, query firestore.Query, limit, offset int) ([]*entity.Reservation, int64, error) {
	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, 0, errors.Internal("Failed to count reservations", err)
	}
	total := int64(len(docs))

	ordered := query.OrderBy("createdAt", firestore.Desc)
	if limit > 0 {
		ordered = ordered.Limit(limit)
	}
	if offset > 0 {
		ordered = ordered.Offset(offset)
	}

	reservations, err := collectReservations(ordered.Documents(ctx))
	if err == nil {
		return reservations, total, nil
	}
	if status.Code(err) != codes.FailedPrecondition {
		return nil, 0, errors.Internal("Failed to iterate reservations", err)
	}

	logger.Warn("reservations index missing, sorting in memory: %v", err)

	all := make([]*entity.Reservation, 0, len(docs))
	for _, doc := range docs {
		var reservation entity.Reservation
		if err := doc.DataTo(&reservation); err != nil {
			return nil, 0, errors.Internal("Failed to parse reservation data", err)
		}
		all = append(all, &reservation)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	return pageOf(all, limit, offset), total, nil
}

func collectReservations(iter *firestore.DocumentIterator) ([]*entity.Reservation, error) {
	defer iter.Stop()

	reservations := []*entity.Reservation{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}

		var reservation entity.Reservation
		if err := doc.DataTo(&reservation); err != nil {
			return nil, err
		}
		reservations = append(reservations, &reservation)
	}
	return reservations, nil
}

func pageOf[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

var now = func() time.Time { return time.Now().UTC() }
