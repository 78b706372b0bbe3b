package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"dinereserve/internal/domain/entity"
	"dinereserve/internal/domain/repository"
	"dinereserve/internal/infrastructure/metrics"
	"dinereserve/pkg/errors"
)

// ReservationStore is the only writer of reservation status and payment
// fields. Every mutation goes through the repository's atomic Mutate.
type ReservationStore struct {
	repo     repository.ReservationRepository
	validate *validator.Validate
	now      func() time.Time
}

func NewReservationStore(repo repository.ReservationRepository) *ReservationStore {
	return &ReservationStore{
		repo:     repo,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

type PreOrderedItemInput struct {
	ItemID    string  `validate:"required"`
	Name      string  `validate:"required"`
	UnitPrice float64 `validate:"gte=0"`
	Quantity  int     `validate:"min=1"`
}

type CreateReservationInput struct {
	RestaurantID      string                `validate:"required"`
	UserID            string                `validate:"required"`
	Date              string                `validate:"required,datetime=2006-01-02"`
	Time              string                `validate:"required,datetime=15:04"`
	PartySize         int                   `validate:"min=1"`
	SeatingArea       entity.SeatingArea    `validate:"omitempty,oneof=indoor outdoor vip"`
	PreOrderedItems   []PreOrderedItemInput `validate:"dive"`
	DownPaymentAmount float64               `validate:"gte=0"`
	SpecialRequests   string                `validate:"max=1000"`
	ContactName       string                `validate:"max=200"`
	ContactPhone      string                `validate:"max=50"`
	ContactEmail      string                `validate:"omitempty,email"`
}

// Validate checks a create request without touching storage.
func (s *ReservationStore) Validate(input CreateReservationInput) error {
	if err := s.validate.Struct(input); err != nil {
		return validationError(err)
	}

	total := entity.ComputeTotal(toItems(input.PreOrderedItems))
	if input.DownPaymentAmount > total {
		return errors.Validation("down payment cannot exceed the total price", nil)
	}
	return nil
}

// Create persists a new reservation awaiting owner approval.
func (s *ReservationStore) Create(ctx context.Context, input CreateReservationInput) (*entity.Reservation, error) {
	if err := s.Validate(input); err != nil {
		return nil, err
	}

	seating := input.SeatingArea
	if seating == "" {
		seating = entity.SeatingIndoor
	}
	items := toItems(input.PreOrderedItems)
	now := s.now()

	reservation := &entity.Reservation{
		RestaurantID:    input.RestaurantID,
		UserID:          input.UserID,
		Date:            input.Date,
		Time:            input.Time,
		PartySize:       input.PartySize,
		SeatingArea:     seating,
		PreOrderedItems: items,
		TotalPrice:      entity.ComputeTotal(items),
		DownPayment:     input.DownPaymentAmount,
		SpecialRequests: strings.TrimSpace(input.SpecialRequests),
		ContactName:     strings.TrimSpace(input.ContactName),
		ContactPhone:    strings.TrimSpace(input.ContactPhone),
		ContactEmail:    strings.TrimSpace(input.ContactEmail),
		Status:          entity.StatusPendingApproval,
		PaymentStatus:   entity.PaymentUnpaid,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Create(ctx, reservation); err != nil {
		return nil, err
	}
	metrics.ObserveTransition(string(entity.StatusPendingApproval), nil)

	return reservation, nil
}

func (s *ReservationStore) Get(ctx context.Context, id string) (*entity.Reservation, error) {
	return s.repo.GetByID(ctx, id)
}

// Transition applies one state machine edge. observed is the status the
// caller based its decision on; if the stored status moved on in the
// meantime the write is refused with CONFLICT.
func (s *ReservationStore) Transition(ctx context.Context, id string, target entity.ReservationStatus, actorID string, observed entity.ReservationStatus) (*entity.Reservation, error) {
	updated, err := s.repo.Mutate(ctx, id, observed, func(r *entity.Reservation) error {
		return r.Transition(target, actorID, s.now())
	})
	metrics.ObserveTransition(string(target), err)
	return updated, err
}

// Cancel is Transition to cancelled that also records why.
func (s *ReservationStore) Cancel(ctx context.Context, id, actorID string, observed entity.ReservationStatus, reason string) (*entity.Reservation, error) {
	updated, err := s.repo.Mutate(ctx, id, observed, func(r *entity.Reservation) error {
		if err := r.Transition(entity.StatusCancelled, actorID, s.now()); err != nil {
			return err
		}
		r.CancellationReason = strings.TrimSpace(reason)
		return nil
	})
	metrics.ObserveTransition(string(entity.StatusCancelled), err)
	return updated, err
}

func (s *ReservationStore) RecordPaymentProof(ctx context.Context, id, proofURI string) (*entity.Reservation, error) {
	updated, err := s.repo.Mutate(ctx, id, "", func(r *entity.Reservation) error {
		return r.RecordPaymentProof(proofURI, s.now())
	})
	metrics.ObserveTransition(string(entity.PaymentPendingVerification), err)
	return updated, err
}

func (s *ReservationStore) VerifyPayment(ctx context.Context, id, adminID string, accepted bool) (*entity.Reservation, error) {
	updated, err := s.repo.Mutate(ctx, id, "", func(r *entity.Reservation) error {
		return r.VerifyPayment(accepted, adminID, s.now())
	})
	label := entity.PaymentUnpaid
	if accepted {
		label = entity.PaymentPaid
	}
	metrics.ObserveTransition(string(label), err)
	return updated, err
}

func (s *ReservationStore) ListByUser(ctx context.Context, userID string, status entity.ReservationStatus, limit, offset int) ([]*entity.Reservation, int64, error) {
	return s.repo.ListByUser(ctx, userID, status, limit, offset)
}

func (s *ReservationStore) ListByRestaurant(ctx context.Context, restaurantID string, status entity.ReservationStatus, limit, offset int) ([]*entity.Reservation, int64, error) {
	return s.repo.ListByRestaurant(ctx, restaurantID, status, limit, offset)
}

func toItems(inputs []PreOrderedItemInput) []entity.PreOrderedItem {
	items := make([]entity.PreOrderedItem, 0, len(inputs))
	for _, in := range inputs {
		items = append(items, entity.PreOrderedItem{
			ItemID:    in.ItemID,
			Name:      in.Name,
			UnitPrice: in.UnitPrice,
			Quantity:  in.Quantity,
		})
	}
	return items
}

func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		msg := fmt.Sprintf("%s failed on %s", strings.ToLower(fe.Field()), fe.Tag())
		switch fe.Tag() {
		case "required":
			msg = strings.ToLower(fe.Field()) + " is required"
		case "min", "gte":
			msg = fmt.Sprintf("%s must be at least %s", strings.ToLower(fe.Field()), fe.Param())
		case "oneof":
			msg = fmt.Sprintf("%s must be one of: %s", strings.ToLower(fe.Field()), fe.Param())
		}
		return errors.Validation(msg, err)
	}
	return errors.Validation("invalid input", err)
}
