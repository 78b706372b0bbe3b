package usecase

import (
	"context"
	"fmt"

	"dinereserve/internal/domain/entity"
	"dinereserve/internal/domain/repository"
	"dinereserve/pkg/errors"
	"dinereserve/pkg/logger"
	"dinereserve/pkg/utils"
)

type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

type CloseOutAction string

const (
	CloseOutComplete CloseOutAction = "complete"
	CloseOutCancel   CloseOutAction = "cancel"
)

// ReservationUseCase drives a reservation through its lifecycle: it checks
// who is asking, applies the change through the store and tells the other
// party.
type ReservationUseCase struct {
	store          *ReservationStore
	restaurantRepo repository.RestaurantRepository
	userRepo       repository.UserRepository
	notifier       Notifier
}

func NewReservationUseCase(
	store *ReservationStore,
	restaurantRepo repository.RestaurantRepository,
	userRepo repository.UserRepository,
	notifier Notifier,
) *ReservationUseCase {
	return &ReservationUseCase{
		store:          store,
		restaurantRepo: restaurantRepo,
		userRepo:       userRepo,
		notifier:       notifier,
	}
}

func (uc *ReservationUseCase) SubmitReservation(ctx context.Context, guestID, restaurantID string, input CreateReservationInput) (*entity.Reservation, error) {
	input.UserID = guestID
	input.RestaurantID = restaurantID
	if err := uc.store.Validate(input); err != nil {
		return nil, err
	}

	restaurant, err := uc.restaurantRepo.GetByID(ctx, restaurantID)
	if err != nil {
		return nil, err
	}

	reservation, err := uc.store.Create(ctx, input)
	if err != nil {
		return nil, err
	}

	uc.notifier.Notify(ctx, restaurant.OwnerID, entity.NotificationNewReservation, entity.NotificationPayload{
		Title:         "New reservation request",
		Message:       fmt.Sprintf("New reservation for %d on %s at %s at %s", reservation.PartySize, reservation.Date, reservation.Time, restaurant.Name),
		ReservationID: reservation.ID,
		RestaurantID:  restaurant.ID,
	})

	return reservation, nil
}

func (uc *ReservationUseCase) OwnerDecide(ctx context.Context, reservationID, ownerID string, decision Decision) (*entity.Reservation, error) {
	var target entity.ReservationStatus
	switch decision {
	case DecisionApprove:
		target = entity.StatusConfirmed
	case DecisionReject:
		target = entity.StatusRejected
	default:
		return nil, errors.Validation("decision must be one of: approve reject", nil)
	}

	current, restaurant, err := uc.loadForOwner(ctx, reservationID, ownerID)
	if err != nil {
		return nil, err
	}

	updated, err := uc.store.Transition(ctx, reservationID, target, ownerID, current.Status)
	if err != nil {
		return nil, err
	}

	if target == entity.StatusConfirmed {
		uc.notifyGuest(ctx, updated, restaurant, entity.NotificationReservationConfirmed,
			"Reservation confirmed",
			fmt.Sprintf("Your reservation at %s on %s at %s has been confirmed", restaurant.Name, updated.Date, updated.Time))
	} else {
		uc.notifyGuest(ctx, updated, restaurant, entity.NotificationReservationRejected,
			"Reservation rejected",
			fmt.Sprintf("Your reservation at %s on %s at %s was not accepted", restaurant.Name, updated.Date, updated.Time))
	}

	return updated, nil
}

func (uc *ReservationUseCase) OwnerCloseOut(ctx context.Context, reservationID, ownerID string, action CloseOutAction, reason string) (*entity.Reservation, error) {
	if action != CloseOutComplete && action != CloseOutCancel {
		return nil, errors.Validation("action must be one of: complete cancel", nil)
	}

	current, restaurant, err := uc.loadForOwner(ctx, reservationID, ownerID)
	if err != nil {
		return nil, err
	}

	if action == CloseOutComplete {
		updated, err := uc.store.Transition(ctx, reservationID, entity.StatusCompleted, ownerID, current.Status)
		if err != nil {
			return nil, err
		}
		uc.notifyGuest(ctx, updated, restaurant, entity.NotificationReservationCompleted,
			"Reservation completed",
			fmt.Sprintf("Thanks for dining at %s. Tell others how it went by leaving a review", restaurant.Name))
		return updated, nil
	}

	updated, err := uc.store.Cancel(ctx, reservationID, ownerID, current.Status, reason)
	if err != nil {
		return nil, err
	}
	uc.notifyGuest(ctx, updated, restaurant, entity.NotificationReservationCancelled,
		"Reservation cancelled",
		fmt.Sprintf("Your reservation at %s on %s at %s was cancelled by the restaurant", restaurant.Name, updated.Date, updated.Time))
	return updated, nil
}

func (uc *ReservationUseCase) GuestCancel(ctx context.Context, reservationID, guestID, reason string) (*entity.Reservation, error) {
	current, err := uc.loadForGuest(ctx, reservationID, guestID)
	if err != nil {
		return nil, err
	}

	updated, err := uc.store.Cancel(ctx, reservationID, guestID, current.Status, reason)
	if err != nil {
		return nil, err
	}

	uc.notifyOwner(ctx, updated, entity.NotificationReservationCancelled,
		"Reservation cancelled",
		fmt.Sprintf("The reservation for %d on %s at %s was cancelled by the guest", updated.PartySize, updated.Date, updated.Time))
	return updated, nil
}

func (uc *ReservationUseCase) SubmitPaymentProof(ctx context.Context, reservationID, guestID, proofURI string) (*entity.Reservation, error) {
	if proofURI == "" {
		return nil, errors.Validation("payment proof is required", nil)
	}
	if _, err := uc.loadForGuest(ctx, reservationID, guestID); err != nil {
		return nil, err
	}

	updated, err := uc.store.RecordPaymentProof(ctx, reservationID, proofURI)
	if err != nil {
		return nil, err
	}

	uc.notifyOwner(ctx, updated, entity.NotificationPaymentSubmitted,
		"Payment proof submitted",
		fmt.Sprintf("A down payment proof was submitted for the reservation on %s at %s", updated.Date, updated.Time))
	return updated, nil
}

func (uc *ReservationUseCase) AdminVerifyPayment(ctx context.Context, reservationID, adminID string, accepted bool) (*entity.Reservation, error) {
	if err := uc.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}

	updated, err := uc.store.VerifyPayment(ctx, reservationID, adminID, accepted)
	if err != nil {
		return nil, err
	}

	restaurant, err := uc.restaurantRepo.GetByID(ctx, updated.RestaurantID)
	if err != nil {
		restaurant = &entity.Restaurant{ID: updated.RestaurantID}
	}

	if accepted {
		uc.notifyGuest(ctx, updated, restaurant, entity.NotificationPaymentVerified,
			"Payment verified",
			fmt.Sprintf("Your down payment for %s on %s has been verified", restaurant.Name, updated.Date))
	} else {
		uc.notifyGuest(ctx, updated, restaurant, entity.NotificationPaymentRejected,
			"Payment rejected",
			fmt.Sprintf("Your down payment proof for %s on %s was rejected, please submit a new one", restaurant.Name, updated.Date))
	}
	return updated, nil
}

// GetReservation is visible to the guest, the restaurant owner and admins.
func (uc *ReservationUseCase) GetReservation(ctx context.Context, reservationID, callerID string) (*entity.Reservation, error) {
	reservation, err := uc.store.Get(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if reservation.UserID == callerID {
		return reservation, nil
	}

	restaurant, err := uc.restaurantRepo.GetByID(ctx, reservation.RestaurantID)
	if err != nil {
		return nil, err
	}
	if err := uc.requireOwnerOrAdmin(ctx, restaurant, callerID); err != nil {
		return nil, errors.Forbidden("You don't have access to this reservation", nil)
	}
	return reservation, nil
}

func (uc *ReservationUseCase) ListGuestReservations(ctx context.Context, guestID string, status entity.ReservationStatus, page, limit int) ([]*entity.Reservation, int64, error) {
	if status != "" && !status.Valid() {
		return nil, 0, errors.Validation("unknown reservation status", nil)
	}
	params := utils.NewPaginationParams(page, limit)
	return uc.store.ListByUser(ctx, guestID, status, params.PageSize, params.Offset)
}

func (uc *ReservationUseCase) ListRestaurantReservations(ctx context.Context, restaurantID, callerID string, status entity.ReservationStatus, page, limit int) ([]*entity.Reservation, int64, error) {
	if status != "" && !status.Valid() {
		return nil, 0, errors.Validation("unknown reservation status", nil)
	}

	restaurant, err := uc.restaurantRepo.GetByID(ctx, restaurantID)
	if err != nil {
		return nil, 0, err
	}
	if err := uc.requireOwnerOrAdmin(ctx, restaurant, callerID); err != nil {
		return nil, 0, err
	}

	params := utils.NewPaginationParams(page, limit)
	return uc.store.ListByRestaurant(ctx, restaurantID, status, params.PageSize, params.Offset)
}

// loadForOwner resolves the reservation's restaurant from storage; the
// owner is never taken from the request.
func (uc *ReservationUseCase) loadForOwner(ctx context.Context, reservationID, callerID string) (*entity.Reservation, *entity.Restaurant, error) {
	reservation, err := uc.store.Get(ctx, reservationID)
	if err != nil {
		return nil, nil, err
	}

	restaurant, err := uc.restaurantRepo.GetByID(ctx, reservation.RestaurantID)
	if err != nil {
		return nil, nil, err
	}

	if err := uc.requireOwnerOrAdmin(ctx, restaurant, callerID); err != nil {
		return nil, nil, err
	}
	return reservation, restaurant, nil
}

func (uc *ReservationUseCase) loadForGuest(ctx context.Context, reservationID, guestID string) (*entity.Reservation, error) {
	reservation, err := uc.store.Get(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if reservation.UserID != guestID {
		return nil, errors.Forbidden("Only the guest who made this reservation can do that", nil)
	}
	return reservation, nil
}

func (uc *ReservationUseCase) requireOwnerOrAdmin(ctx context.Context, restaurant *entity.Restaurant, callerID string) error {
	if restaurant.OwnerID == callerID {
		return nil
	}
	if err := uc.requireAdmin(ctx, callerID); err != nil {
		if errors.Is(err, errors.CodeForbidden) {
			return errors.Forbidden("You don't own this restaurant", nil)
		}
		return err
	}
	return nil
}

func (uc *ReservationUseCase) requireAdmin(ctx context.Context, userID string) error {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, errors.CodeNotFound) {
			return errors.Forbidden("Admin access required", nil)
		}
		return err
	}
	if !user.IsAdmin() {
		return errors.Forbidden("Admin access required", nil)
	}
	return nil
}

func (uc *ReservationUseCase) notifyGuest(ctx context.Context, r *entity.Reservation, restaurant *entity.Restaurant, t entity.NotificationType, title, message string) {
	uc.notifier.Notify(ctx, r.UserID, t, entity.NotificationPayload{
		Title:         title,
		Message:       message,
		ReservationID: r.ID,
		RestaurantID:  restaurant.ID,
	})
}

func (uc *ReservationUseCase) notifyOwner(ctx context.Context, r *entity.Reservation, t entity.NotificationType, title, message string) {
	restaurant, err := uc.restaurantRepo.GetByID(ctx, r.RestaurantID)
	if err != nil {
		logger.SideEffectFailed("notification", r.ID, err)
		return
	}
	uc.notifier.Notify(ctx, restaurant.OwnerID, t, entity.NotificationPayload{
		Title:         title,
		Message:       message,
		ReservationID: r.ID,
		RestaurantID:  restaurant.ID,
	})
}
