package handler

import (
	"dinereserve/internal/usecase"
)

var (
	reservationHandler  *ReservationHandler
	reviewHandler       *ReviewHandler
	notificationHandler *NotificationHandler
)

func Setup(
	reservationUseCase *usecase.ReservationUseCase,
	reviewUseCase *usecase.ReviewUseCase,
	notifications *usecase.NotificationDispatcher,
	proofStorage ProofStorage,
) {
	reservationHandler = NewReservationHandler(reservationUseCase, proofStorage)
	reviewHandler = NewReviewHandler(reviewUseCase)
	notificationHandler = NewNotificationHandler(notifications)
}

func GetReservationHandler() *ReservationHandler {
	return reservationHandler
}

func GetReviewHandler() *ReviewHandler {
	return reviewHandler
}

func GetNotificationHandler() *NotificationHandler {
	return notificationHandler
}
