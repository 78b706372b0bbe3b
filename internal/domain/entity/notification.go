package entity

import (
	"time"
)

type NotificationType string

const (
	NotificationNewReservation       NotificationType = "new_reservation"
	NotificationReservationConfirmed NotificationType = "reservation_confirmed"
	NotificationReservationRejected  NotificationType = "reservation_rejected"
	NotificationReservationCancelled NotificationType = "reservation_cancelled"
	NotificationReservationCompleted NotificationType = "reservation_completed"
	NotificationPaymentSubmitted     NotificationType = "payment_submitted"
	NotificationPaymentVerified      NotificationType = "payment_verified"
	NotificationPaymentRejected      NotificationType = "payment_rejected"
	NotificationNewReview            NotificationType = "new_review"
	NotificationReviewReply          NotificationType = "review_reply"
)

type Notification struct {
	ID            string           `json:"id" firestore:"id"`
	RecipientID   string           `json:"recipient_id" firestore:"recipientId"`
	Type          NotificationType `json:"type" firestore:"type"`
	Title         string           `json:"title" firestore:"title"`
	Message       string           `json:"message" firestore:"message"`
	IsRead        bool             `json:"is_read" firestore:"isRead"`
	ReservationID string           `json:"reservation_id,omitempty" firestore:"reservationId,omitempty"`
	RestaurantID  string           `json:"restaurant_id,omitempty" firestore:"restaurantId,omitempty"`
	ReviewID      string           `json:"review_id,omitempty" firestore:"reviewId,omitempty"`
	CreatedAt     time.Time        `json:"created_at" firestore:"createdAt"`
	ReadAt        *time.Time       `json:"read_at,omitempty" firestore:"readAt,omitempty"`
}

// NotificationPayload is the human readable part of a notification plus the
// ids it refers to.
type NotificationPayload struct {
	Title         string
	Message       string
	ReservationID string
	RestaurantID  string
	ReviewID      string
}
