package entity

import (
	"time"

	"dinereserve/pkg/errors"
)

type ReservationStatus string

const (
	StatusPendingApproval ReservationStatus = "pending_approval"
	StatusConfirmed       ReservationStatus = "confirmed"
	StatusRejected        ReservationStatus = "rejected"
	StatusCancelled       ReservationStatus = "cancelled"
	StatusCompleted       ReservationStatus = "completed"
)

type PaymentStatus string

const (
	PaymentUnpaid              PaymentStatus = "unpaid"
	PaymentPendingVerification PaymentStatus = "pending_verification"
	PaymentPartial             PaymentStatus = "partial"
	PaymentPaid                PaymentStatus = "paid"
)

type SeatingArea string

const (
	SeatingIndoor  SeatingArea = "indoor"
	SeatingOutdoor SeatingArea = "outdoor"
	SeatingVIP     SeatingArea = "vip"
)

// transitions lists the only status edges a reservation may follow.
var transitions = map[ReservationStatus][]ReservationStatus{
	StatusPendingApproval: {StatusConfirmed, StatusRejected},
	StatusConfirmed:       {StatusCompleted, StatusCancelled},
}

// CanTransition reports whether to is directly reachable from from.
func CanTransition(from, to ReservationStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition leaves s.
func (s ReservationStatus) IsTerminal() bool {
	return len(transitions[s]) == 0
}

func (s ReservationStatus) Valid() bool {
	switch s {
	case StatusPendingApproval, StatusConfirmed, StatusRejected, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

type PreOrderedItem struct {
	ItemID    string  `json:"item_id" firestore:"itemId"`
	Name      string  `json:"name" firestore:"name"`
	UnitPrice float64 `json:"unit_price" firestore:"unitPrice"`
	Quantity  int     `json:"quantity" firestore:"quantity"`
}

// Reservation is persisted as-is; optional timestamps are written as null so
// every document carries the same field set.
type Reservation struct {
	ID              string           `json:"id" firestore:"id"`
	RestaurantID    string           `json:"restaurant_id" firestore:"restaurantId"`
	UserID          string           `json:"user_id" firestore:"userId"`
	Date            string           `json:"date" firestore:"date"`
	Time            string           `json:"time" firestore:"time"`
	PartySize       int              `json:"party_size" firestore:"partySize"`
	SeatingArea     SeatingArea      `json:"seating_area" firestore:"seatingArea"`
	PreOrderedItems []PreOrderedItem `json:"pre_ordered_items" firestore:"preOrderedItems"`
	TotalPrice      float64          `json:"total_price" firestore:"totalPrice"`
	DownPayment     float64          `json:"down_payment_amount" firestore:"downPaymentAmount"`
	SpecialRequests string           `json:"special_requests" firestore:"specialRequests"`
	ContactName     string           `json:"contact_name" firestore:"contactName"`
	ContactPhone    string           `json:"contact_phone" firestore:"contactPhone"`
	ContactEmail    string           `json:"contact_email" firestore:"contactEmail"`

	Status        ReservationStatus `json:"status" firestore:"status"`
	PaymentStatus PaymentStatus     `json:"payment_status" firestore:"paymentStatus"`

	PaymentProofURL   string     `json:"payment_proof_url" firestore:"paymentProofUrl"`
	PaymentDate       *time.Time `json:"payment_date" firestore:"paymentDate"`
	PaymentVerifiedAt *time.Time `json:"payment_verified_at" firestore:"paymentVerifiedAt"`
	PaymentVerifiedBy string     `json:"payment_verified_by" firestore:"paymentVerifiedBy"`

	CancellationReason string `json:"cancellation_reason" firestore:"cancellationReason"`

	CreatedAt   time.Time  `json:"created_at" firestore:"createdAt"`
	UpdatedAt   time.Time  `json:"updated_at" firestore:"updatedAt"`
	ConfirmedAt *time.Time `json:"confirmed_at" firestore:"confirmedAt"`
	ConfirmedBy string     `json:"confirmed_by" firestore:"confirmedBy"`
	RejectedAt  *time.Time `json:"rejected_at" firestore:"rejectedAt"`
	RejectedBy  string     `json:"rejected_by" firestore:"rejectedBy"`
	CancelledAt *time.Time `json:"cancelled_at" firestore:"cancelledAt"`
	CancelledBy string     `json:"cancelled_by" firestore:"cancelledBy"`
	CompletedAt *time.Time `json:"completed_at" firestore:"completedAt"`
	CompletedBy string     `json:"completed_by" firestore:"completedBy"`
}

// ComputeTotal returns the sum of unit price times quantity of the items.
func ComputeTotal(items []PreOrderedItem) float64 {
	total := 0.0
	for _, item := range items {
		total += item.UnitPrice * float64(item.Quantity)
	}
	return total
}

// Transition moves the reservation to target, stamping the matching
// {target}At/By pair. Rejection and cancellation void any recorded deposit
// in the same mutation. On error the reservation is left untouched.
func (r *Reservation) Transition(target ReservationStatus, actorID string, now time.Time) error {
	if !CanTransition(r.Status, target) {
		return errors.InvalidTransition(string(r.Status), string(target))
	}

	at := now
	switch target {
	case StatusConfirmed:
		r.ConfirmedAt, r.ConfirmedBy = &at, actorID
	case StatusRejected:
		r.RejectedAt, r.RejectedBy = &at, actorID
	case StatusCancelled:
		r.CancelledAt, r.CancelledBy = &at, actorID
	case StatusCompleted:
		r.CompletedAt, r.CompletedBy = &at, actorID
	}

	if target == StatusRejected || target == StatusCancelled {
		r.DownPayment = 0
		r.PaymentStatus = PaymentUnpaid
	}

	r.Status = target
	r.UpdatedAt = now
	return nil
}

// RecordPaymentProof attaches a deposit proof to a confirmed, unpaid
// reservation.
func (r *Reservation) RecordPaymentProof(proofURL string, now time.Time) error {
	if r.Status != StatusConfirmed || r.PaymentStatus != PaymentUnpaid {
		return errors.InvalidState("payment proof can only be submitted for a confirmed, unpaid reservation")
	}

	at := now
	r.PaymentStatus = PaymentPendingVerification
	r.PaymentProofURL = proofURL
	r.PaymentDate = &at
	r.UpdatedAt = now
	return nil
}

// VerifyPayment settles a pending deposit proof. A rejected proof returns
// the reservation to unpaid so the guest can submit again.
func (r *Reservation) VerifyPayment(accepted bool, adminID string, now time.Time) error {
	if r.PaymentStatus != PaymentPendingVerification {
		return errors.InvalidState("no payment is awaiting verification")
	}
	if r.Status != StatusConfirmed && r.Status != StatusCompleted {
		return errors.InvalidState("payment can only be verified on a confirmed reservation")
	}

	at := now
	if accepted {
		r.PaymentStatus = PaymentPaid
	} else {
		r.PaymentStatus = PaymentUnpaid
		r.PaymentProofURL = ""
		r.PaymentDate = nil
	}
	r.PaymentVerifiedAt = &at
	r.PaymentVerifiedBy = adminID
	r.UpdatedAt = now
	return nil
}
