package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dinereserve/pkg/errors"
)

var allStatuses = []ReservationStatus{
	StatusPendingApproval,
	StatusConfirmed,
	StatusRejected,
	StatusCancelled,
	StatusCompleted,
}

func TestCanTransition_OnlyGraphEdges(t *testing.T) {
	allowed := map[[2]ReservationStatus]bool{
		{StatusPendingApproval, StatusConfirmed}: true,
		{StatusPendingApproval, StatusRejected}:  true,
		{StatusConfirmed, StatusCompleted}:       true,
		{StatusConfirmed, StatusCancelled}:       true,
	}

	for _, from := range allStatuses {
		for _, to := range allStatuses {
			assert.Equal(t, allowed[[2]ReservationStatus{from, to}], CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestTerminalStatuses(t *testing.T) {
	assert.False(t, StatusPendingApproval.IsTerminal())
	assert.False(t, StatusConfirmed.IsTerminal())
	assert.True(t, StatusRejected.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.True(t, StatusCompleted.IsTerminal())
}

func TestTransition_StampsActorAndTime(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	r := &Reservation{Status: StatusPendingApproval, PaymentStatus: PaymentUnpaid}

	require.NoError(t, r.Transition(StatusConfirmed, "owner-1", now))
	assert.Equal(t, StatusConfirmed, r.Status)
	require.NotNil(t, r.ConfirmedAt)
	assert.Equal(t, now, *r.ConfirmedAt)
	assert.Equal(t, "owner-1", r.ConfirmedBy)
	assert.Equal(t, now, r.UpdatedAt)

	later := now.Add(time.Hour)
	require.NoError(t, r.Transition(StatusCompleted, "owner-1", later))
	require.NotNil(t, r.CompletedAt)
	assert.Equal(t, later, *r.CompletedAt)
	assert.Equal(t, "owner-1", r.CompletedBy)
}

func TestTransition_SkipIsRejected(t *testing.T) {
	r := &Reservation{Status: StatusPendingApproval, PaymentStatus: PaymentUnpaid}

	err := r.Transition(StatusCompleted, "owner-1", time.Now())
	assert.True(t, errors.Is(err, errors.CodeInvalidTransition))
	assert.Equal(t, StatusPendingApproval, r.Status)
	assert.Nil(t, r.CompletedAt)
}

func TestTransition_TerminalStatesNeverMove(t *testing.T) {
	for _, terminal := range []ReservationStatus{StatusRejected, StatusCancelled, StatusCompleted} {
		for _, to := range allStatuses {
			r := &Reservation{Status: terminal, PaymentStatus: PaymentUnpaid}
			err := r.Transition(to, "someone", time.Now())
			assert.True(t, errors.Is(err, errors.CodeInvalidTransition), "%s -> %s", terminal, to)
			assert.Equal(t, terminal, r.Status)
		}
	}
}

func TestTransition_RejectOrCancelVoidsDeposit(t *testing.T) {
	cases := []struct {
		name    string
		from    ReservationStatus
		to      ReservationStatus
		payment PaymentStatus
	}{
		{"reject unpaid", StatusPendingApproval, StatusRejected, PaymentUnpaid},
		{"cancel partial", StatusConfirmed, StatusCancelled, PaymentPartial},
		{"cancel paid", StatusConfirmed, StatusCancelled, PaymentPaid},
		{"cancel pending verification", StatusConfirmed, StatusCancelled, PaymentPendingVerification},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := &Reservation{Status: tc.from, PaymentStatus: tc.payment, DownPayment: 100000}
			require.NoError(t, r.Transition(tc.to, "actor", time.Now()))
			assert.Equal(t, tc.to, r.Status)
			assert.Zero(t, r.DownPayment)
			assert.Equal(t, PaymentUnpaid, r.PaymentStatus)
		})
	}
}

func TestTransition_CompleteKeepsDeposit(t *testing.T) {
	r := &Reservation{Status: StatusConfirmed, PaymentStatus: PaymentPaid, DownPayment: 50000}
	require.NoError(t, r.Transition(StatusCompleted, "owner", time.Now()))
	assert.Equal(t, 50000.0, r.DownPayment)
	assert.Equal(t, PaymentPaid, r.PaymentStatus)
}

func TestRecordPaymentProof(t *testing.T) {
	now := time.Now()

	r := &Reservation{Status: StatusConfirmed, PaymentStatus: PaymentUnpaid}
	require.NoError(t, r.RecordPaymentProof("gs://bucket/proof.jpg", now))
	assert.Equal(t, PaymentPendingVerification, r.PaymentStatus)
	assert.Equal(t, "gs://bucket/proof.jpg", r.PaymentProofURL)
	require.NotNil(t, r.PaymentDate)

	err := r.RecordPaymentProof("gs://bucket/again.jpg", now)
	assert.True(t, errors.Is(err, errors.CodeInvalidState))
	assert.Equal(t, "gs://bucket/proof.jpg", r.PaymentProofURL)

	pending := &Reservation{Status: StatusPendingApproval, PaymentStatus: PaymentUnpaid}
	err = pending.RecordPaymentProof("gs://bucket/p.jpg", now)
	assert.True(t, errors.Is(err, errors.CodeInvalidState))
	assert.Equal(t, PaymentUnpaid, pending.PaymentStatus)
}

func TestVerifyPayment(t *testing.T) {
	now := time.Now()

	accepted := &Reservation{Status: StatusConfirmed, PaymentStatus: PaymentPendingVerification, PaymentProofURL: "u"}
	require.NoError(t, accepted.VerifyPayment(true, "admin", now))
	assert.Equal(t, PaymentPaid, accepted.PaymentStatus)
	assert.Equal(t, "admin", accepted.PaymentVerifiedBy)

	rejected := &Reservation{Status: StatusConfirmed, PaymentStatus: PaymentPendingVerification, PaymentProofURL: "u"}
	require.NoError(t, rejected.VerifyPayment(false, "admin", now))
	assert.Equal(t, PaymentUnpaid, rejected.PaymentStatus)
	assert.Empty(t, rejected.PaymentProofURL)
	assert.Nil(t, rejected.PaymentDate)

	nothing := &Reservation{Status: StatusConfirmed, PaymentStatus: PaymentUnpaid}
	assert.True(t, errors.Is(nothing.VerifyPayment(true, "admin", now), errors.CodeInvalidState))
}

func TestComputeTotal(t *testing.T) {
	items := []PreOrderedItem{
		{ItemID: "a", UnitPrice: 50000, Quantity: 2},
		{ItemID: "b", UnitPrice: 25000, Quantity: 4},
	}
	assert.Equal(t, 200000.0, ComputeTotal(items))
	assert.Zero(t, ComputeTotal(nil))
}
