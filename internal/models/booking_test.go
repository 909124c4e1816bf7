package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBooking(departureIn time.Duration) *Booking {
	return &Booking{
		BookingNumber: "BK-TEST0001",
		SeatsBooked:   2,
		TotalAmount:   40.0,
		Currency:      "USD",
		Status:        BookingStatusPending,
		PaymentStatus: PaymentStatusPending,
		Trip: TripSnapshot{
			DepartureAt: time.Now().Add(departureIn),
			DistanceKM:  25,
		},
		BookedAt: time.Now(),
	}
}

func TestConfirmPayment(t *testing.T) {
	booking := newTestBooking(24 * time.Hour)

	err := booking.ConfirmPayment("txn_123", time.Now())
	require.NoError(t, err)

	assert.Equal(t, BookingStatusConfirmed, booking.Status)
	assert.Equal(t, PaymentStatusPaid, booking.PaymentStatus)
	assert.Equal(t, "txn_123", booking.PaymentReference)
}

func TestConfirmPaymentRejectedOutsidePending(t *testing.T) {
	booking := newTestBooking(24 * time.Hour)
	require.NoError(t, booking.ConfirmPayment("txn_123", time.Now()))

	assert.ErrorIs(t, booking.ConfirmPayment("txn_456", time.Now()), ErrInvalidTransition)
	assert.Equal(t, "txn_123", booking.PaymentReference)
}

func TestRefundBands(t *testing.T) {
	tests := []struct {
		name        string
		departureIn time.Duration
		paid        bool
		wantRefund  float64
	}{
		{"full refund at 3h notice", 3 * time.Hour, true, 40.0},
		{"full refund at exactly 2h", 2*time.Hour + time.Minute, true, 40.0},
		{"half refund at 90m notice", 90 * time.Minute, true, 20.0},
		{"no refund at 30m notice", 30 * time.Minute, true, 0},
		{"no refund when unpaid", 3 * time.Hour, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			booking := newTestBooking(tt.departureIn)
			if tt.paid {
				require.NoError(t, booking.ConfirmPayment("txn_1", time.Now()))
			}

			refund, reason := booking.RefundForCancellation(time.Now())
			assert.Equal(t, tt.wantRefund, refund)
			assert.NotEmpty(t, reason)
		})
	}
}

func TestRefundZeroForResolvedBooking(t *testing.T) {
	booking := newTestBooking(3 * time.Hour)
	require.NoError(t, booking.ConfirmPayment("txn_1", time.Now()))
	require.NoError(t, booking.Cancel("", CancelledByRider, time.Now()))

	refund, reason := booking.RefundForCancellation(time.Now())
	assert.Zero(t, refund)
	assert.Contains(t, reason, "already resolved")
}

func TestCancelPaidBookingQueuesRefund(t *testing.T) {
	booking := newTestBooking(3 * time.Hour)
	require.NoError(t, booking.ConfirmPayment("txn_1", time.Now()))

	err := booking.Cancel("change of plans", CancelledByRider, time.Now())
	require.NoError(t, err)

	assert.Equal(t, BookingStatusCancelled, booking.Status)
	assert.Equal(t, PaymentStatusRefundPending, booking.PaymentStatus)
	require.NotNil(t, booking.Cancellation)
	assert.Equal(t, 40.0, booking.Cancellation.RefundAmount)
	assert.Equal(t, CancelledByRider, booking.Cancellation.CancelledBy)
	assert.Contains(t, booking.Cancellation.Reason, "change of plans")
}

func TestCancelUnpaidBookingSettlesImmediately(t *testing.T) {
	booking := newTestBooking(3 * time.Hour)

	require.NoError(t, booking.Cancel("", CancelledByRider, time.Now()))

	assert.Equal(t, BookingStatusCancelled, booking.Status)
	assert.Equal(t, PaymentStatusRefunded, booking.PaymentStatus)
	assert.Zero(t, booking.Cancellation.RefundAmount)
}

func TestCancelRejectedForResolvedBookings(t *testing.T) {
	cancelled := newTestBooking(3 * time.Hour)
	require.NoError(t, cancelled.Cancel("", CancelledByRider, time.Now()))
	assert.ErrorIs(t, cancelled.Cancel("", CancelledByRider, time.Now()), ErrInvalidTransition)

	completed := newTestBooking(3 * time.Hour)
	require.NoError(t, completed.ConfirmPayment("txn_1", time.Now()))
	require.NoError(t, completed.Complete(time.Now()))
	assert.ErrorIs(t, completed.Cancel("", CancelledByRider, time.Now()), ErrInvalidTransition)
}

func TestProcessRefund(t *testing.T) {
	booking := newTestBooking(3 * time.Hour)
	require.NoError(t, booking.ConfirmPayment("txn_1", time.Now()))
	require.NoError(t, booking.Cancel("", CancelledByRider, time.Now()))
	require.Equal(t, PaymentStatusRefundPending, booking.PaymentStatus)

	require.NoError(t, booking.ProcessRefund(nil, time.Now()))

	assert.Equal(t, BookingStatusRefunded, booking.Status)
	assert.Equal(t, PaymentStatusRefunded, booking.PaymentStatus)
	assert.NotNil(t, booking.Cancellation.RefundedAt)
	assert.Equal(t, 40.0, booking.Cancellation.RefundAmount)
}

func TestProcessRefundWithOverride(t *testing.T) {
	booking := newTestBooking(3 * time.Hour)
	require.NoError(t, booking.ConfirmPayment("txn_1", time.Now()))
	require.NoError(t, booking.Cancel("", CancelledByRider, time.Now()))

	override := 25.0
	require.NoError(t, booking.ProcessRefund(&override, time.Now()))
	assert.Equal(t, 25.0, booking.Cancellation.RefundAmount)
}

func TestProcessRefundRejectsOverpayment(t *testing.T) {
	booking := newTestBooking(3 * time.Hour)
	require.NoError(t, booking.ConfirmPayment("txn_1", time.Now()))
	require.NoError(t, booking.Cancel("", CancelledByRider, time.Now()))

	over := 100.0
	assert.ErrorIs(t, booking.ProcessRefund(&over, time.Now()), ErrInvariantViolation)
}

func TestProcessRefundRequiresPendingRefund(t *testing.T) {
	booking := newTestBooking(3 * time.Hour)
	assert.ErrorIs(t, booking.ProcessRefund(nil, time.Now()), ErrNotRefundable)
}

func TestCompleteRequiresConfirmed(t *testing.T) {
	booking := newTestBooking(-1 * time.Hour)
	assert.ErrorIs(t, booking.Complete(time.Now()), ErrInvalidTransition)

	require.NoError(t, booking.ConfirmPayment("txn_1", time.Now()))
	require.NoError(t, booking.Complete(time.Now()))
	assert.Equal(t, BookingStatusCompleted, booking.Status)
	assert.NotNil(t, booking.CompletedAt)
}

func TestIsLive(t *testing.T) {
	booking := newTestBooking(3 * time.Hour)
	assert.True(t, booking.IsLive())

	require.NoError(t, booking.ConfirmPayment("txn_1", time.Now()))
	assert.True(t, booking.IsLive())

	require.NoError(t, booking.Cancel("", CancelledByRider, time.Now()))
	assert.False(t, booking.IsLive())
}
