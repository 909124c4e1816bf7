package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BookingStatus string
type PaymentStatus string
type CancelActor string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusRefunded  BookingStatus = "refunded"

	PaymentStatusPending       PaymentStatus = "pending"
	PaymentStatusPaid          PaymentStatus = "paid"
	PaymentStatusFailed        PaymentStatus = "failed"
	PaymentStatusRefunded      PaymentStatus = "refunded"
	PaymentStatusRefundPending PaymentStatus = "refund_pending"

	CancelledByRider  CancelActor = "rider"
	CancelledByDriver CancelActor = "driver"
	CancelledBySystem CancelActor = "system"
)

// Cancellation/refund policy thresholds, measured against time remaining
// until departure at the moment of cancellation.
const (
	FreeCancellationNotice = 2 * time.Hour
	PartialRefundNotice    = 1 * time.Hour
	PartialRefundRate      = 0.5

	MaxSeatsPerBooking = 6
)

// TripSnapshot freezes the offer's route and timing at booking time so
// later offer edits cannot retroactively change a confirmed booking's
// terms.
type TripSnapshot struct {
	Source           Location  `json:"source" bson:"source"`
	Destination      Location  `json:"destination" bson:"destination"`
	DepartureAt      time.Time `json:"departure_at" bson:"departure_at"`
	EstimatedArrival time.Time `json:"estimated_arrival" bson:"estimated_arrival"`
	DistanceKM       float64   `json:"distance_km" bson:"distance_km"`
}

type Cancellation struct {
	Reason       string      `json:"reason" bson:"reason"`
	CancelledBy  CancelActor `json:"cancelled_by" bson:"cancelled_by"`
	CancelledAt  time.Time   `json:"cancelled_at" bson:"cancelled_at"`
	RefundAmount float64     `json:"refund_amount" bson:"refund_amount"`
	RefundedAt   *time.Time  `json:"refunded_at" bson:"refunded_at"`
}

type Booking struct {
	ID               primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	BookingNumber    string             `json:"booking_number" bson:"booking_number" validate:"required"`
	OfferID          primitive.ObjectID `json:"offer_id" bson:"offer_id" validate:"required"`
	RiderID          primitive.ObjectID `json:"rider_id" bson:"rider_id" validate:"required"`
	DriverID         primitive.ObjectID `json:"driver_id" bson:"driver_id"`
	SeatsBooked      int                `json:"seats_booked" bson:"seats_booked" validate:"required,min=1,max=6"`
	TotalAmount      float64            `json:"total_amount" bson:"total_amount"`
	Currency         string             `json:"currency" bson:"currency" default:"USD"`
	Status           BookingStatus      `json:"status" bson:"status" default:"pending"`
	PaymentStatus    PaymentStatus      `json:"payment_status" bson:"payment_status" default:"pending"`
	PaymentReference string             `json:"payment_reference" bson:"payment_reference"`
	Trip             TripSnapshot       `json:"trip" bson:"trip"`
	Cancellation     *Cancellation      `json:"cancellation" bson:"cancellation"`
	BookedAt         time.Time          `json:"booked_at" bson:"booked_at"`
	CompletedAt      *time.Time         `json:"completed_at" bson:"completed_at"`
	UpdatedAt        time.Time          `json:"updated_at" bson:"updated_at"`
}

func (b *Booking) HoursUntilDeparture(now time.Time) float64 {
	return b.Trip.DepartureAt.Sub(now).Hours()
}

// ConfirmPayment moves a pending booking to confirmed and records the
// gateway reference.
func (b *Booking) ConfirmPayment(reference string, now time.Time) error {
	if b.Status != BookingStatusPending {
		return ErrInvalidTransition
	}

	b.Status = BookingStatusConfirmed
	b.PaymentStatus = PaymentStatusPaid
	b.PaymentReference = reference
	b.UpdatedAt = now

	return nil
}

// RefundForCancellation computes the refund due if the booking were
// cancelled at now. The policy is evaluated at cancellation time, not
// frozen at booking time. The returned reason always states the band and
// the measured hours for audit purposes.
func (b *Booking) RefundForCancellation(now time.Time) (float64, string) {
	if b.Status == BookingStatusCancelled || b.Status == BookingStatusCompleted ||
		b.Status == BookingStatusRefunded {
		return 0, "no refund: booking already resolved"
	}
	if b.PaymentStatus != PaymentStatusPaid {
		return 0, "no refund: no payment captured"
	}

	hours := b.HoursUntilDeparture(now)
	switch {
	case hours >= FreeCancellationNotice.Hours():
		return b.TotalAmount, fmt.Sprintf("full refund: %.1fh before departure (free cancellation >= %.0fh)",
			hours, FreeCancellationNotice.Hours())
	case hours >= PartialRefundNotice.Hours():
		return b.TotalAmount * PartialRefundRate, fmt.Sprintf("50%% refund: %.1fh before departure (partial window %.0fh-%.0fh)",
			hours, PartialRefundNotice.Hours(), FreeCancellationNotice.Hours())
	default:
		return 0, fmt.Sprintf("no refund: %.1fh before departure (under %.0fh notice)",
			hours, PartialRefundNotice.Hours())
	}
}

// Cancel transitions the booking to cancelled and records the refund
// decision. A zero refund settles immediately; a positive one waits for
// ProcessRefund.
func (b *Booking) Cancel(reason string, by CancelActor, now time.Time) error {
	if b.Status == BookingStatusCancelled || b.Status == BookingStatusCompleted ||
		b.Status == BookingStatusRefunded {
		return ErrInvalidTransition
	}

	refund, policyReason := b.RefundForCancellation(now)
	if refund > b.TotalAmount {
		return ErrInvariantViolation
	}

	if reason == "" {
		reason = policyReason
	} else {
		reason = reason + "; " + policyReason
	}

	b.Status = BookingStatusCancelled
	b.Cancellation = &Cancellation{
		Reason:       reason,
		CancelledBy:  by,
		CancelledAt:  now,
		RefundAmount: refund,
	}

	if refund > 0 {
		b.PaymentStatus = PaymentStatusRefundPending
	} else {
		// Nothing to settle.
		b.PaymentStatus = PaymentStatusRefunded
	}
	b.UpdatedAt = now

	return nil
}

// ProcessRefund settles a pending refund. amount defaults to the figure
// computed at cancellation when nil.
func (b *Booking) ProcessRefund(amount *float64, now time.Time) error {
	if b.PaymentStatus != PaymentStatusRefundPending || b.Cancellation == nil {
		return ErrNotRefundable
	}

	settled := b.Cancellation.RefundAmount
	if amount != nil {
		settled = *amount
	}
	if settled < 0 || settled > b.TotalAmount {
		return ErrInvariantViolation
	}

	b.Cancellation.RefundAmount = settled
	b.Cancellation.RefundedAt = &now
	b.Status = BookingStatusRefunded
	b.PaymentStatus = PaymentStatusRefunded
	b.UpdatedAt = now

	return nil
}

func (b *Booking) Complete(now time.Time) error {
	if b.Status != BookingStatusConfirmed {
		return ErrInvalidTransition
	}
	b.Status = BookingStatusCompleted
	b.CompletedAt = &now
	b.UpdatedAt = now
	return nil
}

// IsLive reports whether the booking still holds seats against its offer.
func (b *Booking) IsLive() bool {
	return b.Status == BookingStatusPending || b.Status == BookingStatusConfirmed
}

// CancellationNotice is what the engine emits for the external notifier
// after a cancellation affecting a rider. Delivery is fire-and-forget.
type CancellationNotice struct {
	BookingID primitive.ObjectID `json:"booking_id"`
	RiderID   primitive.ObjectID `json:"rider_id"`
	Reason    string             `json:"reason"`
}
