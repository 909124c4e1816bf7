package models

import "errors"

// Engine error taxonomy. Everything here is recoverable at the request
// boundary except ErrInvariantViolation, which indicates corrupted seat
// accounting and must be logged at high severity by the caller.
var (
	ErrOfferNotFound      = errors.New("ride offer not found")
	ErrBookingNotFound    = errors.New("booking not found")
	ErrUnauthorized       = errors.New("actor does not own this resource")
	ErrOfferNotBookable   = errors.New("ride offer is not open for booking")
	ErrInsufficientSeats  = errors.New("not enough available seats")
	ErrInvalidTransition  = errors.New("invalid state transition")
	ErrNotRefundable      = errors.New("booking is not awaiting a refund")
	ErrCancellationLate   = errors.New("bookings cannot be cancelled within the minimum notice window")
	ErrInvariantViolation = errors.New("seat inventory invariant violated")
)
