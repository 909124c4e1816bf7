package utils

import "time"

// Application Constants
const (
	// Default values
	DefaultCurrency = "USD"

	// Pagination
	DefaultPageSize = 20
	MaxPageSize     = 100
	MinPageSize     = 1

	// Offer constants
	MinOfferDistance  = 1.0    // kilometers
	MaxOfferDistance  = 1000.0 // kilometers
	OfferNumberPrefix = "RP"

	// Booking constants
	MaxSeatsPerBooking  = 6
	BookingNumberPrefix = "BK"

	// Rider cancellations are refused inside this window; the refund bands
	// in the booking model are a separate table that still applies.
	RiderCancellationNotice = 2 * time.Hour

	// Geo
	EarthRadiusKM = 6371.0

	// Fare
	MorningPeakFrom = 7 // local hour, inclusive
	MorningPeakTo   = 10
	EveningPeakFrom = 17
	EveningPeakTo   = 20
	NightFrom       = 22
	NightTo         = 6
)

// Response status
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Common error messages
const (
	ErrValidationFailed = "Validation failed"
	ErrUnauthorized     = "Unauthorized access"
	ErrForbidden        = "Access forbidden"

	ErrOfferNotBookableMsg  = "Ride offer is not open for booking"
	ErrInsufficientSeatsMsg = "Not enough available seats"
	ErrInvalidTransitionMsg = "Operation not allowed in the current state"
	ErrNotRefundableMsg     = "Booking is not awaiting a refund"
	ErrCancellationLateMsg  = "Bookings cannot be cancelled this close to departure"
)
