package validators

import (
	"ridepool/internal/models"
	"ridepool/internal/services"
)

func ValidateCreateBooking(req *services.CreateBookingRequest) ValidationErrors {
	errors := ValidateStruct(req)

	if req.Seats > models.MaxSeatsPerBooking {
		errors = append(errors, ValidationError{
			Field:   "seats",
			Message: "Too many seats for a single booking",
		})
	}

	return errors
}

func ValidateConfirmPayment(req *services.ConfirmPaymentRequest) ValidationErrors {
	return ValidateStruct(req)
}

type CancelBookingRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=255"`
}

func ValidateCancelBooking(req *CancelBookingRequest) ValidationErrors {
	return ValidateStruct(req)
}
