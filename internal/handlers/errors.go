package handlers

import (
	"errors"
	"net/http"

	"ridepool/internal/models"
	"ridepool/internal/utils"
	"ridepool/internal/validators"

	"github.com/gin-gonic/gin"
)

// respondServiceError maps the engine's error taxonomy onto HTTP. Unknown
// errors become opaque 500s so internal detail never leaks.
func respondServiceError(c *gin.Context, err error, code, message string) {
	switch {
	case errors.Is(err, models.ErrOfferNotFound):
		utils.NotFoundResponse(c, "Ride offer")
	case errors.Is(err, models.ErrBookingNotFound):
		utils.NotFoundResponse(c, "Booking")
	case errors.Is(err, models.ErrUnauthorized):
		utils.ForbiddenResponse(c)
	case errors.Is(err, models.ErrOfferNotBookable):
		utils.ConflictResponse(c, utils.ErrOfferNotBookableMsg)
	case errors.Is(err, models.ErrInsufficientSeats):
		utils.ConflictResponse(c, utils.ErrInsufficientSeatsMsg)
	case errors.Is(err, models.ErrInvalidTransition):
		utils.ConflictResponse(c, utils.ErrInvalidTransitionMsg)
	case errors.Is(err, models.ErrNotRefundable):
		utils.ConflictResponse(c, utils.ErrNotRefundableMsg)
	case errors.Is(err, models.ErrCancellationLate):
		utils.ConflictResponse(c, utils.ErrCancellationLateMsg)
	default:
		utils.ErrorResponse(c, http.StatusInternalServerError, code, message)
	}
}

func validationDetails(errs validators.ValidationErrors) map[string]string {
	details := make(map[string]string, len(errs))
	for _, err := range errs {
		details[err.Field] = err.Message
	}
	return details
}
