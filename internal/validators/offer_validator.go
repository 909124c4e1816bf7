package validators

import (
	"time"

	"ridepool/internal/models"
	"ridepool/internal/services"
	"ridepool/internal/utils"
)

// ValidateCreateOffer layers route and schedule sanity checks on top of
// the struct tags.
func ValidateCreateOffer(req *services.CreateOfferRequest) ValidationErrors {
	errors := ValidateStruct(req)

	if isSamePoint(req.Source, req.Destination) {
		errors = append(errors, ValidationError{
			Field:   "destination",
			Message: "Source and destination must be different",
		})
	}

	distance := utils.CalculateDistance(
		req.Source.Latitude(), req.Source.Longitude(),
		req.Destination.Latitude(), req.Destination.Longitude(),
	)
	if distance < utils.MinOfferDistance {
		errors = append(errors, ValidationError{
			Field:   "destination",
			Message: "Route too short (minimum 1 km)",
		})
	}
	if distance > utils.MaxOfferDistance {
		errors = append(errors, ValidationError{
			Field:   "destination",
			Message: "Route too long (maximum 1000 km)",
		})
	}

	if req.Recurrence != nil {
		errors = append(errors, validateRecurrence(req.Recurrence, req.DepartureAt)...)
	}

	if req.Negotiable && req.FloorPrice > req.PricePerSeat {
		errors = append(errors, ValidationError{
			Field:   "floor_price",
			Message: "Floor price cannot exceed the asking price per seat",
		})
	}

	return errors
}

func validateRecurrence(rec *models.Recurrence, departureAt time.Time) ValidationErrors {
	var errors ValidationErrors

	switch rec.Type {
	case models.RecurrenceNone, models.RecurrenceDaily, models.RecurrenceWeekly, models.RecurrenceMonthly:
	default:
		errors = append(errors, ValidationError{
			Field:   "recurrence.type",
			Message: "Recurrence type must be none, daily, weekly, or monthly",
		})
		return errors
	}

	if rec.Type == models.RecurrenceWeekly && len(rec.Weekdays) == 0 {
		errors = append(errors, ValidationError{
			Field:   "recurrence.weekdays",
			Message: "Weekly recurrence requires at least one weekday",
		})
	}

	for _, day := range rec.Weekdays {
		if day < time.Sunday || day > time.Saturday {
			errors = append(errors, ValidationError{
				Field:   "recurrence.weekdays",
				Message: "Weekdays must be between Sunday (0) and Saturday (6)",
			})
			break
		}
	}

	if rec.EndDate != nil && rec.EndDate.Before(departureAt) {
		errors = append(errors, ValidationError{
			Field:   "recurrence.end_date",
			Message: "Recurrence end date must be after the first departure",
		})
	}

	return errors
}

func isSamePoint(a, b models.Location) bool {
	const epsilon = 0.0001 // roughly 10 meters
	latDiff := a.Latitude() - b.Latitude()
	lngDiff := a.Longitude() - b.Longitude()
	if latDiff < 0 {
		latDiff = -latDiff
	}
	if lngDiff < 0 {
		lngDiff = -lngDiff
	}
	return latDiff < epsilon && lngDiff < epsilon
}
