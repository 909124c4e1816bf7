package interfaces

import (
	"context"

	"ridepool/internal/models"
	"ridepool/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Booking, error)
	GetByBookingNumber(ctx context.Context, bookingNumber string) (*models.Booking, error)
	Save(ctx context.Context, booking *models.Booking) error
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error

	GetByRider(ctx context.Context, riderID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Booking, int64, error)
	GetByOffer(ctx context.Context, offerID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Booking, int64, error)

	// GetLiveByOffer returns the pending/confirmed bookings still holding
	// seats against an offer.
	GetLiveByOffer(ctx context.Context, offerID primitive.ObjectID) ([]*models.Booking, error)

	// SumLiveSeats aggregates seats_booked across live bookings; used to
	// audit the offer's booked_seats counter.
	SumLiveSeats(ctx context.Context, offerID primitive.ObjectID) (int, error)
}
