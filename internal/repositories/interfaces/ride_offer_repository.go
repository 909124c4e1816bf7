package interfaces

import (
	"context"

	"ridepool/internal/models"
	"ridepool/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RideOfferRepository interface {
	// Basic CRUD
	Create(ctx context.Context, offer *models.RideOffer) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.RideOffer, error)
	GetByOfferNumber(ctx context.Context, offerNumber string) (*models.RideOffer, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error
	Save(ctx context.Context, offer *models.RideOffer) error
	Delete(ctx context.Context, id primitive.ObjectID) error

	// Listing
	GetByDriver(ctx context.Context, driverID primitive.ObjectID, params *utils.PaginationParams) ([]*models.RideOffer, int64, error)
	GetPublished(ctx context.Context, params *utils.PaginationParams) ([]*models.RideOffer, int64, error)
	GetByStatus(ctx context.Context, status models.OfferStatus, params *utils.PaginationParams) ([]*models.RideOffer, int64, error)

	// Inventory. ReserveSeats is the atomic conditional decrement that
	// closes the concurrent-booking race: it succeeds only when the offer
	// is published and has at least n seats available, in one storage
	// round trip. ReleaseSeats is its compensating inverse.
	ReserveSeats(ctx context.Context, id primitive.ObjectID, n int) (*models.RideOffer, error)
	ReleaseSeats(ctx context.Context, id primitive.ObjectID, n int) (*models.RideOffer, error)

	// MarkCancelled flips the offer to cancelled in one conditional
	// update; once it lands, ReserveSeats can no longer match the offer.
	// An already-cancelled offer is returned unchanged; a completed offer
	// reports ErrInvalidTransition.
	MarkCancelled(ctx context.Context, id primitive.ObjectID, reason string) (*models.RideOffer, error)
}
