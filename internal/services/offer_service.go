package services

import (
	"context"
	"time"

	"ridepool/internal/models"
	"ridepool/internal/repositories/interfaces"
	"ridepool/internal/utils"
	"ridepool/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OfferService interface {
	// Lifecycle
	CreateOffer(ctx context.Context, driverID primitive.ObjectID, request *CreateOfferRequest) (*models.RideOffer, error)
	PublishOffer(ctx context.Context, driverID, offerID primitive.ObjectID) (*models.RideOffer, error)
	CancelOffer(ctx context.Context, driverID, offerID primitive.ObjectID, reason string) (*models.RideOffer, []models.CancellationNotice, error)
	CompleteOffer(ctx context.Context, driverID, offerID primitive.ObjectID) (*models.RideOffer, error)

	// Reads
	GetOffer(ctx context.Context, offerID primitive.ObjectID) (*models.RideOffer, error)
	GetOfferByNumber(ctx context.Context, offerNumber string) (*models.RideOffer, error)
	GetNextDeparture(ctx context.Context, offerID primitive.ObjectID) (*NextDepartureResponse, error)
	ListByDriver(ctx context.Context, driverID primitive.ObjectID, params *utils.PaginationParams) ([]*models.RideOffer, int64, error)
	ListPublished(ctx context.Context, params *utils.PaginationParams) ([]*models.RideOffer, int64, error)

	// Draft management
	UpdateDraft(ctx context.Context, driverID, offerID primitive.ObjectID, request *UpdateOfferRequest) (*models.RideOffer, error)
	DeleteDraft(ctx context.Context, driverID, offerID primitive.ObjectID) error
}

// offerCanceller is the slice of the booking orchestrator the offer
// lifecycle needs when a driver withdraws a published offer.
type offerCanceller interface {
	CancelAllForOffer(ctx context.Context, offer *models.RideOffer, reason string) ([]models.CancellationNotice, error)
}

type offerService struct {
	offerRepo interfaces.RideOfferRepository
	canceller offerCanceller
	cache     CacheService
	logger    *logger.Logger
}

func NewOfferService(
	offerRepo interfaces.RideOfferRepository,
	canceller offerCanceller,
	cache CacheService,
	logger *logger.Logger,
) OfferService {
	return &offerService{
		offerRepo: offerRepo,
		canceller: canceller,
		cache:     cache,
		logger:    logger,
	}
}

type CreateOfferRequest struct {
	VehicleType        string             `json:"vehicle_type" validate:"required,oneof=sedan suv hatchback van minibus"`
	Source             models.Location    `json:"source" validate:"required"`
	Destination        models.Location    `json:"destination" validate:"required"`
	Stops              []models.Stop      `json:"stops" validate:"max=5,dive"`
	DepartureAt        time.Time          `json:"departure_at" validate:"required,future_date"`
	FlexibilityMinutes int                `json:"flexibility_minutes" validate:"min=0,max=120"`
	Recurrence         *models.Recurrence `json:"recurrence"`
	Seats              int                `json:"seats" validate:"required,min=1,max=8"`
	PricePerSeat       float64            `json:"price_per_seat" validate:"required,gt=0"`
	Negotiable         bool               `json:"negotiable"`
	FloorPrice         float64            `json:"floor_price" validate:"min=0"`
	Currency           string             `json:"currency" validate:"omitempty,currency_code"`
}

type UpdateOfferRequest struct {
	VehicleType        *string            `json:"vehicle_type" validate:"omitempty,oneof=sedan suv hatchback van minibus"`
	DepartureAt        *time.Time         `json:"departure_at" validate:"omitempty,future_date"`
	FlexibilityMinutes *int               `json:"flexibility_minutes" validate:"omitempty,min=0,max=120"`
	Recurrence         *models.Recurrence `json:"recurrence"`
	Seats              *int               `json:"seats" validate:"omitempty,min=1,max=8"`
	PricePerSeat       *float64           `json:"price_per_seat" validate:"omitempty,gt=0"`
	Negotiable         *bool              `json:"negotiable"`
	FloorPrice         *float64           `json:"floor_price" validate:"omitempty,min=0"`
}

type NextDepartureResponse struct {
	OfferID     primitive.ObjectID `json:"offer_id"`
	DepartureAt *time.Time         `json:"departure_at"`
	Recurring   bool               `json:"recurring"`
	Exhausted   bool               `json:"exhausted"`
}

func (s *offerService) CreateOffer(ctx context.Context, driverID primitive.ObjectID, request *CreateOfferRequest) (*models.RideOffer, error) {
	now := time.Now()

	currency := request.Currency
	if currency == "" {
		currency = utils.DefaultCurrency
	}

	recurrence := request.Recurrence
	if recurrence == nil {
		recurrence = &models.Recurrence{Type: models.RecurrenceNone}
	}

	offer := &models.RideOffer{
		OfferNumber: utils.GenerateOfferNumber(),
		DriverID:    driverID,
		VehicleType: request.VehicleType,
		Source:      request.Source,
		Destination: request.Destination,
		Stops:       request.Stops,
		Schedule: models.Schedule{
			DepartureAt:        request.DepartureAt,
			FlexibilityMinutes: request.FlexibilityMinutes,
			Recurrence:         recurrence,
		},
		Pricing: models.Pricing{
			Seats:        request.Seats,
			PricePerSeat: request.PricePerSeat,
			Negotiable:   request.Negotiable,
			FloorPrice:   request.FloorPrice,
			Currency:     currency,
		},
		Inventory: models.SeatInventory{
			AvailableSeats: request.Seats,
			BookedSeats:    0,
		},
		Status:    models.OfferStatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.offerRepo.Create(ctx, offer); err != nil {
		s.logger.WithError(err).WithUserID(driverID).Error("Failed to create ride offer")
		return nil, err
	}

	s.logger.LogOfferEvent(offer.ID, "offer_created", map[string]interface{}{
		"driver_id":    driverID.Hex(),
		"offer_number": offer.OfferNumber,
		"seats":        offer.Pricing.Seats,
	})

	return offer, nil
}

func (s *offerService) PublishOffer(ctx context.Context, driverID, offerID primitive.ObjectID) (*models.RideOffer, error) {
	offer, err := s.offerRepo.GetByID(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if offer.DriverID != driverID {
		return nil, models.ErrUnauthorized
	}

	if err := offer.Publish(time.Now()); err != nil {
		return nil, err
	}

	if err := s.offerRepo.Save(ctx, offer); err != nil {
		s.logger.WithError(err).WithOfferID(offerID).Error("Failed to publish ride offer")
		return nil, err
	}
	s.invalidate(ctx, offer)

	s.logger.LogOfferEvent(offer.ID, "offer_published", map[string]interface{}{
		"expires_at": offer.ExpiresAt,
		"seats":      offer.Pricing.Seats,
	})

	return offer, nil
}

// CancelOffer withdraws the offer and cascades cancellation to every live
// booking. The status flips to cancelled before the cascade runs, so a
// booking attempt racing the withdrawal either reserves before the flip
// and gets swept up by the cascade, or fails seat reservation after it.
// Each rider's refund follows the notice bands evaluated per booking.
func (s *offerService) CancelOffer(ctx context.Context, driverID, offerID primitive.ObjectID, reason string) (*models.RideOffer, []models.CancellationNotice, error) {
	offer, err := s.getFresh(ctx, offerID)
	if err != nil {
		return nil, nil, err
	}
	if offer.DriverID != driverID {
		return nil, nil, models.ErrUnauthorized
	}

	if offer.Status == models.OfferStatusCancelled {
		return offer, nil, nil
	}

	offer, err = s.offerRepo.MarkCancelled(ctx, offerID, reason)
	if err != nil {
		s.logger.WithError(err).WithOfferID(offerID).Error("Failed to persist offer cancellation")
		return nil, nil, err
	}
	s.invalidate(ctx, offer)

	notices, err := s.canceller.CancelAllForOffer(ctx, offer, reason)
	if err != nil {
		return nil, nil, err
	}

	if len(notices) > 0 {
		if fresh, err := s.offerRepo.GetByID(ctx, offerID); err == nil {
			offer = fresh
		}
	}

	s.logger.LogOfferEvent(offer.ID, "offer_cancelled", map[string]interface{}{
		"reason":             reason,
		"bookings_cancelled": len(notices),
	})

	return offer, notices, nil
}

func (s *offerService) CompleteOffer(ctx context.Context, driverID, offerID primitive.ObjectID) (*models.RideOffer, error) {
	offer, err := s.getFresh(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if offer.DriverID != driverID {
		return nil, models.ErrUnauthorized
	}

	if err := offer.Complete(time.Now()); err != nil {
		return nil, err
	}
	if err := s.offerRepo.Save(ctx, offer); err != nil {
		return nil, err
	}
	s.invalidate(ctx, offer)

	s.logger.LogOfferEvent(offer.ID, "offer_completed", map[string]interface{}{
		"total_bookings": offer.Inventory.TotalBookings,
	})

	return offer, nil
}

// GetOffer serves reads through the cache and applies passive expiry: a
// stale published offer flips to expired on first touch, no sweeper job.
func (s *offerService) GetOffer(ctx context.Context, offerID primitive.ObjectID) (*models.RideOffer, error) {
	if cached, err := s.cache.GetCachedOffer(ctx, offerID); err == nil && cached != nil {
		if !cached.IsExpired(time.Now()) {
			return cached, nil
		}
	}

	return s.getFresh(ctx, offerID)
}

func (s *offerService) GetOfferByNumber(ctx context.Context, offerNumber string) (*models.RideOffer, error) {
	offer, err := s.offerRepo.GetByOfferNumber(ctx, offerNumber)
	if err != nil {
		return nil, err
	}
	return s.settleExpiry(ctx, offer)
}

func (s *offerService) GetNextDeparture(ctx context.Context, offerID primitive.ObjectID) (*NextDepartureResponse, error) {
	offer, err := s.GetOffer(ctx, offerID)
	if err != nil {
		return nil, err
	}

	response := &NextDepartureResponse{
		OfferID:   offer.ID,
		Recurring: offer.IsRecurring(),
	}

	next, ok := offer.NextDeparture(time.Now())
	if !ok {
		response.Exhausted = true
		return response, nil
	}

	response.DepartureAt = &next
	return response, nil
}

func (s *offerService) ListByDriver(ctx context.Context, driverID primitive.ObjectID, params *utils.PaginationParams) ([]*models.RideOffer, int64, error) {
	return s.offerRepo.GetByDriver(ctx, driverID, params)
}

func (s *offerService) ListPublished(ctx context.Context, params *utils.PaginationParams) ([]*models.RideOffer, int64, error) {
	offers, total, err := s.offerRepo.GetPublished(ctx, params)
	if err != nil {
		return nil, 0, err
	}

	now := time.Now()
	live := make([]*models.RideOffer, 0, len(offers))
	for _, offer := range offers {
		if offer.ApplyExpiry(now) {
			if err := s.offerRepo.Update(ctx, offer.ID, map[string]interface{}{
				"status":     offer.Status,
				"updated_at": offer.UpdatedAt,
			}); err != nil {
				s.logger.WithError(err).WithOfferID(offer.ID).Warn("Failed to persist passive expiry")
			}
			s.invalidate(ctx, offer)
			continue
		}
		live = append(live, offer)
	}

	return live, total, nil
}

func (s *offerService) UpdateDraft(ctx context.Context, driverID, offerID primitive.ObjectID, request *UpdateOfferRequest) (*models.RideOffer, error) {
	offer, err := s.offerRepo.GetByID(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if offer.DriverID != driverID {
		return nil, models.ErrUnauthorized
	}
	if offer.Status != models.OfferStatusDraft {
		return nil, models.ErrInvalidTransition
	}

	if request.VehicleType != nil {
		offer.VehicleType = *request.VehicleType
	}
	if request.DepartureAt != nil {
		offer.Schedule.DepartureAt = *request.DepartureAt
	}
	if request.FlexibilityMinutes != nil {
		offer.Schedule.FlexibilityMinutes = *request.FlexibilityMinutes
	}
	if request.Recurrence != nil {
		offer.Schedule.Recurrence = request.Recurrence
	}
	if request.Seats != nil {
		offer.Pricing.Seats = *request.Seats
		offer.Inventory.AvailableSeats = *request.Seats
		offer.Inventory.BookedSeats = 0
	}
	if request.PricePerSeat != nil {
		offer.Pricing.PricePerSeat = *request.PricePerSeat
	}
	if request.Negotiable != nil {
		offer.Pricing.Negotiable = *request.Negotiable
	}
	if request.FloorPrice != nil {
		offer.Pricing.FloorPrice = *request.FloorPrice
	}
	offer.UpdatedAt = time.Now()

	if err := s.offerRepo.Save(ctx, offer); err != nil {
		return nil, err
	}

	return offer, nil
}

func (s *offerService) DeleteDraft(ctx context.Context, driverID, offerID primitive.ObjectID) error {
	offer, err := s.offerRepo.GetByID(ctx, offerID)
	if err != nil {
		return err
	}
	if offer.DriverID != driverID {
		return models.ErrUnauthorized
	}
	if offer.Status != models.OfferStatusDraft {
		return models.ErrInvalidTransition
	}

	return s.offerRepo.Delete(ctx, offerID)
}

// getFresh bypasses the cache, applies passive expiry, and refreshes the
// cache with the settled document.
func (s *offerService) getFresh(ctx context.Context, offerID primitive.ObjectID) (*models.RideOffer, error) {
	offer, err := s.offerRepo.GetByID(ctx, offerID)
	if err != nil {
		return nil, err
	}
	return s.settleExpiry(ctx, offer)
}

func (s *offerService) settleExpiry(ctx context.Context, offer *models.RideOffer) (*models.RideOffer, error) {
	if offer.ApplyExpiry(time.Now()) {
		if err := s.offerRepo.Update(ctx, offer.ID, map[string]interface{}{
			"status":     offer.Status,
			"updated_at": offer.UpdatedAt,
		}); err != nil {
			s.logger.WithError(err).WithOfferID(offer.ID).Warn("Failed to persist passive expiry")
		}
		s.logger.LogOfferEvent(offer.ID, "offer_expired", map[string]interface{}{
			"expires_at": offer.ExpiresAt,
		})
	}

	if err := s.cache.CacheOffer(ctx, offer); err != nil {
		s.logger.WithError(err).WithOfferID(offer.ID).Debug("Failed to cache offer")
	}

	return offer, nil
}

func (s *offerService) invalidate(ctx context.Context, offer *models.RideOffer) {
	if err := s.cache.InvalidateOffer(ctx, offer.ID); err != nil {
		s.logger.WithError(err).WithOfferID(offer.ID).Debug("Failed to invalidate offer cache")
	}
}
