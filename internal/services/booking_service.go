package services

import (
	"context"
	"fmt"
	"time"

	"ridepool/internal/models"
	"ridepool/internal/repositories/interfaces"
	"ridepool/internal/utils"
	"ridepool/pkg/fare"
	"ridepool/pkg/logger"
	"ridepool/pkg/maps"
	"ridepool/pkg/payment"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// averageSpeedKMH feeds the estimated arrival on the trip snapshot.
const averageSpeedKMH = 45.0

type BookingService interface {
	// Booking lifecycle
	CreateBooking(ctx context.Context, riderID primitive.ObjectID, request *CreateBookingRequest) (*models.Booking, error)
	ConfirmPayment(ctx context.Context, riderID, bookingID primitive.ObjectID, request *ConfirmPaymentRequest) (*models.Booking, error)
	CancelByRider(ctx context.Context, riderID, bookingID primitive.ObjectID, reason string) (*models.Booking, error)
	ProcessRefund(ctx context.Context, bookingID primitive.ObjectID, amount *float64) (*models.Booking, error)
	CompleteBooking(ctx context.Context, bookingID primitive.ObjectID) (*models.Booking, error)

	// Cascade cancellation when a driver withdraws an offer.
	CancelAllForOffer(ctx context.Context, offer *models.RideOffer, reason string) ([]models.CancellationNotice, error)

	// Reads
	GetBooking(ctx context.Context, bookingID primitive.ObjectID) (*models.Booking, error)
	GetBookingByNumber(ctx context.Context, bookingNumber string) (*models.Booking, error)
	ListByRider(ctx context.Context, riderID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Booking, int64, error)
	ListByOffer(ctx context.Context, driverID, offerID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Booking, int64, error)

	// Quote previews a fare without reserving anything.
	Quote(ctx context.Context, request *QuoteRequest) (*QuoteResponse, error)
}

// notifier delivers rider-facing notifications. Delivery failures are
// logged, never propagated into the booking flow.
type notifier interface {
	NotifyCancellations(notices []models.CancellationNotice)
	SendBookingConfirmation(ctx context.Context, booking *models.Booking) error
}

type bookingService struct {
	bookingRepo    interfaces.BookingRepository
	offerRepo      interfaces.RideOfferRepository
	cache          CacheService
	mapsProvider   maps.Provider
	fareCalculator fare.Calculator
	paymentGateway payment.Provider
	notifier       notifier
	logger         *logger.Logger
}

func NewBookingService(
	bookingRepo interfaces.BookingRepository,
	offerRepo interfaces.RideOfferRepository,
	cache CacheService,
	mapsProvider maps.Provider,
	fareCalculator fare.Calculator,
	paymentGateway payment.Provider,
	notifier notifier,
	logger *logger.Logger,
) BookingService {
	return &bookingService{
		bookingRepo:    bookingRepo,
		offerRepo:      offerRepo,
		cache:          cache,
		mapsProvider:   mapsProvider,
		fareCalculator: fareCalculator,
		paymentGateway: paymentGateway,
		notifier:       notifier,
		logger:         logger,
	}
}

type CreateBookingRequest struct {
	OfferID        primitive.ObjectID `json:"offer_id" validate:"required"`
	Seats          int                `json:"seats" validate:"required,min=1,max=6"`
	TollCharges    float64            `json:"toll_charges" validate:"min=0"`
	ParkingCharges float64            `json:"parking_charges" validate:"min=0"`
}

type ConfirmPaymentRequest struct {
	PaymentMethodID string `json:"payment_method_id" validate:"required"`
}

type QuoteRequest struct {
	OfferID primitive.ObjectID `json:"offer_id" validate:"required"`
	Seats   int                `json:"seats" validate:"required,min=1,max=6"`
}

type QuoteResponse struct {
	OfferID     primitive.ObjectID `json:"offer_id"`
	Seats       int                `json:"seats"`
	DistanceKM  float64            `json:"distance_km"`
	TotalAmount float64            `json:"total_amount"`
	Currency    string             `json:"currency"`
	DepartureAt time.Time          `json:"departure_at"`
}

// CreateBooking runs the booking pipeline: resolve the offer, price the
// trip, atomically reserve seats, then persist the booking. Seat
// reservation happens as a single conditional update in storage, so two
// riders racing for the last seat cannot both win. If persisting the
// booking fails after seats were taken, the reservation is compensated.
func (s *bookingService) CreateBooking(ctx context.Context, riderID primitive.ObjectID, request *CreateBookingRequest) (*models.Booking, error) {
	now := time.Now()

	offer, err := s.offerRepo.GetByID(ctx, request.OfferID)
	if err != nil {
		return nil, err
	}

	if offer.ApplyExpiry(now) {
		if uerr := s.offerRepo.Update(ctx, offer.ID, map[string]interface{}{
			"status":     offer.Status,
			"updated_at": offer.UpdatedAt,
		}); uerr != nil {
			s.logger.WithError(uerr).WithOfferID(offer.ID).Warn("Failed to persist passive expiry")
		}
		return nil, models.ErrOfferNotBookable
	}
	if !offer.IsBookable() {
		return nil, models.ErrOfferNotBookable
	}

	departure, ok := offer.NextDeparture(now)
	if !ok {
		return nil, models.ErrOfferNotBookable
	}

	distanceKM, err := s.routeDistance(ctx, offer)
	if err != nil {
		return nil, err
	}

	amount := s.fareCalculator.Compute(fare.TripParams{
		DistanceKM:     distanceKM,
		NumberOfSeats:  request.Seats,
		VehicleType:    offer.VehicleType,
		City:           offer.Source.City,
		IsPeakHour:     utils.IsPeakHour(departure),
		IsNightTime:    utils.IsNightTime(departure),
		TollCharges:    request.TollCharges,
		ParkingCharges: request.ParkingCharges,
	})

	// The conditional decrement is the only gate against overselling.
	reserved, err := s.offerRepo.ReserveSeats(ctx, offer.ID, request.Seats)
	if err != nil {
		return nil, err
	}
	s.invalidateOffer(ctx, offer.ID)

	estimatedArrival := departure.Add(time.Duration(distanceKM / averageSpeedKMH * float64(time.Hour)))

	booking := &models.Booking{
		BookingNumber: utils.GenerateBookingNumber(),
		OfferID:       reserved.ID,
		RiderID:       riderID,
		DriverID:      reserved.DriverID,
		SeatsBooked:   request.Seats,
		TotalAmount:   amount,
		Currency:      reserved.Pricing.Currency,
		Status:        models.BookingStatusPending,
		PaymentStatus: models.PaymentStatusPending,
		Trip: models.TripSnapshot{
			Source:           reserved.Source,
			Destination:      reserved.Destination,
			DepartureAt:      departure,
			EstimatedArrival: estimatedArrival,
			DistanceKM:       distanceKM,
		},
		BookedAt:  now,
		UpdatedAt: now,
	}

	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		// Compensate the reservation so seats are not stranded.
		if _, rerr := s.offerRepo.ReleaseSeats(ctx, reserved.ID, request.Seats); rerr != nil {
			s.logger.LogInvariantViolation(reserved.ID, "seat_release_after_failed_create", map[string]interface{}{
				"seats": request.Seats,
				"error": rerr.Error(),
			})
		}
		s.invalidateOffer(ctx, reserved.ID)
		s.logger.WithError(err).WithOfferID(reserved.ID).Error("Failed to persist booking")
		return nil, err
	}

	s.logger.LogBookingEvent(booking.ID, "booking_created", map[string]interface{}{
		"offer_id":     booking.OfferID.Hex(),
		"rider_id":     riderID.Hex(),
		"seats":        booking.SeatsBooked,
		"total_amount": booking.TotalAmount,
	})

	return booking, nil
}

// ConfirmPayment charges the rider through the gateway and moves the
// booking from pending to confirmed.
func (s *bookingService) ConfirmPayment(ctx context.Context, riderID, bookingID primitive.ObjectID, request *ConfirmPaymentRequest) (*models.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.RiderID != riderID {
		return nil, models.ErrUnauthorized
	}
	if booking.Status != models.BookingStatusPending {
		return nil, models.ErrInvalidTransition
	}

	charge, err := s.paymentGateway.ProcessPayment(ctx, &payment.PaymentRequest{
		PaymentMethodID: request.PaymentMethodID,
		Amount:          booking.TotalAmount,
		Currency:        booking.Currency,
		Description:     fmt.Sprintf("Ride booking %s", booking.BookingNumber),
		CustomerID:      riderID.Hex(),
		Metadata: map[string]interface{}{
			"booking_id": booking.ID.Hex(),
			"offer_id":   booking.OfferID.Hex(),
		},
	})
	if err != nil {
		booking.PaymentStatus = models.PaymentStatusFailed
		booking.UpdatedAt = time.Now()
		if serr := s.bookingRepo.Save(ctx, booking); serr != nil {
			s.logger.WithError(serr).WithBookingID(bookingID).Error("Failed to record payment failure")
		}
		s.invalidateBooking(ctx, bookingID)
		s.logger.WithError(err).WithBookingID(bookingID).Error("Payment capture failed")
		return nil, err
	}

	if err := booking.ConfirmPayment(charge.TransactionID, time.Now()); err != nil {
		return nil, err
	}
	if err := s.bookingRepo.Save(ctx, booking); err != nil {
		return nil, err
	}
	s.invalidateBooking(ctx, bookingID)

	s.logger.LogPaymentEvent(booking.ID, "payment_captured", booking.TotalAmount, booking.Currency)

	if s.notifier != nil {
		if err := s.notifier.SendBookingConfirmation(ctx, booking); err != nil {
			s.logger.WithError(err).WithBookingID(booking.ID).Warn("Booking confirmation notification failed")
		}
	}

	return booking, nil
}

// CancelByRider enforces the minimum notice window, applies the refund
// policy as of now, and releases the held seats. Cancelling an
// already-cancelled booking is a no-op and does not release seats twice.
func (s *bookingService) CancelByRider(ctx context.Context, riderID, bookingID primitive.ObjectID, reason string) (*models.Booking, error) {
	now := time.Now()

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.RiderID != riderID {
		return nil, models.ErrUnauthorized
	}
	if booking.Status == models.BookingStatusCancelled || booking.Status == models.BookingStatusRefunded {
		return booking, nil
	}
	if booking.Status == models.BookingStatusCompleted {
		return nil, models.ErrInvalidTransition
	}

	if booking.Trip.DepartureAt.Sub(now) < utils.RiderCancellationNotice {
		return nil, models.ErrCancellationLate
	}

	if err := booking.Cancel(reason, models.CancelledByRider, now); err != nil {
		return nil, err
	}
	if err := s.bookingRepo.Save(ctx, booking); err != nil {
		return nil, err
	}
	s.invalidateBooking(ctx, bookingID)

	if _, err := s.offerRepo.ReleaseSeats(ctx, booking.OfferID, booking.SeatsBooked); err != nil {
		s.logger.LogInvariantViolation(booking.OfferID, "seat_release_on_rider_cancel", map[string]interface{}{
			"booking_id": booking.ID.Hex(),
			"seats":      booking.SeatsBooked,
			"error":      err.Error(),
		})
	}
	s.invalidateOffer(ctx, booking.OfferID)

	s.logger.LogBookingEvent(booking.ID, "booking_cancelled", map[string]interface{}{
		"cancelled_by":  string(models.CancelledByRider),
		"refund_amount": booking.Cancellation.RefundAmount,
		"reason":        booking.Cancellation.Reason,
	})

	return booking, nil
}

// CancelAllForOffer cancels every live booking on a withdrawn offer.
// Each booking runs through the same cancellation path as a rider
// cancel, so refunds follow the banded policy evaluated per booking and
// each booking's seats go back to the inventory. Bookings settle
// independently; one failure does not abort the rest.
func (s *bookingService) CancelAllForOffer(ctx context.Context, offer *models.RideOffer, reason string) ([]models.CancellationNotice, error) {
	bookings, err := s.bookingRepo.GetLiveByOffer(ctx, offer.ID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	notices := make([]models.CancellationNotice, 0, len(bookings))

	cancelReason := reason
	if cancelReason == "" {
		cancelReason = "ride offer withdrawn by driver"
	}

	for _, booking := range bookings {
		seats := booking.SeatsBooked

		if err := booking.Cancel(cancelReason, models.CancelledByDriver, now); err != nil {
			s.logger.WithError(err).WithBookingID(booking.ID).Error("Failed to cancel booking during offer withdrawal")
			continue
		}
		if err := s.bookingRepo.Save(ctx, booking); err != nil {
			s.logger.WithError(err).WithBookingID(booking.ID).Error("Failed to cancel booking during offer withdrawal")
			continue
		}
		s.invalidateBooking(ctx, booking.ID)

		if _, err := s.offerRepo.ReleaseSeats(ctx, offer.ID, seats); err != nil {
			s.logger.LogInvariantViolation(offer.ID, "seat_release_on_offer_withdrawal", map[string]interface{}{
				"booking_id": booking.ID.Hex(),
				"seats":      seats,
				"error":      err.Error(),
			})
		}

		s.logger.LogBookingEvent(booking.ID, "booking_cancelled", map[string]interface{}{
			"cancelled_by":  string(models.CancelledByDriver),
			"refund_amount": booking.Cancellation.RefundAmount,
		})

		notices = append(notices, models.CancellationNotice{
			BookingID: booking.ID,
			RiderID:   booking.RiderID,
			Reason:    cancelReason,
		})
	}
	s.invalidateOffer(ctx, offer.ID)

	if s.notifier != nil && len(notices) > 0 {
		s.notifier.NotifyCancellations(notices)
	}

	return notices, nil
}

// ProcessRefund settles a pending refund through the payment gateway.
func (s *bookingService) ProcessRefund(ctx context.Context, bookingID primitive.ObjectID, amount *float64) (*models.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.PaymentStatus != models.PaymentStatusRefundPending || booking.Cancellation == nil {
		return nil, models.ErrNotRefundable
	}

	settle := booking.Cancellation.RefundAmount
	if amount != nil {
		settle = *amount
	}
	// Bound-check before any money moves; the state update below would
	// reject the same amount, but only after the gateway call.
	if settle < 0 || settle > booking.TotalAmount {
		return nil, models.ErrInvariantViolation
	}

	if settle > 0 && booking.PaymentReference != "" {
		if _, err := s.paymentGateway.RefundPayment(ctx, &payment.RefundRequest{
			TransactionID: booking.PaymentReference,
			Amount:        settle,
			Reason:        booking.Cancellation.Reason,
		}); err != nil {
			s.logger.WithError(err).WithBookingID(bookingID).Error("Refund settlement failed")
			return nil, err
		}
	}

	if err := booking.ProcessRefund(&settle, time.Now()); err != nil {
		return nil, err
	}
	if err := s.bookingRepo.Save(ctx, booking); err != nil {
		return nil, err
	}
	s.invalidateBooking(ctx, bookingID)

	s.logger.LogPaymentEvent(booking.ID, "refund_settled", settle, booking.Currency)

	return booking, nil
}

func (s *bookingService) CompleteBooking(ctx context.Context, bookingID primitive.ObjectID) (*models.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if err := booking.Complete(time.Now()); err != nil {
		return nil, err
	}
	if err := s.bookingRepo.Save(ctx, booking); err != nil {
		return nil, err
	}
	s.invalidateBooking(ctx, bookingID)

	s.logger.LogBookingEvent(booking.ID, "booking_completed", nil)

	return booking, nil
}

func (s *bookingService) GetBooking(ctx context.Context, bookingID primitive.ObjectID) (*models.Booking, error) {
	if cached, err := s.cache.GetCachedBooking(ctx, bookingID); err == nil && cached != nil {
		return cached, nil
	}

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := s.cache.CacheBooking(ctx, booking); err != nil {
		s.logger.WithError(err).WithBookingID(bookingID).Debug("Failed to cache booking")
	}
	return booking, nil
}

func (s *bookingService) GetBookingByNumber(ctx context.Context, bookingNumber string) (*models.Booking, error) {
	return s.bookingRepo.GetByBookingNumber(ctx, bookingNumber)
}

func (s *bookingService) ListByRider(ctx context.Context, riderID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Booking, int64, error) {
	return s.bookingRepo.GetByRider(ctx, riderID, params)
}

// ListByOffer is driver-scoped: only the offer's owner may enumerate its
// bookings.
func (s *bookingService) ListByOffer(ctx context.Context, driverID, offerID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Booking, int64, error) {
	offer, err := s.offerRepo.GetByID(ctx, offerID)
	if err != nil {
		return nil, 0, err
	}
	if offer.DriverID != driverID {
		return nil, 0, models.ErrUnauthorized
	}

	return s.bookingRepo.GetByOffer(ctx, offerID, params)
}

func (s *bookingService) Quote(ctx context.Context, request *QuoteRequest) (*QuoteResponse, error) {
	now := time.Now()

	offer, err := s.offerRepo.GetByID(ctx, request.OfferID)
	if err != nil {
		return nil, err
	}
	if offer.IsExpired(now) || !offer.IsBookable() {
		return nil, models.ErrOfferNotBookable
	}

	departure, ok := offer.NextDeparture(now)
	if !ok {
		return nil, models.ErrOfferNotBookable
	}

	distanceKM, err := s.routeDistance(ctx, offer)
	if err != nil {
		return nil, err
	}

	amount := s.fareCalculator.Compute(fare.TripParams{
		DistanceKM:    distanceKM,
		NumberOfSeats: request.Seats,
		VehicleType:   offer.VehicleType,
		City:          offer.Source.City,
		IsPeakHour:    utils.IsPeakHour(departure),
		IsNightTime:   utils.IsNightTime(departure),
	})

	return &QuoteResponse{
		OfferID:     offer.ID,
		Seats:       request.Seats,
		DistanceKM:  distanceKM,
		TotalAmount: amount,
		Currency:    offer.Pricing.Currency,
		DepartureAt: departure,
	}, nil
}

// routeDistance asks the maps provider for driving distance and falls
// back to straight-line haversine when the provider is unavailable.
func (s *bookingService) routeDistance(ctx context.Context, offer *models.RideOffer) (float64, error) {
	origin := maps.LatLng{Latitude: offer.Source.Latitude(), Longitude: offer.Source.Longitude()}
	destination := maps.LatLng{Latitude: offer.Destination.Latitude(), Longitude: offer.Destination.Longitude()}

	distanceKM, err := s.mapsProvider.RouteDistanceKM(ctx, origin, destination)
	if err != nil {
		s.logger.WithError(err).WithOfferID(offer.ID).Warn("Route distance lookup failed, using haversine")
		return utils.CalculateDistance(origin.Latitude, origin.Longitude, destination.Latitude, destination.Longitude), nil
	}

	return distanceKM, nil
}

func (s *bookingService) invalidateOffer(ctx context.Context, offerID primitive.ObjectID) {
	if err := s.cache.InvalidateOffer(ctx, offerID); err != nil {
		s.logger.WithError(err).WithOfferID(offerID).Debug("Failed to invalidate offer cache")
	}
}

func (s *bookingService) invalidateBooking(ctx context.Context, bookingID primitive.ObjectID) {
	if err := s.cache.InvalidateBooking(ctx, bookingID); err != nil {
		s.logger.WithError(err).WithBookingID(bookingID).Debug("Failed to invalidate booking cache")
	}
}
