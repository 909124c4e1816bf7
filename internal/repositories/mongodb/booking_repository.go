package mongodb

import (
	"context"
	"fmt"
	"time"

	"ridepool/internal/models"
	"ridepool/internal/repositories/interfaces"
	"ridepool/internal/services"
	"ridepool/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type bookingRepository struct {
	collection *mongo.Collection
	cache      services.CacheService
}

func NewBookingRepository(db *mongo.Database, cache services.CacheService) interfaces.BookingRepository {
	return &bookingRepository{
		collection: db.Collection("bookings"),
		cache:      cache,
	}
}

func (r *bookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	booking.ID = primitive.NewObjectID()
	booking.BookedAt = time.Now()
	booking.UpdatedAt = booking.BookedAt

	_, err := r.collection.InsertOne(ctx, booking)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	if booking.IsLive() {
		r.cacheBooking(ctx, booking)
	}

	return nil
}

func (r *bookingRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Booking, error) {
	if booking := r.getBookingFromCache(ctx, id); booking != nil {
		return booking, nil
	}

	var booking models.Booking
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&booking)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.IsLive() {
		r.cacheBooking(ctx, &booking)
	}

	return &booking, nil
}

func (r *bookingRepository) GetByBookingNumber(ctx context.Context, bookingNumber string) (*models.Booking, error) {
	var booking models.Booking
	err := r.collection.FindOne(ctx, bson.M{"booking_number": bookingNumber}).Decode(&booking)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking by number: %w", err)
	}

	return &booking, nil
}

// Save persists a full booking document after a state machine transition.
func (r *bookingRepository) Save(ctx context.Context, booking *models.Booking) error {
	booking.UpdatedAt = time.Now()

	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": booking.ID}, booking)
	if err != nil {
		return fmt.Errorf("failed to save booking: %w", err)
	}
	if result.MatchedCount == 0 {
		return models.ErrBookingNotFound
	}

	r.invalidateBookingCache(ctx, booking.ID)

	return nil
}

func (r *bookingRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": updates},
	)
	if err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}

	r.invalidateBookingCache(ctx, id)

	return nil
}

func (r *bookingRepository) GetByRider(ctx context.Context, riderID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Booking, int64, error) {
	filter := bson.M{"rider_id": riderID}
	return r.findBookingsWithFilter(ctx, filter, params)
}

func (r *bookingRepository) GetByOffer(ctx context.Context, offerID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Booking, int64, error) {
	filter := bson.M{"offer_id": offerID}
	return r.findBookingsWithFilter(ctx, filter, params)
}

func (r *bookingRepository) GetLiveByOffer(ctx context.Context, offerID primitive.ObjectID) ([]*models.Booking, error) {
	filter := bson.M{
		"offer_id": offerID,
		"status": bson.M{"$in": []models.BookingStatus{
			models.BookingStatusPending,
			models.BookingStatusConfirmed,
		}},
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find live bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*models.Booking
	for cursor.Next(ctx) {
		var booking models.Booking
		if err := cursor.Decode(&booking); err != nil {
			return nil, fmt.Errorf("failed to decode booking: %w", err)
		}
		bookings = append(bookings, &booking)
	}

	return bookings, nil
}

// SumLiveSeats aggregates seats held by non-cancelled bookings so callers
// can audit the offer's booked_seats counter against reality.
func (r *bookingRepository) SumLiveSeats(ctx context.Context, offerID primitive.ObjectID) (int, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"offer_id": offerID,
			"status": bson.M{"$in": []models.BookingStatus{
				models.BookingStatusPending,
				models.BookingStatusConfirmed,
				models.BookingStatusCompleted,
			}},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"seats": bson.M{"$sum": "$seats_booked"},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("failed to sum booked seats: %w", err)
	}
	defer cursor.Close(ctx)

	var result struct {
		Seats int `bson:"seats"`
	}
	if cursor.Next(ctx) {
		if err := cursor.Decode(&result); err != nil {
			return 0, fmt.Errorf("failed to decode seat sum: %w", err)
		}
	}

	return result.Seats, nil
}

func (r *bookingRepository) findBookingsWithFilter(ctx context.Context, filter bson.M, params *utils.PaginationParams) ([]*models.Booking, int64, error) {
	if params.Search != "" {
		searchFields := []string{"booking_number", "trip.source.address", "trip.destination.address"}
		searchFilter := params.GetSearchFilter(searchFields)
		if len(searchFilter) > 0 {
			filter = bson.M{
				"$and": []bson.M{filter, searchFilter},
			}
		}
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	opts := params.GetSortOptions()
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*models.Booking
	for cursor.Next(ctx) {
		var booking models.Booking
		if err := cursor.Decode(&booking); err != nil {
			return nil, 0, fmt.Errorf("failed to decode booking: %w", err)
		}
		bookings = append(bookings, &booking)
	}

	return bookings, total, nil
}

// Cache operations
func (r *bookingRepository) cacheBooking(ctx context.Context, booking *models.Booking) {
	if r.cache != nil {
		r.cache.CacheBooking(ctx, booking)
	}
}

func (r *bookingRepository) getBookingFromCache(ctx context.Context, id primitive.ObjectID) *models.Booking {
	if r.cache == nil {
		return nil
	}

	booking, err := r.cache.GetCachedBooking(ctx, id)
	if err != nil {
		return nil
	}

	return booking
}

func (r *bookingRepository) invalidateBookingCache(ctx context.Context, id primitive.ObjectID) {
	if r.cache != nil {
		r.cache.InvalidateBooking(ctx, id)
	}
}
