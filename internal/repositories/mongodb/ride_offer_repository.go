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
	"go.mongodb.org/mongo-driver/mongo/options"
)

type rideOfferRepository struct {
	collection *mongo.Collection
	cache      services.CacheService
}

func NewRideOfferRepository(db *mongo.Database, cache services.CacheService) interfaces.RideOfferRepository {
	return &rideOfferRepository{
		collection: db.Collection("ride_offers"),
		cache:      cache,
	}
}

// Basic CRUD operations
func (r *rideOfferRepository) Create(ctx context.Context, offer *models.RideOffer) error {
	offer.ID = primitive.NewObjectID()
	offer.CreatedAt = time.Now()
	offer.UpdatedAt = offer.CreatedAt

	_, err := r.collection.InsertOne(ctx, offer)
	if err != nil {
		return fmt.Errorf("failed to create ride offer: %w", err)
	}

	return nil
}

func (r *rideOfferRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.RideOffer, error) {
	// Try cache first for bookable offers
	if offer := r.getOfferFromCache(ctx, id); offer != nil {
		return offer, nil
	}

	var offer models.RideOffer
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&offer)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.ErrOfferNotFound
		}
		return nil, fmt.Errorf("failed to get ride offer: %w", err)
	}

	if offer.Status == models.OfferStatusPublished {
		r.cacheOffer(ctx, &offer)
	}

	return &offer, nil
}

func (r *rideOfferRepository) GetByOfferNumber(ctx context.Context, offerNumber string) (*models.RideOffer, error) {
	var offer models.RideOffer
	err := r.collection.FindOne(ctx, bson.M{"offer_number": offerNumber}).Decode(&offer)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.ErrOfferNotFound
		}
		return nil, fmt.Errorf("failed to get ride offer by number: %w", err)
	}

	return &offer, nil
}

func (r *rideOfferRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": updates},
	)
	if err != nil {
		return fmt.Errorf("failed to update ride offer: %w", err)
	}

	r.invalidateOfferCache(ctx, id)

	return nil
}

// Save persists a full offer document after a state machine transition.
func (r *rideOfferRepository) Save(ctx context.Context, offer *models.RideOffer) error {
	offer.UpdatedAt = time.Now()

	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": offer.ID}, offer)
	if err != nil {
		return fmt.Errorf("failed to save ride offer: %w", err)
	}
	if result.MatchedCount == 0 {
		return models.ErrOfferNotFound
	}

	r.invalidateOfferCache(ctx, offer.ID)

	return nil
}

func (r *rideOfferRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete ride offer: %w", err)
	}

	r.invalidateOfferCache(ctx, id)

	return nil
}

// Listing
func (r *rideOfferRepository) GetByDriver(ctx context.Context, driverID primitive.ObjectID, params *utils.PaginationParams) ([]*models.RideOffer, int64, error) {
	filter := bson.M{"driver_id": driverID}
	return r.findOffersWithFilter(ctx, filter, params)
}

func (r *rideOfferRepository) GetPublished(ctx context.Context, params *utils.PaginationParams) ([]*models.RideOffer, int64, error) {
	filter := bson.M{
		"status":     models.OfferStatusPublished,
		"expires_at": bson.M{"$gt": time.Now()},
	}
	return r.findOffersWithFilter(ctx, filter, params)
}

func (r *rideOfferRepository) GetByStatus(ctx context.Context, status models.OfferStatus, params *utils.PaginationParams) ([]*models.RideOffer, int64, error) {
	filter := bson.M{"status": status}
	return r.findOffersWithFilter(ctx, filter, params)
}

// ReserveSeats performs the atomic compare-and-decrement on the inventory
// fields: the filter only matches a published offer with at least n seats
// available, so two concurrent bookings can never both take the last
// seat. The fully-booked transition to active rides in the same update
// pipeline.
func (r *rideOfferRepository) ReserveSeats(ctx context.Context, id primitive.ObjectID, n int) (*models.RideOffer, error) {
	filter := bson.M{
		"_id":                       id,
		"status":                    models.OfferStatusPublished,
		"inventory.available_seats": bson.M{"$gte": n},
	}

	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"inventory.available_seats": bson.M{"$subtract": bson.A{"$inventory.available_seats", n}},
			"inventory.booked_seats":    bson.M{"$add": bson.A{"$inventory.booked_seats", n}},
			"inventory.total_bookings":  bson.M{"$add": bson.A{"$inventory.total_bookings", 1}},
			"updated_at":                "$$NOW",
		}}},
		{{Key: "$set", Value: bson.M{
			"status": bson.M{"$cond": bson.A{
				bson.M{"$eq": bson.A{"$inventory.available_seats", 0}},
				models.OfferStatusActive,
				"$status",
			}},
		}}},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var offer models.RideOffer
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&offer)
	if err == nil {
		r.invalidateOfferCache(ctx, id)
		return &offer, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, fmt.Errorf("failed to reserve seats: %w", err)
	}

	// The conditional update missed; re-read once to report why.
	current, getErr := r.GetByID(ctx, id)
	if getErr != nil {
		return nil, getErr
	}
	if !current.IsBookable() {
		return nil, models.ErrOfferNotBookable
	}
	return nil, models.ErrInsufficientSeats
}

// ReleaseSeats is the compensating inverse of ReserveSeats. The filter
// refuses an update that would push booked_seats below zero; a miss on an
// existing offer is a consistency bug, not a user error.
func (r *rideOfferRepository) ReleaseSeats(ctx context.Context, id primitive.ObjectID, n int) (*models.RideOffer, error) {
	filter := bson.M{
		"_id":                    id,
		"inventory.booked_seats": bson.M{"$gte": n},
	}

	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"inventory.available_seats": bson.M{"$add": bson.A{"$inventory.available_seats", n}},
			"inventory.booked_seats":    bson.M{"$subtract": bson.A{"$inventory.booked_seats", n}},
			"updated_at":                "$$NOW",
		}}},
		{{Key: "$set", Value: bson.M{
			"status": bson.M{"$cond": bson.A{
				bson.M{"$and": bson.A{
					bson.M{"$eq": bson.A{"$status", models.OfferStatusActive}},
					bson.M{"$gt": bson.A{"$inventory.available_seats", 0}},
				}},
				models.OfferStatusPublished,
				"$status",
			}},
		}}},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var offer models.RideOffer
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&offer)
	if err == nil {
		r.invalidateOfferCache(ctx, id)
		return &offer, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, fmt.Errorf("failed to release seats: %w", err)
	}

	if _, getErr := r.GetByID(ctx, id); getErr != nil {
		return nil, getErr
	}
	return nil, models.ErrInvariantViolation
}

// MarkCancelled withdraws the offer with a conditional update so the flip
// and the not-yet-terminal check happen in one storage round trip. A
// booking that races the cancellation either reserves before the flip, in
// which case the cascade picks it up, or fails ReserveSeats after it.
func (r *rideOfferRepository) MarkCancelled(ctx context.Context, id primitive.ObjectID, reason string) (*models.RideOffer, error) {
	now := time.Now()
	filter := bson.M{
		"_id": id,
		"status": bson.M{"$nin": bson.A{
			models.OfferStatusCancelled,
			models.OfferStatusCompleted,
		}},
	}

	update := bson.M{"$set": bson.M{
		"status":              models.OfferStatusCancelled,
		"cancelled_at":        now,
		"cancellation_reason": reason,
		"updated_at":          now,
	}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var offer models.RideOffer
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&offer)
	if err == nil {
		r.invalidateOfferCache(ctx, id)
		return &offer, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, fmt.Errorf("failed to cancel ride offer: %w", err)
	}

	current, getErr := r.GetByID(ctx, id)
	if getErr != nil {
		return nil, getErr
	}
	if current.Status == models.OfferStatusCompleted {
		return nil, models.ErrInvalidTransition
	}
	return current, nil
}

// Helper methods
func (r *rideOfferRepository) findOffersWithFilter(ctx context.Context, filter bson.M, params *utils.PaginationParams) ([]*models.RideOffer, int64, error) {
	if params.Search != "" {
		searchFields := []string{"offer_number", "source.address", "source.city", "destination.address", "destination.city"}
		searchFilter := params.GetSearchFilter(searchFields)
		if len(searchFilter) > 0 {
			filter = bson.M{
				"$and": []bson.M{filter, searchFilter},
			}
		}
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count ride offers: %w", err)
	}

	opts := params.GetSortOptions()
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find ride offers: %w", err)
	}
	defer cursor.Close(ctx)

	var offers []*models.RideOffer
	for cursor.Next(ctx) {
		var offer models.RideOffer
		if err := cursor.Decode(&offer); err != nil {
			return nil, 0, fmt.Errorf("failed to decode ride offer: %w", err)
		}
		offers = append(offers, &offer)
	}

	return offers, total, nil
}

// Cache operations
func (r *rideOfferRepository) cacheOffer(ctx context.Context, offer *models.RideOffer) {
	if r.cache != nil {
		r.cache.CacheOffer(ctx, offer)
	}
}

func (r *rideOfferRepository) getOfferFromCache(ctx context.Context, id primitive.ObjectID) *models.RideOffer {
	if r.cache == nil {
		return nil
	}

	offer, err := r.cache.GetCachedOffer(ctx, id)
	if err != nil {
		return nil
	}

	return offer
}

func (r *rideOfferRepository) invalidateOfferCache(ctx context.Context, id primitive.ObjectID) {
	if r.cache != nil {
		r.cache.InvalidateOffer(ctx, id)
	}
}
