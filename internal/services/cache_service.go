package services

import (
	"context"
	"fmt"
	"time"

	"ridepool/internal/models"
	"ridepool/pkg/cache"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	offerCacheTTL   = 15 * time.Minute
	bookingCacheTTL = 10 * time.Minute
)

type CacheService interface {
	// Basic cache operations
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
	Ping(ctx context.Context) error

	// Offer-specific operations
	CacheOffer(ctx context.Context, offer *models.RideOffer) error
	GetCachedOffer(ctx context.Context, offerID primitive.ObjectID) (*models.RideOffer, error)
	InvalidateOffer(ctx context.Context, offerID primitive.ObjectID) error

	// Booking-specific operations
	CacheBooking(ctx context.Context, booking *models.Booking) error
	GetCachedBooking(ctx context.Context, bookingID primitive.ObjectID) (*models.Booking, error)
	InvalidateBooking(ctx context.Context, bookingID primitive.ObjectID) error
}

type cacheService struct {
	redis *cache.RedisCache
}

func NewCacheService(redis *cache.RedisCache) CacheService {
	return &cacheService{redis: redis}
}

func (s *cacheService) Get(ctx context.Context, key string, dest interface{}) error {
	return s.redis.Get(ctx, key, dest)
}

func (s *cacheService) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return s.redis.Set(ctx, key, value, expiration)
}

func (s *cacheService) Delete(ctx context.Context, keys ...string) error {
	return s.redis.Delete(ctx, keys...)
}

func (s *cacheService) Exists(ctx context.Context, key string) (bool, error) {
	return s.redis.Exists(ctx, key)
}

func (s *cacheService) Ping(ctx context.Context) error {
	return s.redis.Ping(ctx)
}

func (s *cacheService) CacheOffer(ctx context.Context, offer *models.RideOffer) error {
	return s.redis.Set(ctx, offerKey(offer.ID), offer, offerCacheTTL)
}

func (s *cacheService) GetCachedOffer(ctx context.Context, offerID primitive.ObjectID) (*models.RideOffer, error) {
	var offer models.RideOffer
	if err := s.redis.Get(ctx, offerKey(offerID), &offer); err != nil {
		return nil, err
	}
	return &offer, nil
}

func (s *cacheService) InvalidateOffer(ctx context.Context, offerID primitive.ObjectID) error {
	return s.redis.Delete(ctx, offerKey(offerID))
}

func (s *cacheService) CacheBooking(ctx context.Context, booking *models.Booking) error {
	return s.redis.Set(ctx, bookingKey(booking.ID), booking, bookingCacheTTL)
}

func (s *cacheService) GetCachedBooking(ctx context.Context, bookingID primitive.ObjectID) (*models.Booking, error) {
	var booking models.Booking
	if err := s.redis.Get(ctx, bookingKey(bookingID), &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

func (s *cacheService) InvalidateBooking(ctx context.Context, bookingID primitive.ObjectID) error {
	return s.redis.Delete(ctx, bookingKey(bookingID))
}

func offerKey(id primitive.ObjectID) string {
	return fmt.Sprintf("offer:%s", id.Hex())
}

func bookingKey(id primitive.ObjectID) string {
	return fmt.Sprintf("booking:%s", id.Hex())
}
