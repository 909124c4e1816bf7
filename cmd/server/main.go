package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ridepool/internal/config"
	"ridepool/internal/handlers"
	"ridepool/internal/middleware"
	"ridepool/internal/repositories/mongodb"
	"ridepool/internal/services"
	"ridepool/pkg/cache"
	"ridepool/pkg/database"
	"ridepool/pkg/fare"
	"ridepool/pkg/logger"
	"ridepool/pkg/maps"
	"ridepool/pkg/payment"
	"ridepool/pkg/push"
	"ridepool/pkg/sms"
	"ridepool/routes"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.NewLogger(&logger.Config{
		Level:      logger.LogLevel(cfg.App.LogLevel),
		Format:     cfg.App.LogFormat,
		Output:     "stdout",
		TimeFormat: time.RFC3339,
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	db, err := database.NewMongoDB(&database.DatabaseConfig{
		URI:            cfg.Database.URI,
		Database:       cfg.Database.Database,
		MaxPoolSize:    cfg.Database.MaxPoolSize,
		MinPoolSize:    cfg.Database.MinPoolSize,
		ConnectTimeout: cfg.Database.ConnectTimeout,
		SocketTimeout:  cfg.Database.SocketTimeout,
	})
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer db.Close()

	redisCache, err := cache.NewRedisCache(&cache.RedisConfig{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisCache.Close()

	cacheService := services.NewCacheService(redisCache)

	offerRepo := mongodb.NewRideOfferRepository(db.Database, cacheService)
	bookingRepo := mongodb.NewBookingRepository(db.Database, cacheService)
	userRepo := mongodb.NewUserRepository(db.Database)

	mapsProvider := newMapsProvider(cfg, appLogger)
	paymentProvider := newPaymentProvider(cfg)
	pushProvider := newPushProvider(cfg, appLogger)
	smsProvider := newSMSProvider(cfg, appLogger)

	fareCalculator := fare.NewTableCalculator()

	notificationService := services.NewNotificationService(
		userRepo, pushProvider, smsProvider, cfg.SMS.DefaultFrom, appLogger)

	bookingService := services.NewBookingService(
		bookingRepo, offerRepo, cacheService,
		mapsProvider, fareCalculator, paymentProvider,
		notificationService, appLogger)

	offerService := services.NewOfferService(
		offerRepo, bookingService, cacheService, appLogger)

	offerHandler := handlers.NewOfferHandler(offerService)
	bookingHandler := handlers.NewBookingHandler(bookingService)

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	if err := router.SetTrustedProxies(cfg.Security.TrustedProxies); err != nil {
		log.Fatalf("Invalid trusted proxies: %v", err)
	}
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.Security.CORSAllowedOrigins))
	router.Use(middleware.LoggingMiddleware(appLogger))

	v1 := router.Group("/api/v1")
	{
		routes.SetupOfferRoutes(v1, offerHandler, cfg.Security.JWTSecret)
		routes.SetupBookingRoutes(v1, bookingHandler, cfg.Security.JWTSecret)
	}

	router.GET("/health", func(c *gin.Context) {
		status := "healthy"
		code := http.StatusOK

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
		if err := cacheService.Ping(ctx); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		c.JSON(code, gin.H{
			"status":  status,
			"version": cfg.App.Version,
		})
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.App.Port),
		Handler: router,
	}

	go func() {
		appLogger.WithFields(map[string]interface{}{
			"app":         cfg.App.Name,
			"environment": cfg.App.Environment,
			"port":        cfg.App.Port,
		}).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.WithError(err).Fatal("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.WithError(err).Error("Forced shutdown")
	}
}

// newMapsProvider prefers the Google Distance Matrix and falls back to
// haversine when no API key is configured.
func newMapsProvider(cfg *config.Config, appLogger *logger.Logger) maps.Provider {
	if cfg.Maps.GoogleMaps.APIKey != "" {
		provider, err := maps.NewGoogleMapsProvider(cfg.Maps.GoogleMaps.APIKey)
		if err == nil {
			return provider
		}
		appLogger.WithError(err).Warn("Google Maps unavailable, using haversine distances")
	}
	return maps.NewHaversineProvider()
}

func newPaymentProvider(cfg *config.Config) payment.Provider {
	if cfg.Payment.DefaultProvider == "razorpay" {
		return payment.NewRazorpayProvider(cfg.Payment.Razorpay.KeyID, cfg.Payment.Razorpay.KeySecret)
	}
	return payment.NewStripeProvider(cfg.Payment.Stripe.SecretKey)
}

func newPushProvider(cfg *config.Config, appLogger *logger.Logger) push.PushProvider {
	provider, err := push.NewFCMProvider(cfg.Push.FCM.Credentials)
	if err != nil {
		appLogger.WithError(err).Warn("FCM unavailable, push notifications disabled")
		return push.NewNoopProvider()
	}
	return provider
}

func newSMSProvider(cfg *config.Config, appLogger *logger.Logger) sms.SMSProvider {
	if cfg.SMS.Provider == "aws" {
		provider, err := sms.NewAWSSNSProvider(cfg.SMS.AWS.Region)
		if err == nil {
			return provider
		}
		appLogger.WithError(err).Warn("AWS SNS unavailable, falling back to Twilio")
	}
	return sms.NewTwilioProvider(cfg.SMS.Twilio.AccountSID, cfg.SMS.Twilio.AuthToken, cfg.SMS.Twilio.FromNumber)
}
