package routes

import (
	"ridepool/internal/handlers"
	"ridepool/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupOfferRoutes wires the ride offer lifecycle endpoints
func SetupOfferRoutes(r *gin.RouterGroup, offerHandler *handlers.OfferHandler, jwtSecret string) {
	// Public browse routes
	offers := r.Group("/offers")
	{
		offers.GET("", offerHandler.ListPublished)
		offers.GET("/:id", offerHandler.GetOffer)
		offers.GET("/:id/next-departure", offerHandler.GetNextDeparture)
	}

	// Driver-owned lifecycle routes
	driverOffers := r.Group("/offers")
	driverOffers.Use(middleware.AuthRequired(jwtSecret), middleware.DriverRequired())
	{
		driverOffers.POST("", offerHandler.CreateOffer)
		driverOffers.PUT("/:id", offerHandler.UpdateOffer)
		driverOffers.DELETE("/:id", offerHandler.DeleteOffer)
		driverOffers.PUT("/:id/publish", offerHandler.PublishOffer)
		driverOffers.PUT("/:id/cancel", offerHandler.CancelOffer)
		driverOffers.PUT("/:id/complete", offerHandler.CompleteOffer)
	}

	mine := r.Group("/drivers/me/offers")
	mine.Use(middleware.AuthRequired(jwtSecret), middleware.DriverRequired())
	{
		mine.GET("", offerHandler.ListMyOffers)
	}
}
