package routes

import (
	"ridepool/internal/handlers"
	"ridepool/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupBookingRoutes wires the booking lifecycle endpoints
func SetupBookingRoutes(r *gin.RouterGroup, bookingHandler *handlers.BookingHandler, jwtSecret string) {
	bookings := r.Group("/bookings")
	bookings.Use(middleware.AuthRequired(jwtSecret))
	{
		bookings.POST("/quote", bookingHandler.Quote)
		bookings.GET("/:id", bookingHandler.GetBooking)
	}

	riderBookings := r.Group("/bookings")
	riderBookings.Use(middleware.AuthRequired(jwtSecret), middleware.RiderRequired())
	{
		riderBookings.POST("", bookingHandler.CreateBooking)
		riderBookings.PUT("/:id/confirm-payment", bookingHandler.ConfirmPayment)
		riderBookings.PUT("/:id/cancel", bookingHandler.CancelBooking)
	}

	mine := r.Group("/riders/me/bookings")
	mine.Use(middleware.AuthRequired(jwtSecret), middleware.RiderRequired())
	{
		mine.GET("", bookingHandler.ListMyBookings)
	}

	driverView := r.Group("/offers/:id/bookings")
	driverView.Use(middleware.AuthRequired(jwtSecret), middleware.DriverRequired())
	{
		driverView.GET("", bookingHandler.ListOfferBookings)
	}

	admin := r.Group("/admin/bookings")
	admin.Use(middleware.AuthRequired(jwtSecret), middleware.AdminRequired())
	{
		admin.PUT("/:id/refund", bookingHandler.ProcessRefund)
	}
}
