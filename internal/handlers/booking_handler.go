package handlers

import (
	"ridepool/internal/middleware"
	"ridepool/internal/services"
	"ridepool/internal/utils"
	"ridepool/internal/validators"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BookingHandler struct {
	bookingService services.BookingService
}

func NewBookingHandler(bookingService services.BookingService) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
	}
}

// CreateBooking reserves seats on a published offer for the rider
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var request services.CreateBookingRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	if errs := validators.ValidateCreateBooking(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, validationDetails(errs))
		return
	}

	riderID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	booking, err := h.bookingService.CreateBooking(c.Request.Context(), riderID, &request)
	if err != nil {
		respondServiceError(c, err, "BOOKING_CREATE_FAILED", "Failed to create booking")
		return
	}

	utils.CreatedResponse(c, "Booking created", booking)
}

// Quote previews the fare for a number of seats on an offer
func (h *BookingHandler) Quote(c *gin.Context) {
	var request services.QuoteRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	if errs := validators.ValidateStruct(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, validationDetails(errs))
		return
	}

	quote, err := h.bookingService.Quote(c.Request.Context(), &request)
	if err != nil {
		respondServiceError(c, err, "QUOTE_FAILED", "Failed to compute quote")
		return
	}

	utils.SuccessResponse(c, "Quote computed", quote)
}

// ConfirmPayment captures payment and confirms the booking
func (h *BookingHandler) ConfirmPayment(c *gin.Context) {
	bookingID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid booking ID")
		return
	}

	var request services.ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	if errs := validators.ValidateConfirmPayment(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, validationDetails(errs))
		return
	}

	riderID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	booking, err := h.bookingService.ConfirmPayment(c.Request.Context(), riderID, bookingID, &request)
	if err != nil {
		respondServiceError(c, err, "PAYMENT_CONFIRM_FAILED", "Failed to confirm payment")
		return
	}

	utils.SuccessResponse(c, "Payment confirmed", booking)
}

// CancelBooking cancels the rider's own booking
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	bookingID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid booking ID")
		return
	}

	var request validators.CancelBookingRequest
	if err := c.ShouldBindJSON(&request); err != nil && err.Error() != "EOF" {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	if errs := validators.ValidateCancelBooking(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, validationDetails(errs))
		return
	}

	riderID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	booking, err := h.bookingService.CancelByRider(c.Request.Context(), riderID, bookingID, request.Reason)
	if err != nil {
		respondServiceError(c, err, "BOOKING_CANCEL_FAILED", "Failed to cancel booking")
		return
	}

	utils.SuccessResponse(c, "Booking cancelled", booking)
}

type processRefundRequest struct {
	Amount *float64 `json:"amount"`
}

// ProcessRefund settles a pending refund (admin operation)
func (h *BookingHandler) ProcessRefund(c *gin.Context) {
	bookingID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid booking ID")
		return
	}

	var request processRefundRequest
	if err := c.ShouldBindJSON(&request); err != nil && err.Error() != "EOF" {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	booking, err := h.bookingService.ProcessRefund(c.Request.Context(), bookingID, request.Amount)
	if err != nil {
		respondServiceError(c, err, "REFUND_FAILED", "Failed to process refund")
		return
	}

	utils.SuccessResponse(c, "Refund processed", booking)
}

// GetBooking retrieves a single booking
func (h *BookingHandler) GetBooking(c *gin.Context) {
	bookingID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid booking ID")
		return
	}

	riderID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	booking, err := h.bookingService.GetBooking(c.Request.Context(), bookingID)
	if err != nil {
		respondServiceError(c, err, "BOOKING_FETCH_FAILED", "Failed to get booking")
		return
	}

	if booking.RiderID != riderID && booking.DriverID != riderID {
		utils.ForbiddenResponse(c)
		return
	}

	utils.SuccessResponse(c, "Booking retrieved", booking)
}

// ListMyBookings lists the authenticated rider's bookings
func (h *BookingHandler) ListMyBookings(c *gin.Context) {
	riderID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	params := utils.GetPaginationParams(c)

	bookings, total, err := h.bookingService.ListByRider(c.Request.Context(), riderID, params)
	if err != nil {
		respondServiceError(c, err, "BOOKING_LIST_FAILED", "Failed to list bookings")
		return
	}

	utils.SuccessResponseWithMeta(c, "Bookings retrieved", bookings, &utils.Meta{
		Pagination: utils.CreatePaginationMeta(params, total),
	})
}

// ListOfferBookings lists bookings against one of the driver's offers
func (h *BookingHandler) ListOfferBookings(c *gin.Context) {
	driverID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	offerID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid offer ID")
		return
	}

	params := utils.GetPaginationParams(c)

	bookings, total, err := h.bookingService.ListByOffer(c.Request.Context(), driverID, offerID, params)
	if err != nil {
		respondServiceError(c, err, "BOOKING_LIST_FAILED", "Failed to list bookings")
		return
	}

	utils.SuccessResponseWithMeta(c, "Bookings retrieved", bookings, &utils.Meta{
		Pagination: utils.CreatePaginationMeta(params, total),
	})
}
