package handlers

import (
	"ridepool/internal/middleware"
	"ridepool/internal/services"
	"ridepool/internal/utils"
	"ridepool/internal/validators"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OfferHandler struct {
	offerService services.OfferService
}

func NewOfferHandler(offerService services.OfferService) *OfferHandler {
	return &OfferHandler{
		offerService: offerService,
	}
}

// CreateOffer creates a new draft ride offer for the authenticated driver
func (h *OfferHandler) CreateOffer(c *gin.Context) {
	var request services.CreateOfferRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	if errs := validators.ValidateCreateOffer(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, validationDetails(errs))
		return
	}

	driverID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	offer, err := h.offerService.CreateOffer(c.Request.Context(), driverID, &request)
	if err != nil {
		respondServiceError(c, err, "OFFER_CREATE_FAILED", "Failed to create ride offer")
		return
	}

	utils.CreatedResponse(c, "Ride offer created", offer)
}

// PublishOffer moves a draft offer into the bookable pool
func (h *OfferHandler) PublishOffer(c *gin.Context) {
	offerID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid offer ID")
		return
	}

	driverID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	offer, err := h.offerService.PublishOffer(c.Request.Context(), driverID, offerID)
	if err != nil {
		respondServiceError(c, err, "OFFER_PUBLISH_FAILED", "Failed to publish ride offer")
		return
	}

	utils.SuccessResponse(c, "Ride offer published", offer)
}

// GetOffer retrieves a single ride offer
func (h *OfferHandler) GetOffer(c *gin.Context) {
	offerID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid offer ID")
		return
	}

	offer, err := h.offerService.GetOffer(c.Request.Context(), offerID)
	if err != nil {
		respondServiceError(c, err, "OFFER_FETCH_FAILED", "Failed to get ride offer")
		return
	}

	utils.SuccessResponse(c, "Ride offer retrieved", offer)
}

// GetNextDeparture resolves the next concrete departure for an offer
func (h *OfferHandler) GetNextDeparture(c *gin.Context) {
	offerID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid offer ID")
		return
	}

	departure, err := h.offerService.GetNextDeparture(c.Request.Context(), offerID)
	if err != nil {
		respondServiceError(c, err, "OFFER_FETCH_FAILED", "Failed to resolve next departure")
		return
	}

	utils.SuccessResponse(c, "Next departure resolved", departure)
}

// ListPublished lists bookable offers
func (h *OfferHandler) ListPublished(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	offers, total, err := h.offerService.ListPublished(c.Request.Context(), params)
	if err != nil {
		respondServiceError(c, err, "OFFER_LIST_FAILED", "Failed to list ride offers")
		return
	}

	utils.SuccessResponseWithMeta(c, "Ride offers retrieved", offers, &utils.Meta{
		Pagination: utils.CreatePaginationMeta(params, total),
	})
}

// ListMyOffers lists the authenticated driver's offers
func (h *OfferHandler) ListMyOffers(c *gin.Context) {
	driverID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	params := utils.GetPaginationParams(c)

	offers, total, err := h.offerService.ListByDriver(c.Request.Context(), driverID, params)
	if err != nil {
		respondServiceError(c, err, "OFFER_LIST_FAILED", "Failed to list ride offers")
		return
	}

	utils.SuccessResponseWithMeta(c, "Ride offers retrieved", offers, &utils.Meta{
		Pagination: utils.CreatePaginationMeta(params, total),
	})
}

// UpdateOffer edits a draft offer
func (h *OfferHandler) UpdateOffer(c *gin.Context) {
	offerID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid offer ID")
		return
	}

	var request services.UpdateOfferRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	if errs := validators.ValidateStruct(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, validationDetails(errs))
		return
	}

	driverID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	offer, err := h.offerService.UpdateDraft(c.Request.Context(), driverID, offerID, &request)
	if err != nil {
		respondServiceError(c, err, "OFFER_UPDATE_FAILED", "Failed to update ride offer")
		return
	}

	utils.SuccessResponse(c, "Ride offer updated", offer)
}

type cancelOfferRequest struct {
	Reason string `json:"reason"`
}

// CancelOffer withdraws an offer and cancels its live bookings
func (h *OfferHandler) CancelOffer(c *gin.Context) {
	offerID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid offer ID")
		return
	}

	var request cancelOfferRequest
	if err := c.ShouldBindJSON(&request); err != nil && err.Error() != "EOF" {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	driverID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	offer, notices, err := h.offerService.CancelOffer(c.Request.Context(), driverID, offerID, request.Reason)
	if err != nil {
		respondServiceError(c, err, "OFFER_CANCEL_FAILED", "Failed to cancel ride offer")
		return
	}

	utils.SuccessResponse(c, "Ride offer cancelled", gin.H{
		"offer":              offer,
		"bookings_cancelled": len(notices),
	})
}

// CompleteOffer marks the trip as done
func (h *OfferHandler) CompleteOffer(c *gin.Context) {
	offerID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid offer ID")
		return
	}

	driverID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	offer, err := h.offerService.CompleteOffer(c.Request.Context(), driverID, offerID)
	if err != nil {
		respondServiceError(c, err, "OFFER_COMPLETE_FAILED", "Failed to complete ride offer")
		return
	}

	utils.SuccessResponse(c, "Ride offer completed", offer)
}

// DeleteOffer removes a draft offer
func (h *OfferHandler) DeleteOffer(c *gin.Context) {
	offerID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid offer ID")
		return
	}

	driverID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	if err := h.offerService.DeleteDraft(c.Request.Context(), driverID, offerID); err != nil {
		respondServiceError(c, err, "OFFER_DELETE_FAILED", "Failed to delete ride offer")
		return
	}

	utils.SuccessResponse(c, "Ride offer deleted", nil)
}
