package payments

import (
	"errors"
	"net/http"

	"cinebook/internal/booking"
	"cinebook/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type OutcomeRequest struct {
	Reference     string `json:"reference" binding:"required"`
	Success       *bool  `json:"success" binding:"required"`
	FailureReason string `json:"failure_reason"`
}

type Controller struct {
	bookings booking.Service
}

func NewController(bookings booking.Service) *Controller {
	return &Controller{bookings: bookings}
}

// HandleCallback receives the gateway's asynchronous outcome report and maps
// it onto the booking lifecycle.
func (c *Controller) HandleCallback(ctx *gin.Context) {
	var req OutcomeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	err := c.bookings.HandlePaymentOutcome(ctx.Request.Context(), req.Reference, *req.Success, req.FailureReason)
	if err != nil {
		switch {
		case errors.Is(err, booking.ErrPaymentNotFound):
			response.Error(ctx, http.StatusNotFound, "Unknown payment reference", nil)
		case errors.Is(err, booking.ErrInvalidState):
			// The charge is recorded, but the booking could not be paid.
			response.Error(ctx, http.StatusConflict, "Booking is no longer payable", err.Error())
		default:
			response.Error(ctx, http.StatusInternalServerError, "Failed to process payment outcome", err.Error())
		}
		return
	}

	response.Success(ctx, http.StatusOK, "Payment outcome processed", nil)
}
