package booking

import (
	"errors"
	"net/http"

	"cinebook/internal/shared/middleware"
	"cinebook/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type Controller struct {
	service   Service
	validator *validator.Validate
}

func NewController(service Service) *Controller {
	return &Controller{
		service:   service,
		validator: validator.New(),
	}
}

// bindAndValidate decodes the body and runs the struct validation tags.
func (ct *Controller) bindAndValidate(ctx *gin.Context, req interface{}) bool {
	if err := ctx.ShouldBindJSON(req); err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid request body", err.Error())
		return false
	}
	if err := ct.validator.Struct(req); err != nil {
		response.Error(ctx, http.StatusBadRequest, "Validation failed", err.Error())
		return false
	}
	return true
}

// CreateBooking claims a seat set and starts the reservation flow. The
// response is the only place the guest token ever appears.
func (ct *Controller) CreateBooking(ctx *gin.Context) {
	var req CreateBookingRequest
	if !ct.bindAndValidate(ctx, &req) {
		return
	}

	showingID, err := uuid.Parse(req.ShowingID)
	if err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid showing ID", err.Error())
		return
	}
	seatIDs, err := parseSeatIDs(req.SeatIDs)
	if err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid seat IDs", err.Error())
		return
	}

	booking, err := ct.service.Create(ctx.Request.Context(), showingID, seatIDs)
	if err != nil {
		respondBookingError(ctx, "Failed to create booking", err)
		return
	}

	resp := ToBookingResponse(booking, ct.service.HoldTTL(), true)
	response.Success(ctx, http.StatusCreated, "Booking created successfully", resp)
}

func (ct *Controller) GetBooking(ctx *gin.Context) {
	id, token, ok := ct.bookingCredentials(ctx)
	if !ok {
		return
	}

	booking, err := ct.service.Get(ctx.Request.Context(), id, token)
	if err != nil {
		respondBookingError(ctx, "Failed to get booking", err)
		return
	}

	resp := ToBookingResponse(booking, ct.service.HoldTTL(), false)
	response.Success(ctx, http.StatusOK, "Booking retrieved successfully", resp)
}

func (ct *Controller) ChangeSeats(ctx *gin.Context) {
	id, token, ok := ct.bookingCredentials(ctx)
	if !ok {
		return
	}

	var req ChangeSeatsRequest
	if !ct.bindAndValidate(ctx, &req) {
		return
	}
	seatIDs, err := parseSeatIDs(req.SeatIDs)
	if err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid seat IDs", err.Error())
		return
	}

	booking, err := ct.service.ChangeSeats(ctx.Request.Context(), id, token, seatIDs)
	if err != nil {
		respondBookingError(ctx, "Failed to change seats", err)
		return
	}

	resp := ToBookingResponse(booking, ct.service.HoldTTL(), false)
	response.Success(ctx, http.StatusOK, "Seats changed successfully", resp)
}

func (ct *Controller) SetTickets(ctx *gin.Context) {
	id, token, ok := ct.bookingCredentials(ctx)
	if !ok {
		return
	}

	var req SetTicketsRequest
	if !ct.bindAndValidate(ctx, &req) {
		return
	}

	booking, err := ct.service.SetTickets(ctx.Request.Context(), id, token, *req.NormalCount, *req.ReducedCount)
	if err != nil {
		respondBookingError(ctx, "Failed to set tickets", err)
		return
	}

	resp := ToBookingResponse(booking, ct.service.HoldTTL(), false)
	response.Success(ctx, http.StatusOK, "Tickets set successfully", resp)
}

func (ct *Controller) FillPersonalData(ctx *gin.Context) {
	id, token, ok := ct.bookingCredentials(ctx)
	if !ok {
		return
	}

	var req PersonalDataRequest
	if !ct.bindAndValidate(ctx, &req) {
		return
	}

	booking, err := ct.service.FillPersonalData(ctx.Request.Context(), id, token, req.FirstName, req.LastName, req.Email)
	if err != nil {
		respondBookingError(ctx, "Failed to save personal data", err)
		return
	}

	resp := ToBookingResponse(booking, ct.service.HoldTTL(), false)
	response.Success(ctx, http.StatusOK, "Personal data saved successfully", resp)
}

func (ct *Controller) InitiatePayment(ctx *gin.Context) {
	id, token, ok := ct.bookingCredentials(ctx)
	if !ok {
		return
	}

	payment, err := ct.service.InitiatePayment(ctx.Request.Context(), id, token)
	if err != nil {
		respondBookingError(ctx, "Failed to initiate payment", err)
		return
	}

	response.Success(ctx, http.StatusAccepted, "Payment initiated successfully", ToPaymentResponse(payment))
}

func (ct *Controller) CancelBooking(ctx *gin.Context) {
	id, token, ok := ct.bookingCredentials(ctx)
	if !ok {
		return
	}

	booking, err := ct.service.Cancel(ctx.Request.Context(), id, token)
	if err != nil {
		respondBookingError(ctx, "Failed to cancel booking", err)
		return
	}

	resp := ToBookingResponse(booking, ct.service.HoldTTL(), false)
	response.Success(ctx, http.StatusOK, "Booking cancelled successfully", resp)
}

// bookingCredentials pulls the booking ID from the path and the guest token
// that GuestAuth stored on the context. Responds and returns false on a bad
// ID; whether the token matches the booking is for the service to decide.
func (ct *Controller) bookingCredentials(ctx *gin.Context) (uuid.UUID, string, bool) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid booking ID", err.Error())
		return uuid.Nil, "", false
	}
	return id, middleware.GuestTokenFrom(ctx), true
}

func respondBookingError(ctx *gin.Context, message string, err error) {
	var seatErr *SeatUnavailableError
	switch {
	case errors.As(err, &seatErr):
		response.Error(ctx, http.StatusConflict, "Some seats are no longer available", gin.H{
			"seat_ids": seatErr.SeatIDs,
		})
	case errors.Is(err, ErrLockTimeout):
		response.Error(ctx, http.StatusConflict, "Showing is busy, please retry", err.Error())
	case errors.Is(err, ErrInvalidState):
		response.Error(ctx, http.StatusConflict, message, err.Error())
	case errors.Is(err, ErrInvalidTicketSplit):
		response.Error(ctx, http.StatusUnprocessableEntity, message, err.Error())
	case errors.Is(err, ErrInvalidSeatSelection):
		response.Error(ctx, http.StatusBadRequest, message, err.Error())
	case errors.Is(err, ErrUnauthorized):
		response.Error(ctx, http.StatusUnauthorized, "Booking not found or invalid token", nil)
	case errors.Is(err, ErrShowingNotFound):
		response.Error(ctx, http.StatusNotFound, "Showing not found", nil)
	default:
		response.Error(ctx, http.StatusInternalServerError, message, err.Error())
	}
}
