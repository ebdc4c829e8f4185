package catalog

import (
	"net/http"
	"strconv"

	"cinebook/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

func (c *Controller) ListShowings(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(ctx.DefaultQuery("offset", "0"))

	showings, err := c.service.ListUpcomingShowings(ctx.Request.Context(), limit, offset)
	if err != nil {
		response.Error(ctx, http.StatusInternalServerError, "Failed to list showings", err.Error())
		return
	}

	response.Success(ctx, http.StatusOK, "Showings retrieved successfully", showings)
}

func (c *Controller) GetShowing(ctx *gin.Context) {
	id := ctx.Param("id")
	if id == "" {
		response.Error(ctx, http.StatusBadRequest, "Showing ID is required", "missing showing ID")
		return
	}

	showing, err := c.service.GetShowing(ctx.Request.Context(), id)
	if err != nil {
		statusCode := http.StatusInternalServerError
		if err.Error() == "showing not found" {
			statusCode = http.StatusNotFound
		}
		response.Error(ctx, statusCode, "Failed to get showing", err.Error())
		return
	}

	response.Success(ctx, http.StatusOK, "Showing retrieved successfully", showing)
}

func (c *Controller) GetHall(ctx *gin.Context) {
	id := ctx.Param("id")
	if id == "" {
		response.Error(ctx, http.StatusBadRequest, "Hall ID is required", "missing hall ID")
		return
	}

	hall, err := c.service.GetHall(ctx.Request.Context(), id)
	if err != nil {
		statusCode := http.StatusInternalServerError
		if err.Error() == "hall not found" {
			statusCode = http.StatusNotFound
		}
		response.Error(ctx, statusCode, "Failed to get hall", err.Error())
		return
	}

	response.Success(ctx, http.StatusOK, "Hall retrieved successfully", hall)
}

func (c *Controller) ListPrices(ctx *gin.Context) {
	prices, err := c.service.ListPrices(ctx.Request.Context())
	if err != nil {
		response.Error(ctx, http.StatusInternalServerError, "Failed to list prices", err.Error())
		return
	}

	response.Success(ctx, http.StatusOK, "Prices retrieved successfully", prices)
}
