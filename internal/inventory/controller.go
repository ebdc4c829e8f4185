package inventory

import (
	"errors"
	"net/http"

	"cinebook/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

func (c *Controller) GetAvailabilityGrid(ctx *gin.Context) {
	showingID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid showing ID", err.Error())
		return
	}

	grid, err := c.service.AvailabilityGrid(ctx.Request.Context(), showingID)
	if err != nil {
		if errors.Is(err, ErrShowingNotFound) {
			response.Error(ctx, http.StatusNotFound, "Showing not found", nil)
			return
		}
		response.Error(ctx, http.StatusInternalServerError, "Failed to load seat availability", err.Error())
		return
	}

	response.Success(ctx, http.StatusOK, "Seat availability retrieved successfully", grid)
}
