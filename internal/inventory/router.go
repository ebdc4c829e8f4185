package inventory

import (
	"github.com/gin-gonic/gin"
)

func SetupInventoryRoutes(rg *gin.RouterGroup, controller *Controller) {
	rg.GET("/showings/:id/seats", controller.GetAvailabilityGrid) // GET /api/v1/showings/:id/seats
}
