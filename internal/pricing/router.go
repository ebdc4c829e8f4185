package pricing

import (
	"github.com/gin-gonic/gin"
)

func SetupPricingRoutes(rg *gin.RouterGroup, controller *Controller) {
	rg.GET("/showings/:id/quote", controller.GetQuote) // GET /api/v1/showings/:id/quote
}
