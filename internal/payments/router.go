package payments

import (
	"github.com/gin-gonic/gin"
)

func SetupPaymentRoutes(rg *gin.RouterGroup, controller *Controller) {
	// The gateway posts here; customers never call this directly.
	rg.POST("/payments/callback", controller.HandleCallback) // POST /api/v1/payments/callback
}
