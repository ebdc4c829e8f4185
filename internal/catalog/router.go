package catalog

import (
	"github.com/gin-gonic/gin"
)

func SetupCatalogRoutes(rg *gin.RouterGroup, controller *Controller) {

	// Public browse surface, read-only

	showings := rg.Group("/showings")
	{
		showings.GET("", controller.ListShowings)    // GET /api/v1/showings
		showings.GET("/:id", controller.GetShowing)  // GET /api/v1/showings/:id
	}

	halls := rg.Group("/halls")
	{
		halls.GET("/:id", controller.GetHall) // GET /api/v1/halls/:id
	}

	rg.GET("/prices", controller.ListPrices) // GET /api/v1/prices
}
