package booking

import (
	"cinebook/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupBookingRoutes(rg *gin.RouterGroup, controller *Controller) {
	bookings := rg.Group("/bookings")
	{
		bookings.POST("", controller.CreateBooking) // POST /api/v1/bookings

		// Everything below requires the guest token minted at creation.
		authorized := bookings.Group("", middleware.GuestAuth())
		{
			authorized.GET("/:id", controller.GetBooking)                // GET    /api/v1/bookings/:id
			authorized.PUT("/:id/seats", controller.ChangeSeats)         // PUT    /api/v1/bookings/:id/seats
			authorized.PUT("/:id/tickets", controller.SetTickets)        // PUT    /api/v1/bookings/:id/tickets
			authorized.PUT("/:id/details", controller.FillPersonalData)  // PUT    /api/v1/bookings/:id/details
			authorized.POST("/:id/payment", controller.InitiatePayment)  // POST   /api/v1/bookings/:id/payment
			authorized.DELETE("/:id", controller.CancelBooking)          // DELETE /api/v1/bookings/:id
		}
	}
}
