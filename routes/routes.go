package routes

import (
	"time"

	"servicehub/handlers"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterAvailabilityRoutes registers slot generation and recurrence lookups.
func RegisterAvailabilityRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/availability")
	{
		api.GET("/:providerId/:listingId/weekly", hb.GetWeeklySlotsHandler)
	}

	recurrence := r.Group("/api/recurrence")
	{
		recurrence.GET("/:rule", hb.DescribeRecurrenceHandler)
		recurrence.GET("/:rule/occurrences", hb.ListOccurrencesHandler)
	}
}

// RegisterAppointmentRoutes registers appointment lifecycle endpoints.
func RegisterAppointmentRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/appointments")
	{
		api.POST("/sweep", hb.RunSweepHandler)
		api.POST("/:id/cancel", hb.CancelAppointmentHandler)
		api.POST("/:id/complete", hb.CompleteAppointmentHandler)
	}
}

// RegisterOverrideRoutes registers manual override administration.
func RegisterOverrideRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/providers/:providerId/overrides")
	{
		api.POST("", hb.CreateOverrideHandler)
		api.DELETE("/:id", hb.DeleteOverrideHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", hb.HealthHandler)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterAvailabilityRoutes(r, hb)
	RegisterAppointmentRoutes(r, hb)
	RegisterOverrideRoutes(r, hb)
	RegisterHealthRoute(r, hb)
}
