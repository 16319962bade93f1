// File: servicehub/handlers/bundle.go
package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Availability endpoints
	GetWeeklySlotsHandler     gin.HandlerFunc
	DescribeRecurrenceHandler gin.HandlerFunc
	ListOccurrencesHandler    gin.HandlerFunc

	// Appointment endpoints
	CancelAppointmentHandler   gin.HandlerFunc
	CompleteAppointmentHandler gin.HandlerFunc
	RunSweepHandler            gin.HandlerFunc

	// Manual override endpoints
	CreateOverrideHandler gin.HandlerFunc
	DeleteOverrideHandler gin.HandlerFunc

	HealthHandler gin.HandlerFunc
}

// NewHandlerBundle wires handler methods into the bundle routes consume.
func NewHandlerBundle(a *AvailabilityHandler, ap *AppointmentHandler, o *OverrideHandler) *HandlerBundle {
	return &HandlerBundle{
		GetWeeklySlotsHandler:      a.GetWeeklySlotsHandler,
		DescribeRecurrenceHandler:  a.DescribeRecurrenceHandler,
		ListOccurrencesHandler:     a.ListOccurrencesHandler,
		CancelAppointmentHandler:   ap.CancelAppointmentHandler,
		CompleteAppointmentHandler: ap.CompleteAppointmentHandler,
		RunSweepHandler:            ap.RunSweepHandler,
		CreateOverrideHandler:      o.CreateOverrideHandler,
		DeleteOverrideHandler:      o.DeleteOverrideHandler,
		HealthHandler:              HealthHandler,
	}
}
