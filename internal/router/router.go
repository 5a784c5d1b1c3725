package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ticket-reservation/internal/handler"
)

// RegisterRoutes registers routes that sit outside the API group.
// Currently it exposes only the health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterReservations mounts the reservation endpoints under /api.  Any
// middleware passed in (typically the rate limiter) applies to the whole
// group; the health check is left unthrottled.
func RegisterReservations(e *echo.Echo, h *handler.ReservationHandler, mw ...echo.MiddlewareFunc) {
	g := e.Group("/api", mw...)

	// administrator
	g.POST("/setup", h.Setup)
	g.GET("/view/:showNumber", h.View)
	g.GET("/shows/:showNumber", h.GetShow)

	// buyer
	g.GET("/availability/:showNumber", h.Availability)
	g.POST("/book/:showNumber", h.Book)
	g.DELETE("/cancel", h.Cancel)
}
