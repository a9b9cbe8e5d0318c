package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/waste-pickup-service/internal/handler"
	"github.com/iliyamo/waste-pickup-service/internal/middleware"
	"github.com/iliyamo/waste-pickup-service/internal/model"
)

// RegisterCustomer registers customer-scoped endpoints under /v1.  All
// routes require a valid JWT and the CUSTOMER role.  Submissions that may
// book pickup dates pass through the rate limiter.
func RegisterCustomer(e *echo.Echo, cal *handler.CalendarHandler, p *handler.ProfileHandler, jwtSecret string, limit echo.MiddlewareFunc) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleCustomer),
	)

	g.GET("/localbodies/:id/dates", cal.ListForCustomer)

	g.GET("/profiles", p.List)
	g.POST("/profiles", p.Create, limit)
	g.GET("/profiles/export", p.Export)
	g.GET("/profiles/:id", p.Get)
	g.PUT("/profiles/:id", p.Update, limit)
	g.DELETE("/profiles/:id", p.Delete)
	g.GET("/profiles/:id/locations", p.History)

	g.GET("/bookings", p.ListBookings)
	g.DELETE("/bookings/:id", p.CancelBooking)
}
