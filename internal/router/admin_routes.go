package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/waste-pickup-service/internal/handler"
	"github.com/iliyamo/waste-pickup-service/internal/middleware"
	"github.com/iliyamo/waste-pickup-service/internal/model"
)

// RegisterAdmin registers the super admin dashboard under /v1/admin.
func RegisterAdmin(e *echo.Echo, cal *handler.CalendarHandler, a *handler.AdminHandler, jwtSecret string, limit echo.MiddlewareFunc) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleSuperAdmin),
	)

	// ---- Calendar ----
	g.GET("/localbodies/:id/calendar", cal.ListForAdmin)
	g.POST("/localbodies/:id/calendar", cal.Create, limit)
	g.POST("/calendar/:id", cal.Update, limit)
	g.POST("/calendar/:id/delete", cal.Delete, limit)

	// ---- Users ----
	g.GET("/roles", handler.Roles)
	g.GET("/users", a.ListUsers)
	g.POST("/users", a.CreateUser)
	g.PUT("/users/:id", a.UpdateUser)
	g.DELETE("/users/:id", a.DeleteUser)
	g.POST("/users/:id/role", a.SetRole)

	// ---- Waste profiles ----
	g.GET("/profiles", a.ListProfiles)
	g.POST("/profiles", a.CreateProfile, limit)
	g.GET("/profiles/:id", a.GetProfile)
	g.PUT("/profiles/:id", a.UpdateProfile, limit)
	g.DELETE("/profiles/:id", a.DeleteProfile)
	g.POST("/profiles/:id/assign", a.AssignCollector)

	// ---- Collections and reports ----
	g.GET("/collections", a.ListCollections)
	g.GET("/reports", a.Report)
}
