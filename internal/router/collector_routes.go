package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/waste-pickup-service/internal/handler"
	"github.com/iliyamo/waste-pickup-service/internal/middleware"
	"github.com/iliyamo/waste-pickup-service/internal/model"
)

// RegisterCollector registers the waste collector endpoints under
// /v1/collector.
func RegisterCollector(e *echo.Echo, h *handler.CollectorHandler, jwtSecret string) {
	g := e.Group(
		"/v1/collector",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleCollector),
	)
	g.GET("/profiles", h.AssignedProfiles)
	g.POST("/collections", h.RecordCollection)
}
