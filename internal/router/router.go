package router // package router defines how HTTP routes are registered for the API

import (
	"database/sql"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iliyamo/waste-pickup-service/internal/handler"
	"github.com/iliyamo/waste-pickup-service/internal/middleware"
	"github.com/iliyamo/waste-pickup-service/internal/model"
)

// RegisterRoutes registers the routes that do not require authentication:
// liveness, readiness and the Prometheus scrape endpoint.
func RegisterRoutes(e *echo.Echo, db *sql.DB, gatherer prometheus.Gatherer) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", handler.Ready(db))
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
}

// RegisterLookups registers the region cascade and the ward table.  Every
// role reads them, and the responses are the same for everybody, so they
// sit behind the response cache.
func RegisterLookups(e *echo.Echo, r *handler.RegionHandler, jwtSecret string, cache echo.MiddlewareFunc) {
	g := e.Group("/v1")
	mw := []echo.MiddlewareFunc{
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.Roles()...),
		cache,
	}
	g.GET("/states", r.States, mw...)
	g.GET("/states/:id/districts", r.Districts, mw...)
	g.GET("/districts/:id/localbodies", r.LocalBodies, mw...)
	g.GET("/wards", handler.Wards, mw...)
	g.GET("/locations/validate", handler.ValidateLocation, mw[:2]...)
}
