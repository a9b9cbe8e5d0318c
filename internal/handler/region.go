package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/waste-pickup-service/internal/config"
    "github.com/iliyamo/waste-pickup-service/internal/repository"
    "github.com/iliyamo/waste-pickup-service/pkg/logger"
)

// RegionHandler serves the State → District → LocalBody cascade used by
// profile forms and calendar filters, plus the ward table.
type RegionHandler struct {
    Regions *repository.RegionRepo
    Log     logger.Logger
}

func NewRegionHandler(regions *repository.RegionRepo, log logger.Logger) *RegionHandler {
    return &RegionHandler{Regions: regions, Log: log}
}

// States handles GET /v1/states.
func (h *RegionHandler) States(c echo.Context) error {
    items, err := h.Regions.ListStates(c.Request().Context())
    if err != nil {
        return respondError(c, h.Log, "region.states", err)
    }
    return c.JSON(http.StatusOK, items)
}

// Districts handles GET /v1/states/:id/districts.
func (h *RegionHandler) Districts(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return badRequest(c, "invalid state id")
    }
    items, err := h.Regions.ListDistricts(c.Request().Context(), id)
    if err != nil {
        return respondError(c, h.Log, "region.districts", err)
    }
    return c.JSON(http.StatusOK, items)
}

// LocalBodies handles GET /v1/districts/:id/localbodies.
func (h *RegionHandler) LocalBodies(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return badRequest(c, "invalid district id")
    }
    items, err := h.Regions.ListLocalBodies(c.Request().Context(), id)
    if err != nil {
        return respondError(c, h.Log, "region.localbodies", err)
    }
    return c.JSON(http.StatusOK, items)
}

// Wards handles GET /v1/wards.
func Wards(c echo.Context) error {
    return c.JSON(http.StatusOK, config.WardOptions())
}
