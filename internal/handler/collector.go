package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/waste-pickup-service/internal/model"
    "github.com/iliyamo/waste-pickup-service/internal/repository"
    "github.com/iliyamo/waste-pickup-service/pkg/logger"
)

// CollectorHandler serves the waste collector dashboard.
type CollectorHandler struct {
    Profiles    *repository.WasteProfileRepo
    Collections *repository.CollectionRepo
    Log         logger.Logger
}

func NewCollectorHandler(profiles *repository.WasteProfileRepo, collections *repository.CollectionRepo, log logger.Logger) *CollectorHandler {
    return &CollectorHandler{Profiles: profiles, Collections: collections, Log: log}
}

type collectionReq struct {
    WasteProfileID uint64  `form:"waste_profile_id" json:"waste_profile_id"`
    Kg             float64 `form:"kg" json:"kg"`
}

// AssignedProfiles handles GET /v1/collector/profiles.
func (h *CollectorHandler) AssignedProfiles(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return unauthorized(c)
    }
    items, err := h.Profiles.ListByCollector(c.Request().Context(), userID)
    if err != nil {
        return respondError(c, h.Log, "collector.profiles", err)
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// RecordCollection handles POST /v1/collector/collections.  Only the
// collector assigned to the profile may record against it; the profile is
// then marked collected.
func (h *CollectorHandler) RecordCollection(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return unauthorized(c)
    }
    var req collectionReq
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "invalid request body")
    }
    if req.WasteProfileID == 0 || req.Kg <= 0 {
        return badRequest(c, "waste_profile_id and a positive kg are required")
    }
    ctx := c.Request().Context()
    p, err := h.Profiles.GetByID(ctx, req.WasteProfileID)
    if err != nil {
        return respondError(c, h.Log, "collector.record", err)
    }
    if p.AssignedCollectorID == nil || *p.AssignedCollectorID != userID {
        return respondError(c, h.Log, "collector.record", repository.ErrForbidden)
    }
    col := model.WasteCollection{
        CustomerID:     p.UserID,
        CollectorID:    userID,
        WasteProfileID: &p.ID,
        Kg:             req.Kg,
    }
    id, err := h.Collections.Create(ctx, col)
    if err != nil {
        return respondError(c, h.Log, "collector.record", err)
    }
    if err := h.Profiles.MarkCollected(ctx, p.ID); err != nil {
        return respondError(c, h.Log, "collector.record", err)
    }
    col.ID = id
    return c.JSON(http.StatusCreated, col)
}
