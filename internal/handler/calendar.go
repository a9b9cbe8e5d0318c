package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/waste-pickup-service/internal/model"
	"github.com/iliyamo/waste-pickup-service/internal/repository"
	"github.com/iliyamo/waste-pickup-service/internal/service"
	"github.com/iliyamo/waste-pickup-service/pkg/logger"
)

// CalendarHandler serves the pickup date calendar: the customer view with
// per-customer "picked" flags and the super admin maintenance endpoints.
type CalendarHandler struct {
	Calendar *service.CalendarService
	Log      logger.Logger
}

func NewCalendarHandler(cal *service.CalendarService, log logger.Logger) *CalendarHandler {
	if cal == nil {
		panic("nil calendar service passed to NewCalendarHandler")
	}
	return &CalendarHandler{Calendar: cal, Log: log}
}

type customerDate struct {
	ID     uint64 `json:"id"`
	Date   string `json:"date"`
	Title  string `json:"title"`
	Picked bool   `json:"picked"`
}

// adminEvent is shaped for the dashboard's calendar widget.
type adminEvent struct {
	ID    uint64 `json:"id"`
	Title string `json:"title"`
	Start string `json:"start"`
	Color string `json:"color"`
}

type createdDate struct {
	ID   uint64 `json:"id"`
	Date string `json:"date"`
}

type createDatesReq struct {
	Date  string `form:"date" json:"date"`
	Start string `form:"start" json:"start"`
	End   string `form:"end" json:"end"`
}

type updateDateReq struct {
	NewDate string `form:"new_date" json:"new_date"`
}

// ListForCustomer handles GET /v1/localbodies/:id/dates.
func (h *CalendarHandler) ListForCustomer(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	lbID, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid local body id")
	}
	dates, err := h.Calendar.ListDates(c.Request().Context(), lbID, userID)
	if err != nil {
		return respondError(c, h.Log, "calendar.list", err)
	}
	out := make([]customerDate, 0, len(dates))
	for _, d := range dates {
		title := "Available"
		if d.Picked {
			title = "Picked"
		}
		out = append(out, customerDate{ID: d.ID, Date: d.DateString(), Title: title, Picked: d.Picked})
	}
	return c.JSON(http.StatusOK, out)
}

// ListForAdmin handles GET /v1/admin/localbodies/:id/calendar.
func (h *CalendarHandler) ListForAdmin(c echo.Context) error {
	lbID, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid local body id")
	}
	dates, err := h.Calendar.ListDates(c.Request().Context(), lbID, 0)
	if err != nil {
		return respondError(c, h.Log, "calendar.list_admin", err)
	}
	out := make([]adminEvent, 0, len(dates))
	for _, d := range dates {
		out = append(out, adminEvent{ID: d.ID, Title: "Assigned", Start: d.DateString(), Color: "green"})
	}
	return c.JSON(http.StatusOK, out)
}

// Create handles POST /v1/admin/localbodies/:id/calendar.  A request with
// start or end creates the inclusive range; otherwise date creates a
// single entry.  Dates that already exist are not repeated in "created".
func (h *CalendarHandler) Create(c echo.Context) error {
	lbID, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid local body id")
	}
	var req createDatesReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	ctx := c.Request().Context()

	if strings.TrimSpace(req.Start) != "" || strings.TrimSpace(req.End) != "" {
		entries, err := h.Calendar.CreateDateRange(ctx, lbID, req.Start, req.End)
		if err != nil {
			return respondError(c, h.Log, "calendar.create_range", err)
		}
		return c.JSON(http.StatusOK, echo.Map{"status": "created_range", "created": toCreated(entries)})
	}
	if strings.TrimSpace(req.Date) == "" {
		return badRequest(c, "date or start and end are required")
	}
	entry, created, err := h.Calendar.CreateDate(ctx, lbID, req.Date)
	if err != nil {
		return respondError(c, h.Log, "calendar.create", err)
	}
	var entries []model.CalendarEntry
	if created {
		entries = append(entries, entry)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "created", "created": toCreated(entries)})
}

// Update handles POST /v1/admin/calendar/:id.
func (h *CalendarHandler) Update(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid calendar entry id")
	}
	var req updateDateReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	entry, err := h.Calendar.UpdateDate(c.Request().Context(), id, req.NewDate)
	if errors.Is(err, repository.ErrConflict) {
		return c.JSON(http.StatusConflict, echo.Map{"status": "conflict", "message": "date already assigned"})
	}
	if err != nil {
		return respondError(c, h.Log, "calendar.update", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "updated", "id": entry.ID, "date": entry.DateString()})
}

// Delete handles POST /v1/admin/calendar/:id/delete.  Bookings of the
// entry are removed with it.
func (h *CalendarHandler) Delete(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid calendar entry id")
	}
	if err := h.Calendar.DeleteDate(c.Request().Context(), id); err != nil {
		return respondError(c, h.Log, "calendar.delete", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "deleted", "id": id})
}

func toCreated(entries []model.CalendarEntry) []createdDate {
	out := make([]createdDate, 0, len(entries))
	for _, e := range entries {
		out = append(out, createdDate{ID: e.ID, Date: e.DateString()})
	}
	return out
}
