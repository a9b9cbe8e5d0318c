package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/waste-pickup-service/internal/repository"
	"github.com/iliyamo/waste-pickup-service/internal/service"
	"github.com/iliyamo/waste-pickup-service/pkg/logger"
)

// ProfileHandler serves the customer's waste profiles, their location
// history and booked pickup dates.
type ProfileHandler struct {
	Profiles *service.ProfileService
	Bookings *repository.BookingRepo
	Log      logger.Logger
}

func NewProfileHandler(profiles *service.ProfileService, bookings *repository.BookingRepo, log logger.Logger) *ProfileHandler {
	if profiles == nil || bookings == nil {
		panic("nil dependency passed to NewProfileHandler")
	}
	return &ProfileHandler{Profiles: profiles, Bookings: bookings, Log: log}
}

// coordinate keeps a latitude or longitude as sent so the service can
// decide whether it is usable.  JSON clients may send either a number or
// a string.
type coordinate string

func (v *coordinate) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" {
		s = ""
	}
	*v = coordinate(s)
	return nil
}

func (v *coordinate) UnmarshalParam(s string) error {
	*v = coordinate(s)
	return nil
}

// profileReq is the create/update body.  selected_date is a comma
// separated list of calendar entry ids.
type profileReq struct {
	FullName        string     `form:"full_name" json:"full_name"`
	SecondaryNumber string     `form:"secondary_number" json:"secondary_number"`
	PickupAddress   string     `form:"pickup_address" json:"pickup_address"`
	Landmark        string     `form:"landmark" json:"landmark"`
	Pincode         string     `form:"pincode" json:"pincode"`
	Latitude        coordinate `form:"latitude" json:"latitude"`
	Longitude       coordinate `form:"longitude" json:"longitude"`
	StateID         uint64     `form:"state_id" json:"state_id"`
	DistrictID      uint64     `form:"district_id" json:"district_id"`
	LocalBodyID     uint64     `form:"localbody_id" json:"localbody_id"`
	Ward            int        `form:"ward" json:"ward"`
	NumberOfBags    int        `form:"number_of_bags" json:"number_of_bags"`
	WasteType       string     `form:"waste_type" json:"waste_type"`
	Comments        string     `form:"comments" json:"comments"`
	SelectedDate    string     `form:"selected_date" json:"selected_date"`
}

func (r profileReq) input() service.ProfileInput {
	return service.ProfileInput{
		FullName:        r.FullName,
		SecondaryNumber: r.SecondaryNumber,
		PickupAddress:   r.PickupAddress,
		Landmark:        r.Landmark,
		Pincode:         r.Pincode,
		Latitude:        string(r.Latitude),
		Longitude:       string(r.Longitude),
		StateID:         r.StateID,
		DistrictID:      r.DistrictID,
		LocalBodyID:     r.LocalBodyID,
		Ward:            r.Ward,
		NumberOfBags:    r.NumberOfBags,
		WasteType:       r.WasteType,
		Comments:        r.Comments,
		SelectedDate:    r.SelectedDate,
	}
}

// List handles GET /v1/profiles.
func (h *ProfileHandler) List(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	items, err := h.Profiles.List(c.Request().Context(), userID)
	if err != nil {
		return respondError(c, h.Log, "profile.list", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Create handles POST /v1/profiles.  The response reports whether the
// location was tracked and what happened to each selected date.
func (h *ProfileHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var req profileReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	res, err := h.Profiles.Create(c.Request().Context(), userID, req.input())
	if err != nil {
		return respondError(c, h.Log, "profile.create", err)
	}
	return c.JSON(http.StatusCreated, res)
}

// Get handles GET /v1/profiles/:id.
func (h *ProfileHandler) Get(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid profile id")
	}
	detail, err := h.Profiles.Detail(c.Request().Context(), userID, id)
	if err != nil {
		return respondError(c, h.Log, "profile.get", err)
	}
	return c.JSON(http.StatusOK, detail)
}

// Update handles PUT /v1/profiles/:id.  A blank selected_date leaves the
// profile's bookings alone; any other value replaces them.
func (h *ProfileHandler) Update(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid profile id")
	}
	var req profileReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	res, err := h.Profiles.Update(c.Request().Context(), userID, id, req.input())
	if err != nil {
		return respondError(c, h.Log, "profile.update", err)
	}
	return c.JSON(http.StatusOK, res)
}

// Delete handles DELETE /v1/profiles/:id.
func (h *ProfileHandler) Delete(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid profile id")
	}
	if err := h.Profiles.Delete(c.Request().Context(), userID, id); err != nil {
		return respondError(c, h.Log, "profile.delete", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "deleted", "id": id})
}

// History handles GET /v1/profiles/:id/locations.
func (h *ProfileHandler) History(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid profile id")
	}
	items, err := h.Profiles.History(c.Request().Context(), userID, id)
	if err != nil {
		return respondError(c, h.Log, "profile.history", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Export handles GET /v1/profiles/export: the customer's profiles that
// have coordinates.
func (h *ProfileHandler) Export(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	items, err := h.Profiles.Export(c.Request().Context(), userID)
	if err != nil {
		return respondError(c, h.Log, "profile.export", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items, "count": len(items)})
}

// ValidateLocation handles GET /v1/locations/validate?latitude=&longitude=.
func ValidateLocation(c echo.Context) error {
	lat, lng, ok := service.ValidateCoordinates(c.QueryParam("latitude"), c.QueryParam("longitude"))
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"valid":   false,
			"message": "latitude must be within [-90, 90] and longitude within [-180, 180]",
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"valid":     true,
		"latitude":  lat,
		"longitude": lng,
		"message":   "location is valid",
	})
}

// ListBookings handles GET /v1/bookings: every date the customer holds.
func (h *ProfileHandler) ListBookings(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	items, err := h.Bookings.ListForCustomer(c.Request().Context(), userID)
	if err != nil {
		return respondError(c, h.Log, "booking.list", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// CancelBooking handles DELETE /v1/bookings/:id.
func (h *ProfileHandler) CancelBooking(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid booking id")
	}
	if err := h.Bookings.Cancel(c.Request().Context(), id, userID); err != nil {
		return respondError(c, h.Log, "booking.cancel", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "cancelled", "id": id})
}
