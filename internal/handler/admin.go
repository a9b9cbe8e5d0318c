package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/waste-pickup-service/internal/model"
	"github.com/iliyamo/waste-pickup-service/internal/repository"
	"github.com/iliyamo/waste-pickup-service/internal/service"
	"github.com/iliyamo/waste-pickup-service/internal/utils"
	"github.com/iliyamo/waste-pickup-service/pkg/logger"
)

// ProfilePageSize is the number of waste profiles per admin list page.
const ProfilePageSize = 10

// AdminHandler bundles the super admin dashboard: users and roles, waste
// profiles, collector assignment, collected data and reports.
type AdminHandler struct {
	Users       *repository.UserRepo
	Profiles    *repository.WasteProfileRepo
	ProfileSvc  *service.ProfileService
	Collections *repository.CollectionRepo
	BcryptCost  int
	DefaultPass string
	Log         logger.Logger
}

func NewAdminHandler(users *repository.UserRepo, profiles *repository.WasteProfileRepo, profileSvc *service.ProfileService,
	collections *repository.CollectionRepo, bcryptCost int, defaultPass string, log logger.Logger) *AdminHandler {
	if users == nil || profiles == nil || profileSvc == nil || collections == nil {
		panic("nil dependency passed to NewAdminHandler")
	}
	return &AdminHandler{
		Users:       users,
		Profiles:    profiles,
		ProfileSvc:  profileSvc,
		Collections: collections,
		BcryptCost:  bcryptCost,
		DefaultPass: defaultPass,
		Log:         log,
	}
}

type userReq struct {
	FirstName     string `form:"first_name" json:"first_name"`
	LastName      string `form:"last_name" json:"last_name"`
	Email         string `form:"email" json:"email"`
	ContactNumber string `form:"contact_number" json:"contact_number"`
	Password      string `form:"password" json:"password"`
	Role          string `form:"role" json:"role"`
	IsActive      *bool  `form:"is_active" json:"is_active"`
}

func (r userReq) validate() string {
	switch {
	case strings.TrimSpace(r.FirstName) == "":
		return "first_name is required"
	case !strings.Contains(r.Email, "@"):
		return "a valid email is required"
	case strings.TrimSpace(r.ContactNumber) == "":
		return "contact_number is required"
	}
	return ""
}

type roleReq struct {
	Role string `form:"role" json:"role"`
}

type assignReq struct {
	CollectorID uint64 `form:"collector_id" json:"collector_id"`
}

// adminProfileReq is a profile created on behalf of the customer owning
// contact_number.
type adminProfileReq struct {
	profileReq
	ContactNumber string `form:"contact_number" json:"contact_number"`
}

// ListUsers handles GET /v1/admin/users?role=.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	var filter *model.Role
	if raw := c.QueryParam("role"); raw != "" {
		r, ok := model.ParseRole(raw)
		if !ok {
			return badRequest(c, "unknown role")
		}
		filter = &r
	}
	users, err := h.Users.List(c.Request().Context(), filter)
	if err != nil {
		return respondError(c, h.Log, "user.list", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": users})
}

// CreateUser handles POST /v1/admin/users.  Users created without a
// password get the configured default one.
func (h *AdminHandler) CreateUser(c echo.Context) error {
	var req userReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if msg := req.validate(); msg != "" {
		return badRequest(c, msg)
	}
	role := model.RoleCustomer
	if req.Role != "" {
		r, ok := model.ParseRole(req.Role)
		if !ok {
			return badRequest(c, "unknown role")
		}
		role = r
	}
	password := req.Password
	if password == "" {
		password = h.DefaultPass
	}
	hash, err := utils.HashPassword(password, h.BcryptCost)
	if err != nil {
		return respondError(c, h.Log, "user.hash", err)
	}
	u := model.User{
		FirstName:     strings.TrimSpace(req.FirstName),
		LastName:      strings.TrimSpace(req.LastName),
		Email:         req.Email,
		ContactNumber: req.ContactNumber,
		PasswordHash:  hash,
		Role:          role,
		IsActive:      req.IsActive == nil || *req.IsActive,
	}
	id, err := h.Users.Create(c.Request().Context(), u)
	if err != nil {
		return respondError(c, h.Log, "user.create", err)
	}
	created, err := h.Users.GetByID(c.Request().Context(), id)
	if err != nil {
		return respondError(c, h.Log, "user.create", err)
	}
	return c.JSON(http.StatusCreated, created)
}

// UpdateUser handles PUT /v1/admin/users/:id.  The role is not changed
// here; see SetRole.
func (h *AdminHandler) UpdateUser(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid user id")
	}
	var req userReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if msg := req.validate(); msg != "" {
		return badRequest(c, msg)
	}
	ctx := c.Request().Context()
	existing, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return respondError(c, h.Log, "user.update", err)
	}
	existing.FirstName = strings.TrimSpace(req.FirstName)
	existing.LastName = strings.TrimSpace(req.LastName)
	existing.Email = req.Email
	existing.ContactNumber = req.ContactNumber
	if req.IsActive != nil {
		existing.IsActive = *req.IsActive
	}
	existing.PasswordHash = ""
	if req.Password != "" {
		hash, err := utils.HashPassword(req.Password, h.BcryptCost)
		if err != nil {
			return respondError(c, h.Log, "user.hash", err)
		}
		existing.PasswordHash = hash
	}
	if err := h.Users.Update(ctx, existing); err != nil {
		return respondError(c, h.Log, "user.update", err)
	}
	updated, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return respondError(c, h.Log, "user.update", err)
	}
	return c.JSON(http.StatusOK, updated)
}

// DeleteUser handles DELETE /v1/admin/users/:id.  An admin cannot delete
// their own account.
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	actorID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid user id")
	}
	if id == actorID {
		return badRequest(c, "cannot delete your own account")
	}
	if err := h.Users.Delete(c.Request().Context(), id); err != nil {
		return respondError(c, h.Log, "user.delete", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "deleted", "id": id})
}

// SetRole handles POST /v1/admin/users/:id/role.
func (h *AdminHandler) SetRole(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid user id")
	}
	var req roleReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	role, ok := model.ParseRole(req.Role)
	if !ok {
		return badRequest(c, "unknown role")
	}
	if err := h.Users.SetRole(c.Request().Context(), id, role); err != nil {
		return respondError(c, h.Log, "user.role", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "updated", "id": id, "role": role.Name()})
}

// Roles handles GET /v1/admin/roles.
func Roles(c echo.Context) error {
	type roleOption struct {
		Value model.Role `json:"value"`
		Name  string     `json:"name"`
	}
	out := []roleOption{}
	for _, r := range model.Roles() {
		out = append(out, roleOption{Value: r, Name: r.Name()})
	}
	return c.JSON(http.StatusOK, out)
}

// ListProfiles handles GET /v1/admin/profiles?q=&page=.
func (h *AdminHandler) ListProfiles(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	items, total, err := h.Profiles.Search(c.Request().Context(), strings.TrimSpace(c.QueryParam("q")), page, ProfilePageSize)
	if err != nil {
		return respondError(c, h.Log, "profile.search", err)
	}
	pages := (total + ProfilePageSize - 1) / ProfilePageSize
	return c.JSON(http.StatusOK, echo.Map{
		"items":     items,
		"page":      page,
		"page_size": ProfilePageSize,
		"total":     total,
		"pages":     pages,
	})
}

// GetProfile handles GET /v1/admin/profiles/:id.
func (h *AdminHandler) GetProfile(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid profile id")
	}
	detail, err := h.ProfileSvc.DetailAny(c.Request().Context(), id)
	if err != nil {
		return respondError(c, h.Log, "profile.get_any", err)
	}
	return c.JSON(http.StatusOK, detail)
}

// CreateProfile handles POST /v1/admin/profiles for the customer who owns
// contact_number.
func (h *AdminHandler) CreateProfile(c echo.Context) error {
	actorID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var req adminProfileReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if strings.TrimSpace(req.ContactNumber) == "" {
		return badRequest(c, "contact_number is required")
	}
	ctx := c.Request().Context()
	customer, err := h.Users.GetByContact(ctx, req.ContactNumber)
	if err != nil {
		return respondError(c, h.Log, "profile.create_any", err)
	}
	if customer.Role != model.RoleCustomer {
		return badRequest(c, "contact_number does not belong to a customer")
	}
	res, err := h.ProfileSvc.CreateForCustomer(ctx, customer.ID, actorID, req.input())
	if err != nil {
		return respondError(c, h.Log, "profile.create_any", err)
	}
	return c.JSON(http.StatusCreated, res)
}

// UpdateProfile handles PUT /v1/admin/profiles/:id.
func (h *AdminHandler) UpdateProfile(c echo.Context) error {
	actorID, err := getUserID(c)
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
	res, err := h.ProfileSvc.UpdateAny(c.Request().Context(), actorID, id, req.input())
	if err != nil {
		return respondError(c, h.Log, "profile.update_any", err)
	}
	return c.JSON(http.StatusOK, res)
}

// DeleteProfile handles DELETE /v1/admin/profiles/:id.
func (h *AdminHandler) DeleteProfile(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid profile id")
	}
	if err := h.Profiles.Delete(c.Request().Context(), id); err != nil {
		return respondError(c, h.Log, "profile.delete_any", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "deleted", "id": id})
}

// AssignCollector handles POST /v1/admin/profiles/:id/assign.
func (h *AdminHandler) AssignCollector(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid profile id")
	}
	var req assignReq
	if err := c.Bind(&req); err != nil || req.CollectorID == 0 {
		return badRequest(c, "collector_id is required")
	}
	ctx := c.Request().Context()
	collector, err := h.Users.GetByID(ctx, req.CollectorID)
	if err != nil {
		return respondError(c, h.Log, "profile.assign", err)
	}
	if collector.Role != model.RoleCollector {
		return badRequest(c, "user is not a collector")
	}
	if err := h.Profiles.AssignCollector(ctx, id, collector.ID); err != nil {
		return respondError(c, h.Log, "profile.assign", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "assigned", "id": id, "collector_id": collector.ID})
}

// ListCollections handles GET /v1/admin/collections.
func (h *AdminHandler) ListCollections(c echo.Context) error {
	items, err := h.Collections.ListAll(c.Request().Context())
	if err != nil {
		return respondError(c, h.Log, "collection.list", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Report handles GET /v1/admin/reports.  start and end are inclusive
// YYYY-MM-DD days; state, district and localbody narrow the rows.
func (h *AdminHandler) Report(c echo.Context) error {
	var f repository.ReportFilter
	for _, p := range []struct {
		name string
		dst  **time.Time
	}{{"start", &f.Start}, {"end", &f.End}} {
		raw := strings.TrimSpace(c.QueryParam(p.name))
		if raw == "" {
			continue
		}
		d, err := service.ParseDate(raw)
		if err != nil {
			return badRequest(c, "invalid "+p.name+" date, expected YYYY-MM-DD")
		}
		*p.dst = &d
	}
	if f.Start != nil && f.End != nil && f.Start.After(*f.End) {
		return badRequest(c, "start must not be after end")
	}
	for _, p := range []struct {
		name string
		dst  *uint64
	}{{"state", &f.StateID}, {"district", &f.DistrictID}, {"localbody", &f.LocalBodyID}} {
		raw := strings.TrimSpace(c.QueryParam(p.name))
		if raw == "" {
			continue
		}
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return badRequest(c, "invalid "+p.name)
		}
		*p.dst = n
	}

	rows, summary, err := h.Collections.Report(c.Request().Context(), f)
	if err != nil {
		return respondError(c, h.Log, "report", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"rows": rows, "summary": summary})
}
