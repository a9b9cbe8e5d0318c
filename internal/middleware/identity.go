package middleware

import (
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/waste-pickup-service/internal/model"
)

// requestUser returns the authenticated user id as a string for use in
// rate-limit keys and logs, or "anon" before JWTAuth has run.
func requestUser(c echo.Context) string {
    if id, ok := c.Get(ContextUserID).(uint64); ok && id > 0 {
        return strconv.FormatUint(id, 10)
    }
    return "anon"
}

// requestRole returns the canonical role name set by JWTAuth.  An
// unauthenticated request counts as a customer, the smallest budget.
func requestRole(c echo.Context) string {
    if r, ok := c.Get(ContextRole).(string); ok && r != "" {
        return r
    }
    return model.RoleNameCustomer
}
