package handler // handler defines the HTTP handlers of every role group

import (
    "errors"   // errors.Is against repository and service sentinels
    "net/http" // status codes
    "strconv"  // path parameter parsing

    "github.com/labstack/echo/v4" // request context

    "github.com/iliyamo/waste-pickup-service/internal/middleware" // context keys set by JWTAuth
    "github.com/iliyamo/waste-pickup-service/internal/repository" // sentinel errors
    "github.com/iliyamo/waste-pickup-service/internal/service"    // ErrInvalidInput
    "github.com/iliyamo/waste-pickup-service/pkg/logger"          // error logging
)

// getUserID extracts the authenticated user id stored by JWTAuth.
func getUserID(c echo.Context) (uint64, error) {
    if id, ok := c.Get(middleware.ContextUserID).(uint64); ok && id > 0 {
        return id, nil
    }
    return 0, errors.New("invalid user_id in context")
}

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
    id, err := strconv.ParseUint(c.Param(name), 10, 64)
    if err != nil || id == 0 {
        return 0, false
    }
    return id, true
}

func unauthorized(c echo.Context) error {
    return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
}

func badRequest(c echo.Context, msg string) error {
    return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}

// respondError translates a service or repository error into a status
// code.  Client errors carry the error text; anything unrecognised is
// logged and reported as a bare 500.
func respondError(c echo.Context, log logger.Logger, op string, err error) error {
    switch {
    case errors.Is(err, service.ErrInvalidInput):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    case errors.Is(err, repository.ErrForbidden):
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    case errors.Is(err, repository.ErrNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
    case errors.Is(err, repository.ErrConflict), errors.Is(err, repository.ErrUserExists):
        return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
    }
    log.Error("request failed", "op", op, "path", c.Request().URL.Path, "error", err)
    return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
