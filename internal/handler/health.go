package handler // declare the package name; contains HTTP handlers

import (
    "context"      // bound the readiness ping
    "database/sql" // the pool checked by Ready
    "net/http"     // net/http provides status codes and response helpers
    "time"         // ping timeout

    "github.com/labstack/echo/v4" // echo is the web framework used for this project
)

// Health is a liveness endpoint used by load balancers and monitoring
// systems.  It returns a plain text "ok" with 200 as long as the process
// serves requests.
func Health(c echo.Context) error {
    return c.String(http.StatusOK, "ok")
}

// Ready returns a readiness handler that additionally pings the database.
// It answers 503 while MySQL is unreachable.
func Ready(db *sql.DB) echo.HandlerFunc {
    return func(c echo.Context) error {
        ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
        defer cancel()
        if err := db.PingContext(ctx); err != nil {
            return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "unavailable"})
        }
        return c.JSON(http.StatusOK, echo.Map{"status": "ready"})
    }
}
