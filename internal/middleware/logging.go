package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/waste-pickup-service/pkg/logger"
	"github.com/iliyamo/waste-pickup-service/pkg/metrics"
)

// RequestLogger logs one line per request and records its duration under
// the route pattern, so /v1/profiles/7 and /v1/profiles/8 share a series.
func RequestLogger(log logger.Logger, m *metrics.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				// let echo write the error response so the status is final
				c.Error(err)
			}
			elapsed := time.Since(start)

			req, res := c.Request(), c.Response()
			status := res.Status
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			m.ObserveRequest(req.Method, route, strconv.Itoa(status), elapsed.Seconds())

			fields := []interface{}{
				"method", req.Method,
				"path", req.URL.Path,
				"route", route,
				"status", status,
				"latency_ms", elapsed.Milliseconds(),
				"request_id", res.Header().Get(echo.HeaderXRequestID),
				"remote_ip", c.RealIP(),
			}
			switch {
			case status >= 500:
				m.IncError("http")
				log.Error("request failed", append(fields, "error", err)...)
			case status >= 400:
				log.Warn("request rejected", fields...)
			default:
				log.Info("request served", fields...)
			}
			return nil
		}
	}
}
