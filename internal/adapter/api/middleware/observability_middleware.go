package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	"dinereserve/internal/infrastructure/metrics"
	"dinereserve/pkg/logger"
)

// RequestObserver logs every request with zerolog and records its status
// and latency per route.
func RequestObserver() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			status := c.Response().Status
			elapsed := time.Since(start)
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}

			metrics.ObserveHTTP(route, req.Method, status, elapsed)

			event := logger.Log().Info()
			if status >= 500 {
				event = logger.Log().Error().Err(err)
			}
			uid, _ := c.Get("uid").(string)
			event.
				Str("method", req.Method).
				Str("route", route).
				Str("uri", req.RequestURI).
				Int("status", status).
				Dur("latency", elapsed).
				Str("remote_ip", c.RealIP()).
				Str("uid", uid).
				Msg("request")

			return nil
		}
	}
}
