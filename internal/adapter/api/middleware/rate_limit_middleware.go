package middleware

import (
	"math"
	"strconv"

	"github.com/labstack/echo/v4"

	"dinereserve/internal/infrastructure/ratelimit"
	"dinereserve/pkg/errors"
	"dinereserve/pkg/logger"
	"dinereserve/pkg/response"
)

// RateLimit throttles action per authenticated caller, falling back to the
// client IP for anonymous requests.
func RateLimit(limiter *ratelimit.RateLimiter, action string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			caller, _ := c.Get("uid").(string)
			if caller == "" {
				caller = "ip:" + c.RealIP()
			}

			allowed, retryAfter := limiter.Allow(caller, action)
			if !allowed {
				logger.Warn("rate limit hit: caller=%s action=%s retry_after=%s", caller, action, retryAfter)
				seconds := int(math.Ceil(retryAfter.Seconds()))
				c.Response().Header().Set("Retry-After", strconv.Itoa(max(seconds, 1)))
				return response.Error(c, errors.TooManyRequests("Too many requests, please slow down"))
			}

			return next(c)
		}
	}
}
