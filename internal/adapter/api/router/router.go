package router

import (
	"github.com/labstack/echo/v4"

	"dinereserve/internal/adapter/api/middleware"
	"dinereserve/internal/infrastructure/ratelimit"
)

func Setup(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, adminMiddleware *middleware.AdminMiddleware, limiter *ratelimit.RateLimiter) {
	SetupReservationRouter(e, authMiddleware, adminMiddleware, limiter)
	SetupReviewRouter(e, authMiddleware)
	SetupNotificationRouter(e, authMiddleware)
	SetupHealthRouter(e)
}
