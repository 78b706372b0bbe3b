package router

import (
	"github.com/labstack/echo/v4"

	"dinereserve/internal/adapter/api/handler"
	"dinereserve/internal/adapter/api/middleware"
	"dinereserve/internal/infrastructure/ratelimit"
)

// ActionSubmitReservation is the rate limit key for new reservations.
const ActionSubmitReservation = "submit_reservation"

func SetupReservationRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, adminMiddleware *middleware.AdminMiddleware, limiter *ratelimit.RateLimiter) {
	reservationHandler := handler.GetReservationHandler()

	// Guest routes
	reservations := e.Group("/v1/reservations")
	reservations.Use(authMiddleware.Authenticate)

	if limiter != nil {
		reservations.POST("", reservationHandler.SubmitReservation, middleware.RateLimit(limiter, ActionSubmitReservation))
	} else {
		reservations.POST("", reservationHandler.SubmitReservation)
	}
	reservations.GET("", reservationHandler.ListMyReservations)
	reservations.GET("/:id", reservationHandler.GetReservation)
	reservations.POST("/:id/cancel", reservationHandler.CancelReservation)
	reservations.POST("/:id/payment-proof", reservationHandler.SubmitPaymentProof)

	// Owner routes, ownership is checked per reservation
	owner := e.Group("/v1/owner")
	owner.Use(authMiddleware.Authenticate)

	owner.GET("/restaurants/:restaurantId/reservations", reservationHandler.ListRestaurantReservations)
	owner.POST("/reservations/:id/decision", reservationHandler.OwnerDecide)
	owner.POST("/reservations/:id/close", reservationHandler.OwnerCloseOut)

	// Admin routes
	admin := e.Group("/v1/admin/reservations")
	admin.Use(authMiddleware.Authenticate)
	admin.Use(adminMiddleware.AdminOnly)

	admin.POST("/:id/verify-payment", reservationHandler.VerifyPayment)
}
