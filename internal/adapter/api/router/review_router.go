package router

import (
	"github.com/labstack/echo/v4"

	"dinereserve/internal/adapter/api/handler"
	"dinereserve/internal/adapter/api/middleware"
)

func SetupReviewRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	reviewHandler := handler.GetReviewHandler()

	// Public routes
	restaurants := e.Group("/v1/restaurants")
	restaurants.GET("/:restaurantId", reviewHandler.GetRestaurant)
	restaurants.GET("/:restaurantId/reviews", reviewHandler.GetReviews)

	// Protected routes (require authentication)
	restaurants.POST("/:restaurantId/reviews", reviewHandler.CreateReview, authMiddleware.Authenticate)

	reviews := e.Group("/v1/reviews")
	reviews.Use(authMiddleware.Authenticate)
	reviews.POST("/:reviewId/reply", reviewHandler.ReplyToReview)
}
