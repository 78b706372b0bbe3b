package handler

import (
	"github.com/labstack/echo/v4"

	"dinereserve/internal/usecase"
	"dinereserve/pkg/errors"
	"dinereserve/pkg/response"
)

type ReviewHandler struct {
	reviewUseCase *usecase.ReviewUseCase
}

func NewReviewHandler(reviewUseCase *usecase.ReviewUseCase) *ReviewHandler {
	return &ReviewHandler{
		reviewUseCase: reviewUseCase,
	}
}

type createReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

func (h *ReviewHandler) CreateReview(c echo.Context) error {
	restaurantID := c.Param("restaurantId")
	if restaurantID == "" {
		return response.Error(c, errors.BadRequest("Restaurant ID is required", nil))
	}

	var req createReviewRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	review, err := h.reviewUseCase.SubmitReview(c.Request().Context(), userID, restaurantID, usecase.CreateReviewInput{
		Rating:  req.Rating,
		Comment: req.Comment,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, review)
}

func (h *ReviewHandler) GetReviews(c echo.Context) error {
	reviews, err := h.reviewUseCase.ListRestaurantReviews(c.Request().Context(), c.Param("restaurantId"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, reviews)
}

func (h *ReviewHandler) GetRestaurant(c echo.Context) error {
	detail, err := h.reviewUseCase.GetRestaurantDetail(c.Request().Context(), c.Param("restaurantId"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, detail)
}

type replyReviewRequest struct {
	Reply string `json:"reply" validate:"required,max=2000"`
}

func (h *ReviewHandler) ReplyToReview(c echo.Context) error {
	var req replyReviewRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	review, err := h.reviewUseCase.ReplyToReview(c.Request().Context(), c.Param("reviewId"), userID, req.Reply)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, review)
}
