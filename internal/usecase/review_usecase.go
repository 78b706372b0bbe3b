package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"dinereserve/internal/domain/entity"
	"dinereserve/internal/domain/repository"
	"dinereserve/pkg/errors"
	"dinereserve/pkg/logger"
)

type ReviewUseCase struct {
	reviewRepo     repository.ReviewRepository
	restaurantRepo repository.RestaurantRepository
	userRepo       repository.UserRepository
	ratings        *RatingAggregator
	notifier       Notifier
}

func NewReviewUseCase(
	reviewRepo repository.ReviewRepository,
	restaurantRepo repository.RestaurantRepository,
	userRepo repository.UserRepository,
	ratings *RatingAggregator,
	notifier Notifier,
) *ReviewUseCase {
	return &ReviewUseCase{
		reviewRepo:     reviewRepo,
		restaurantRepo: restaurantRepo,
		userRepo:       userRepo,
		ratings:        ratings,
		notifier:       notifier,
	}
}

type CreateReviewInput struct {
	Rating  int
	Comment string
}

type RestaurantDetail struct {
	Restaurant *entity.Restaurant `json:"restaurant"`
	Reviews    []*entity.Review   `json:"reviews"`
}

func (uc *ReviewUseCase) SubmitReview(ctx context.Context, userID, restaurantID string, input CreateReviewInput) (*entity.Review, error) {
	if input.Rating < 1 || input.Rating > 5 {
		return nil, errors.Validation("rating must be between 1 and 5", nil)
	}
	comment := strings.TrimSpace(input.Comment)
	if len(comment) > 2000 {
		return nil, errors.Validation("comment must be at most 2000 characters", nil)
	}

	restaurant, err := uc.restaurantRepo.GetByID(ctx, restaurantID)
	if err != nil {
		return nil, err
	}

	review := &entity.Review{
		ID:           uuid.New().String(),
		RestaurantID: restaurantID,
		UserID:       userID,
		UserName:     uc.displayName(ctx, userID),
		Rating:       input.Rating,
		Comment:      comment,
		CreatedAt:    time.Now().UTC(),
	}
	if err := uc.reviewRepo.Create(ctx, review); err != nil {
		return nil, err
	}

	uc.ratings.RefreshAfterWrite(ctx, restaurantID)

	uc.notifier.Notify(ctx, restaurant.OwnerID, entity.NotificationNewReview, entity.NotificationPayload{
		Title:        "New review",
		Message:      fmt.Sprintf("%s rated %s %d/5", review.UserName, restaurant.Name, review.Rating),
		RestaurantID: restaurantID,
		ReviewID:     review.ID,
	})

	return review, nil
}

func (uc *ReviewUseCase) ReplyToReview(ctx context.Context, reviewID, ownerID, reply string) (*entity.Review, error) {
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return nil, errors.Validation("reply is required", nil)
	}

	review, err := uc.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}

	restaurant, err := uc.restaurantRepo.GetByID(ctx, review.RestaurantID)
	if err != nil {
		return nil, err
	}
	if restaurant.OwnerID != ownerID {
		return nil, errors.Forbidden("Only the restaurant owner can reply to reviews", nil)
	}
	if review.HasReply() {
		return nil, errors.InvalidState("review already has a reply")
	}

	updated, err := uc.reviewRepo.SetOwnerReply(ctx, reviewID, reply, uc.displayName(ctx, ownerID))
	if err != nil {
		return nil, err
	}

	uc.notifier.Notify(ctx, updated.UserID, entity.NotificationReviewReply, entity.NotificationPayload{
		Title:        "The restaurant replied",
		Message:      fmt.Sprintf("%s replied to your review", restaurant.Name),
		RestaurantID: restaurant.ID,
		ReviewID:     updated.ID,
	})

	return updated, nil
}

// GetRestaurantDetail returns the restaurant with its reviews, refreshing
// the cached rating when the refresh window allows it.
func (uc *ReviewUseCase) GetRestaurantDetail(ctx context.Context, restaurantID string) (*RestaurantDetail, error) {
	restaurant, err := uc.restaurantRepo.GetByID(ctx, restaurantID)
	if err != nil {
		return nil, err
	}

	reviews, err := uc.reviewRepo.ListByRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, err
	}

	if summary, ok := uc.ratings.RefreshOnRead(ctx, restaurantID); ok {
		at := summary.UpdatedAt
		restaurant.Rating = summary.Rating
		restaurant.ReviewCount = summary.ReviewCount
		restaurant.LastRatingUpdate = &at
	}

	return &RestaurantDetail{Restaurant: restaurant, Reviews: reviews}, nil
}

func (uc *ReviewUseCase) ListRestaurantReviews(ctx context.Context, restaurantID string) ([]*entity.Review, error) {
	if _, err := uc.restaurantRepo.GetByID(ctx, restaurantID); err != nil {
		return nil, err
	}

	reviews, err := uc.reviewRepo.ListByRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, err
	}

	uc.ratings.RefreshOnRead(ctx, restaurantID)
	return reviews, nil
}

func (uc *ReviewUseCase) displayName(ctx context.Context, userID string) string {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		logger.Debug("display name lookup for %s failed: %v", userID, err)
		return "Guest"
	}
	if user.DisplayName != "" {
		return user.DisplayName
	}
	return "Guest"
}
