package repository

import (
	"context"
	"sort"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"dinereserve/internal/domain/entity"
	"dinereserve/internal/domain/repository"
	"dinereserve/pkg/errors"
)

const reviewsCollection = "reviews"

type firestoreReviewRepository struct {
	client *firestore.Client
}

func NewFirestoreReviewRepository(client *firestore.Client) repository.ReviewRepository {
	return &firestoreReviewRepository{
		client: client,
	}
}

func (r *firestoreReviewRepository) Create(ctx context.Context, review *entity.Review) error {
	if review.ID == "" {
		review.ID = uuid.New().String()
	}
	if review.CreatedAt.IsZero() {
		review.CreatedAt = now()
	}

	_, err := r.client.Collection(reviewsCollection).Doc(review.ID).Set(ctx, review)
	if err != nil {
		return errors.Internal("Failed to create review", err)
	}

	return nil
}

func (r *firestoreReviewRepository) GetByID(ctx context.Context, id string) (*entity.Review, error) {
	doc, err := r.client.Collection(reviewsCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Review", err)
		}
		return nil, errors.Internal("Failed to get review", err)
	}

	var review entity.Review
	if err := doc.DataTo(&review); err != nil {
		return nil, errors.Internal("Failed to parse review data", err)
	}

	return &review, nil
}

// ListByRestaurant sorts in memory so it needs no composite index; review
// sets per restaurant are small.
func (r *firestoreReviewRepository) ListByRestaurant(ctx context.Context, restaurantID string) ([]*entity.Review, error) {
	iter := r.client.Collection(reviewsCollection).Where("restaurantId", "==", restaurantID).Documents(ctx)
	defer iter.Stop()

	reviews := []*entity.Review{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to iterate reviews", err)
		}

		var review entity.Review
		if err := doc.DataTo(&review); err != nil {
			return nil, errors.Internal("Failed to parse review data", err)
		}
		reviews = append(reviews, &review)
	}

	sort.Slice(reviews, func(i, j int) bool {
		return reviews[i].CreatedAt.After(reviews[j].CreatedAt)
	})

	return reviews, nil
}

func (r *firestoreReviewRepository) SetOwnerReply(ctx context.Context, id, reply, ownerName string) (*entity.Review, error) {
	docRef := r.client.Collection(reviewsCollection).Doc(id)

	var updated *entity.Review
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return errors.NotFound("Review", err)
			}
			return err
		}

		var review entity.Review
		if err := doc.DataTo(&review); err != nil {
			return errors.Internal("Failed to parse review data", err)
		}
		if review.HasReply() {
			return errors.InvalidState("Review already has an owner reply")
		}

		repliedAt := now()
		review.OwnerReply = reply
		review.OwnerName = ownerName
		review.RepliedAt = &repliedAt
		updated = &review

		return tx.Update(docRef, []firestore.Update{
			{Path: "ownerReply", Value: reply},
			{Path: "ownerName", Value: ownerName},
			{Path: "repliedAt", Value: repliedAt},
		})
	})
	if err != nil {
		var appErr *errors.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, errors.Internal("Failed to save review reply", err)
	}

	return updated, nil
}
