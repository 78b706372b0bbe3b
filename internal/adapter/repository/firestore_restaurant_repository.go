package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"dinereserve/internal/domain/entity"
	"dinereserve/internal/domain/repository"
	"dinereserve/pkg/errors"
)

const restaurantsCollection = "restaurants"

type firestoreRestaurantRepository struct {
	client *firestore.Client
}

func NewFirestoreRestaurantRepository(client *firestore.Client) repository.RestaurantRepository {
	return &firestoreRestaurantRepository{
		client: client,
	}
}

func (r *firestoreRestaurantRepository) GetByID(ctx context.Context, id string) (*entity.Restaurant, error) {
	doc, err := r.client.Collection(restaurantsCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Restaurant", err)
		}
		return nil, errors.Internal("Failed to get restaurant", err)
	}

	var restaurant entity.Restaurant
	if err := doc.DataTo(&restaurant); err != nil {
		return nil, errors.Internal("Failed to parse restaurant data", err)
	}
	if restaurant.ID == "" {
		restaurant.ID = doc.Ref.ID
	}

	return &restaurant, nil
}

func (r *firestoreRestaurantRepository) UpdateRatingSummary(ctx context.Context, id string, summary entity.RatingSummary) error {
	_, err := r.client.Collection(restaurantsCollection).Doc(id).Update(ctx, []firestore.Update{
		{Path: "rating", Value: summary.Rating},
		{Path: "reviewCount", Value: summary.ReviewCount},
		{Path: "lastRatingUpdate", Value: summary.UpdatedAt},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Restaurant", err)
		}
		return errors.Internal("Failed to update restaurant rating", err)
	}

	return nil
}
