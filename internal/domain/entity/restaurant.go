package entity

import (
	"time"
)

type Restaurant struct {
	ID      string `json:"id" firestore:"id"`
	OwnerID string `json:"owner_id" firestore:"ownerId"`
	Name    string `json:"name" firestore:"name"`
	Address string `json:"address" firestore:"address"`
	Cuisine string `json:"cuisine" firestore:"cuisine"`

	// Derived from the review set, see RatingSummary.
	Rating           float64    `json:"rating" firestore:"rating"`
	ReviewCount      int        `json:"review_count" firestore:"reviewCount"`
	LastRatingUpdate *time.Time `json:"last_rating_update,omitempty" firestore:"lastRatingUpdate"`

	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}

// RatingSummary is the cached aggregate of a restaurant's reviews.
type RatingSummary struct {
	Rating      float64   `json:"rating"`
	ReviewCount int       `json:"review_count"`
	UpdatedAt   time.Time `json:"updated_at"`
}
