package entity

import (
	"time"
)

type Review struct {
	ID           string     `json:"id" firestore:"id"`
	RestaurantID string     `json:"restaurant_id" firestore:"restaurantId"`
	UserID       string     `json:"user_id" firestore:"userId"`
	UserName     string     `json:"user_name" firestore:"userName"`
	Rating       int        `json:"rating" firestore:"rating"` // 1-5
	Comment      string     `json:"comment" firestore:"comment"`
	CreatedAt    time.Time  `json:"created_at" firestore:"createdAt"`
	OwnerReply   string     `json:"owner_reply,omitempty" firestore:"ownerReply"`
	OwnerName    string     `json:"owner_name,omitempty" firestore:"ownerName"`
	RepliedAt    *time.Time `json:"replied_at,omitempty" firestore:"repliedAt"`
}

func (r *Review) HasReply() bool {
	return r.RepliedAt != nil || r.OwnerReply != ""
}
