package usecase

import (
	"context"
	"math"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"dinereserve/internal/domain/entity"
	"dinereserve/internal/domain/repository"
	"dinereserve/internal/infrastructure/metrics"
	"dinereserve/pkg/logger"
)

const (
	triggerWrite = "write"
	triggerRead  = "read"
)

// RefreshGate decides whether a read-triggered refresh may run now.
type RefreshGate interface {
	Acquire(ctx context.Context, key string) (bool, error)
}

// RatingAggregator keeps the cached rating fields of a restaurant in line
// with its reviews. The summary is a cache: failures here are logged and
// never reach the caller.
type RatingAggregator struct {
	reviewRepo     repository.ReviewRepository
	restaurantRepo repository.RestaurantRepository
	gate           RefreshGate
	group          singleflight.Group
	locks          sync.Map
	now            func() time.Time
}

// NewRatingAggregator builds an aggregator. gate may be nil, in which case
// every read refreshes.
func NewRatingAggregator(reviewRepo repository.ReviewRepository, restaurantRepo repository.RestaurantRepository, gate RefreshGate) *RatingAggregator {
	return &RatingAggregator{
		reviewRepo:     reviewRepo,
		restaurantRepo: restaurantRepo,
		gate:           gate,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// Summarize averages the review ratings rounded to one decimal place.
func Summarize(reviews []*entity.Review, now time.Time) entity.RatingSummary {
	summary := entity.RatingSummary{UpdatedAt: now}
	if len(reviews) == 0 {
		return summary
	}

	sum := 0
	for _, review := range reviews {
		sum += review.Rating
	}
	avg := float64(sum) / float64(len(reviews))

	summary.Rating = math.Round(avg*10) / 10
	summary.ReviewCount = len(reviews)
	return summary
}

// Recompute reads every review of the restaurant and writes the summary.
// Concurrent calls for one restaurant share a single read and write.
func (a *RatingAggregator) Recompute(ctx context.Context, restaurantID string) (entity.RatingSummary, error) {
	v, err, _ := a.group.Do(restaurantID, func() (interface{}, error) {
		return a.recompute(ctx, restaurantID)
	})
	if err != nil {
		return entity.RatingSummary{}, err
	}
	return v.(entity.RatingSummary), nil
}

// recompute holds the restaurant's lock across the read and the write, so a
// summary computed later never gets overwritten by an older snapshot.
func (a *RatingAggregator) recompute(ctx context.Context, restaurantID string) (entity.RatingSummary, error) {
	lock, _ := a.locks.LoadOrStore(restaurantID, &sync.Mutex{})
	mu := lock.(*sync.Mutex)
	mu.Lock()
	defer mu.Unlock()

	reviews, err := a.reviewRepo.ListByRestaurant(ctx, restaurantID)
	if err != nil {
		return entity.RatingSummary{}, err
	}

	summary := Summarize(reviews, a.now())
	if err := a.restaurantRepo.UpdateRatingSummary(ctx, restaurantID, summary); err != nil {
		return entity.RatingSummary{}, err
	}
	return summary, nil
}

// RefreshAfterWrite recomputes unconditionally. It is called after a review
// has been stored and never joins an in-flight read refresh, whose snapshot
// may predate the review.
func (a *RatingAggregator) RefreshAfterWrite(ctx context.Context, restaurantID string) (entity.RatingSummary, bool) {
	a.group.Forget(restaurantID)
	summary, err := a.recompute(ctx, restaurantID)
	return a.observe(restaurantID, triggerWrite, summary, err)
}

// RefreshOnRead recomputes at most once per gate interval. The bool result
// reports whether a fresh summary was produced.
func (a *RatingAggregator) RefreshOnRead(ctx context.Context, restaurantID string) (entity.RatingSummary, bool) {
	if a.gate != nil {
		ok, err := a.gate.Acquire(ctx, restaurantID)
		if err != nil {
			// Redis trouble should not stop the page from loading, nor trigger
			// a recompute storm; skip this round.
			logger.SideEffectFailed("rating_refresh_gate", restaurantID, err)
			metrics.ObserveRecompute(triggerRead, "gate_error")
			return entity.RatingSummary{}, false
		}
		if !ok {
			metrics.ObserveRecompute(triggerRead, "skipped")
			return entity.RatingSummary{}, false
		}
	}
	return a.refresh(ctx, restaurantID, triggerRead)
}

func (a *RatingAggregator) refresh(ctx context.Context, restaurantID, trigger string) (entity.RatingSummary, bool) {
	summary, err := a.Recompute(ctx, restaurantID)
	return a.observe(restaurantID, trigger, summary, err)
}

func (a *RatingAggregator) observe(restaurantID, trigger string, summary entity.RatingSummary, err error) (entity.RatingSummary, bool) {
	if err != nil {
		logger.SideEffectFailed("rating_recompute", restaurantID, err)
		metrics.ObserveRecompute(trigger, "failed")
		return entity.RatingSummary{}, false
	}
	metrics.ObserveRecompute(trigger, "ok")
	return summary, true
}
