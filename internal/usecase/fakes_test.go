package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"dinereserve/internal/domain/entity"
	"dinereserve/internal/domain/repository"
	"dinereserve/internal/infrastructure/queue"
	"dinereserve/pkg/errors"
)

// memReservations serialises Mutate under a mutex, mirroring a Firestore
// transaction: read, check observed status, apply, write back.
type memReservations struct {
	mu   sync.Mutex
	data map[string]entity.Reservation
}

func newMemReservations() *memReservations {
	return &memReservations{data: map[string]entity.Reservation{}}
}

func (m *memReservations) Create(_ context.Context, r *entity.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if _, ok := m.data[r.ID]; ok {
		return errors.Conflict("Reservation already exists")
	}
	m.data[r.ID] = *r
	return nil
}

func (m *memReservations) GetByID(_ context.Context, id string) (*entity.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.data[id]
	if !ok {
		return nil, errors.NotFound("Reservation", nil)
	}
	return &r, nil
}

func (m *memReservations) Mutate(_ context.Context, id string, observed entity.ReservationStatus, fn repository.ReservationMutation) (*entity.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.data[id]
	if !ok {
		return nil, errors.NotFound("Reservation", nil)
	}
	if observed != "" && r.Status != observed {
		return nil, errors.Conflict("Reservation is already being processed")
	}
	if err := fn(&r); err != nil {
		return nil, err
	}
	m.data[id] = r
	return &r, nil
}

func (m *memReservations) ListByUser(_ context.Context, userID string, status entity.ReservationStatus, limit, offset int) ([]*entity.Reservation, int64, error) {
	return m.list(func(r entity.Reservation) bool { return r.UserID == userID && (status == "" || r.Status == status) }, limit, offset)
}

func (m *memReservations) ListByRestaurant(_ context.Context, restaurantID string, status entity.ReservationStatus, limit, offset int) ([]*entity.Reservation, int64, error) {
	return m.list(func(r entity.Reservation) bool { return r.RestaurantID == restaurantID && (status == "" || r.Status == status) }, limit, offset)
}

func (m *memReservations) list(match func(entity.Reservation) bool, limit, offset int) ([]*entity.Reservation, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*entity.Reservation{}
	for _, r := range m.data {
		if match(r) {
			r := r
			out = append(out, &r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	total := int64(len(out))
	if offset >= len(out) {
		return []*entity.Reservation{}, total, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, total, nil
}

type memRestaurants struct {
	mu      sync.Mutex
	data    map[string]entity.Restaurant
	updates int
}

func newMemRestaurants(restaurants ...entity.Restaurant) *memRestaurants {
	m := &memRestaurants{data: map[string]entity.Restaurant{}}
	for _, r := range restaurants {
		m.data[r.ID] = r
	}
	return m
}

func (m *memRestaurants) GetByID(_ context.Context, id string) (*entity.Restaurant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.data[id]
	if !ok {
		return nil, errors.NotFound("Restaurant", nil)
	}
	return &r, nil
}

func (m *memRestaurants) UpdateRatingSummary(_ context.Context, id string, summary entity.RatingSummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.data[id]
	if !ok {
		return errors.NotFound("Restaurant", nil)
	}
	at := summary.UpdatedAt
	r.Rating = summary.Rating
	r.ReviewCount = summary.ReviewCount
	r.LastRatingUpdate = &at
	m.data[id] = r
	m.updates++
	return nil
}

type memReviews struct {
	mu      sync.Mutex
	data    map[string]entity.Review
	listErr error
}

func newMemReviews() *memReviews {
	return &memReviews{data: map[string]entity.Review{}}
}

func (m *memReviews) Create(_ context.Context, r *entity.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	m.data[r.ID] = *r
	return nil
}

func (m *memReviews) GetByID(_ context.Context, id string) (*entity.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.data[id]
	if !ok {
		return nil, errors.NotFound("Review", nil)
	}
	return &r, nil
}

func (m *memReviews) ListByRestaurant(_ context.Context, restaurantID string) ([]*entity.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := []*entity.Review{}
	for _, r := range m.data {
		if r.RestaurantID == restaurantID {
			r := r
			out = append(out, &r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memReviews) SetOwnerReply(_ context.Context, id, reply, ownerName string) (*entity.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.data[id]
	if !ok {
		return nil, errors.NotFound("Review", nil)
	}
	if r.HasReply() {
		return nil, errors.InvalidState("review already has a reply")
	}
	now := time.Now()
	r.OwnerReply, r.OwnerName, r.RepliedAt = reply, ownerName, &now
	m.data[id] = r
	return &r, nil
}

type memUsers map[string]entity.User

func (m memUsers) GetByID(_ context.Context, id string) (*entity.User, error) {
	u, ok := m[id]
	if !ok {
		return nil, errors.NotFound("User", nil)
	}
	return &u, nil
}

// brokenUsers fails every lookup the way a store outage would.
type brokenUsers struct{}

func (brokenUsers) GetByID(_ context.Context, _ string) (*entity.User, error) {
	return nil, errors.Internal("users store unavailable", nil)
}

type memNotifications struct {
	mu        sync.Mutex
	data      map[string]entity.Notification
	createErr error
}

func newMemNotifications() *memNotifications {
	return &memNotifications{data: map[string]entity.Notification{}}
}

func (m *memNotifications) Create(_ context.Context, n *entity.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.data[n.ID] = *n
	return nil
}

func (m *memNotifications) GetByID(_ context.Context, id string) (*entity.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.data[id]
	if !ok {
		return nil, errors.NotFound("Notification", nil)
	}
	return &n, nil
}

func (m *memNotifications) ListByRecipient(_ context.Context, recipientID string, unreadOnly bool, limit, offset int) ([]*entity.Notification, int64, error) {
	all := m.forRecipient(recipientID, unreadOnly)
	total := int64(len(all))
	if offset >= len(all) {
		return []*entity.Notification{}, total, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, total, nil
}

func (m *memNotifications) CountUnread(_ context.Context, recipientID string) (int64, error) {
	return int64(len(m.forRecipient(recipientID, true))), nil
}

func (m *memNotifications) MarkRead(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.data[id]
	if !ok {
		return errors.NotFound("Notification", nil)
	}
	now := time.Now()
	n.IsRead, n.ReadAt = true, &now
	m.data[id] = n
	return nil
}

func (m *memNotifications) MarkAllRead(_ context.Context, recipientID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	changed := 0
	now := time.Now()
	for id, n := range m.data {
		if n.RecipientID == recipientID && !n.IsRead {
			n.IsRead, n.ReadAt = true, &now
			m.data[id] = n
			changed++
		}
	}
	return changed, nil
}

func (m *memNotifications) forRecipient(recipientID string, unreadOnly bool) []*entity.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*entity.Notification{}
	for _, n := range m.data {
		if n.RecipientID == recipientID && (!unreadOnly || !n.IsRead) {
			n := n
			out = append(out, &n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *memNotifications) byType(t entity.NotificationType) []entity.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []entity.Notification{}
	for _, n := range m.data {
		if n.Type == t {
			out = append(out, n)
		}
	}
	return out
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.NotificationEvent
	err    error
}

func (p *recordingPublisher) PublishNotification(_ context.Context, event queue.NotificationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

// stubGate answers Acquire from a fixed script.
type stubGate struct {
	allow bool
	err   error
	calls int
}

func (g *stubGate) Acquire(context.Context, string) (bool, error) {
	g.calls++
	return g.allow, g.err
}
