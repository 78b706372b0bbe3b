package router_test

import (
	"context"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"dinereserve/internal/domain/entity"
	"dinereserve/internal/domain/repository"
	"dinereserve/pkg/errors"
)

// tokenVerifier accepts "tok-<uid>".
type tokenVerifier struct{}

func (tokenVerifier) VerifyToken(_ context.Context, token string) (string, error) {
	if !strings.HasPrefix(token, "tok-") {
		return "", errors.Unauthorized("bad token", nil)
	}
	return strings.TrimPrefix(token, "tok-"), nil
}

type reservationRepo struct {
	mu   sync.Mutex
	data map[string]entity.Reservation
	seq  int
}

func (m *reservationRepo) Create(_ context.Context, r *entity.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	if r.ID == "" {
		r.ID = "res-" + strconv.Itoa(m.seq)
	}
	m.data[r.ID] = *r
	return nil
}

func (m *reservationRepo) GetByID(_ context.Context, id string) (*entity.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.data[id]
	if !ok {
		return nil, errors.NotFound("Reservation", nil)
	}
	return &r, nil
}

func (m *reservationRepo) Mutate(_ context.Context, id string, observed entity.ReservationStatus, fn repository.ReservationMutation) (*entity.Reservation, error) {
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

func (m *reservationRepo) ListByUser(_ context.Context, userID string, status entity.ReservationStatus, limit, offset int) ([]*entity.Reservation, int64, error) {
	return m.filter(func(r entity.Reservation) bool { return r.UserID == userID && (status == "" || r.Status == status) })
}

func (m *reservationRepo) ListByRestaurant(_ context.Context, restaurantID string, status entity.ReservationStatus, limit, offset int) ([]*entity.Reservation, int64, error) {
	return m.filter(func(r entity.Reservation) bool { return r.RestaurantID == restaurantID && (status == "" || r.Status == status) })
}

func (m *reservationRepo) filter(match func(entity.Reservation) bool) ([]*entity.Reservation, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*entity.Reservation{}
	for _, r := range m.data {
		if match(r) {
			r := r
			out = append(out, &r)
		}
	}
	return out, int64(len(out)), nil
}

type restaurantRepo map[string]*entity.Restaurant

func (m restaurantRepo) GetByID(_ context.Context, id string) (*entity.Restaurant, error) {
	r, ok := m[id]
	if !ok {
		return nil, errors.NotFound("Restaurant", nil)
	}
	copied := *r
	return &copied, nil
}

func (m restaurantRepo) UpdateRatingSummary(_ context.Context, id string, summary entity.RatingSummary) error {
	r, ok := m[id]
	if !ok {
		return errors.NotFound("Restaurant", nil)
	}
	r.Rating, r.ReviewCount = summary.Rating, summary.ReviewCount
	return nil
}

type reviewRepo struct {
	mu   sync.Mutex
	data []*entity.Review
}

func (m *reviewRepo) Create(_ context.Context, r *entity.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *r
	m.data = append(m.data, &copied)
	return nil
}

func (m *reviewRepo) GetByID(_ context.Context, id string) (*entity.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.data {
		if r.ID == id {
			copied := *r
			return &copied, nil
		}
	}
	return nil, errors.NotFound("Review", nil)
}

func (m *reviewRepo) ListByRestaurant(_ context.Context, restaurantID string) ([]*entity.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*entity.Review{}
	for _, r := range m.data {
		if r.RestaurantID == restaurantID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *reviewRepo) SetOwnerReply(_ context.Context, id, reply, ownerName string) (*entity.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.data {
		if r.ID == id {
			now := time.Now()
			r.OwnerReply, r.OwnerName, r.RepliedAt = reply, ownerName, &now
			copied := *r
			return &copied, nil
		}
	}
	return nil, errors.NotFound("Review", nil)
}

type userRepo map[string]entity.User

func (m userRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	u, ok := m[id]
	if !ok {
		return nil, errors.NotFound("User", nil)
	}
	return &u, nil
}

type notificationRepo struct {
	mu   sync.Mutex
	data map[string]*entity.Notification
}

func (m *notificationRepo) Create(_ context.Context, n *entity.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *n
	m.data[n.ID] = &copied
	return nil
}

func (m *notificationRepo) GetByID(_ context.Context, id string) (*entity.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.data[id]
	if !ok {
		return nil, errors.NotFound("Notification", nil)
	}
	copied := *n
	return &copied, nil
}

func (m *notificationRepo) ListByRecipient(_ context.Context, recipientID string, unreadOnly bool, limit, offset int) ([]*entity.Notification, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*entity.Notification{}
	for _, n := range m.data {
		if n.RecipientID == recipientID && (!unreadOnly || !n.IsRead) {
			copied := *n
			out = append(out, &copied)
		}
	}
	return out, int64(len(out)), nil
}

func (m *notificationRepo) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	_, total, err := m.ListByRecipient(ctx, recipientID, true, 0, 0)
	return total, err
}

func (m *notificationRepo) MarkRead(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n, ok := m.data[id]; ok {
		n.IsRead = true
	}
	return nil
}

func (m *notificationRepo) MarkAllRead(_ context.Context, recipientID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	changed := 0
	for _, n := range m.data {
		if n.RecipientID == recipientID && !n.IsRead {
			n.IsRead = true
			changed++
		}
	}
	return changed, nil
}

func (m *notificationRepo) firstFor(recipientID string) *entity.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.data {
		if n.RecipientID == recipientID {
			copied := *n
			return &copied
		}
	}
	return nil
}

// proofStore records uploads and deletions.
type proofStore struct {
	mu       sync.Mutex
	uploaded []string
	deleted  []string
}

func (s *proofStore) UploadPaymentProof(_ context.Context, reservationID string, file io.Reader, contentType string) (string, error) {
	if _, err := io.ReadAll(file); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	url := "https://storage.googleapis.com/proofs/private/payment-proofs/" + reservationID + "/proof.jpg"
	s.uploaded = append(s.uploaded, url)
	return url, nil
}

func (s *proofStore) DeleteFile(_ context.Context, fileURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, fileURL)
	return nil
}
