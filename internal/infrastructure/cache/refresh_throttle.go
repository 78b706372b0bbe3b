package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RefreshThrottle lets at most one caller per key through in each interval,
// shared by every API instance that talks to the same Redis.
type RefreshThrottle struct {
	client   redis.Cmdable
	interval time.Duration
	prefix   string
}

func NewRefreshThrottle(client redis.Cmdable, prefix string, interval time.Duration) *RefreshThrottle {
	return &RefreshThrottle{
		client:   client,
		interval: interval,
		prefix:   prefix,
	}
}

func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
}

// Acquire reports whether the caller won the slot for key.
func (t *RefreshThrottle) Acquire(ctx context.Context, key string) (bool, error) {
	return t.client.SetNX(ctx, t.prefix+key, time.Now().Unix(), t.interval).Result()
}

